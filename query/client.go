//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"

	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/p2p"
)

// Client submits queries to one helper. A Client is not safe for
// concurrent use; use one client per concurrent request.
type Client struct {
	conn *p2p.Conn
}

// Dial connects to the helper's client address.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, mpcerr.Connectivity(err, "dial %s", addr)
	}
	return NewClient(p2p.NewConn(nc)), nil
}

// NewClient creates a new client for the connection.
func NewClient(conn *p2p.Conn) *Client {
	return &Client{
		conn: conn,
	}
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Submit runs the query with the helper's input shares and returns
// the helper's result. Errors returned by the helper keep their
// error kind.
func (c *Client) Submit(ctx context.Context, id gateway.QueryID,
	config Config, input []byte) (*Result, error) {

	stop := context.AfterFunc(ctx, func() {
		c.conn.Shutdown()
	})
	defer stop()

	data, err := config.Marshal()
	if err != nil {
		return nil, err
	}
	err = c.request(OpQuery, id, data, input)
	if err != nil {
		return nil, c.ioError(ctx, err)
	}
	op, err := c.conn.ReceiveByte()
	if err != nil {
		return nil, c.ioError(ctx, err)
	}
	switch op {
	case OpResult:
		result, err := receiveResult(c.conn)
		if err != nil {
			return nil, c.ioError(ctx, err)
		}
		return result, nil

	case OpError:
		return nil, receiveError(c.conn)

	default:
		return nil, errors.Newf("unexpected response 0x%x", op)
	}
}

// Cancel cancels the query on the helper.
func (c *Client) Cancel(ctx context.Context, id gateway.QueryID) error {
	stop := context.AfterFunc(ctx, func() {
		c.conn.Shutdown()
	})
	defer stop()

	if err := c.request(OpCancel, id); err != nil {
		return c.ioError(ctx, err)
	}
	op, err := c.conn.ReceiveByte()
	if err != nil {
		return c.ioError(ctx, err)
	}
	switch op {
	case OpOK:
		return nil
	case OpError:
		return receiveError(c.conn)
	default:
		return errors.Newf("unexpected response 0x%x", op)
	}
}

func (c *Client) request(op byte, id gateway.QueryID, args ...[]byte) error {
	if err := c.conn.SendByte(op); err != nil {
		return err
	}
	if err := c.conn.SendData(id.Bytes()); err != nil {
		return err
	}
	for _, arg := range args {
		if err := c.conn.SendData(arg); err != nil {
			return err
		}
	}
	return c.conn.Flush()
}

func (c *Client) ioError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return mpcerr.Cancelled(ctx.Err())
	}
	return mpcerr.Connectivity(err, "helper connection")
}
