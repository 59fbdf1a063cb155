//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gateway

import (
	"context"
	"net"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/p2p"
)

// Transport provides reliable, ordered byte-stream connections to the
// peers of a helper.
type Transport interface {
	// Connect returns the connection to the peer. It may block until
	// the connection is established.
	Connect(ctx context.Context, peer Role) (*p2p.Conn, error)

	// Disconnect releases a failed connection to the peer. The next
	// Connect establishes a new connection.
	Disconnect(peer Role, conn *p2p.Conn)
}

// NetworkTransport implements Transport over the TCP peer-to-peer
// network. Network node IDs are role indices.
type NetworkTransport struct {
	Network *p2p.Network
}

// Connect implements Transport.Connect.
func (t *NetworkTransport) Connect(ctx context.Context, peer Role) (
	*p2p.Conn, error) {
	return t.Network.Connect(ctx, peer.Index())
}

// Disconnect implements Transport.Disconnect.
func (t *NetworkTransport) Disconnect(peer Role, conn *p2p.Conn) {
	t.Network.Disconnect(peer.Index(), conn)
}

// InMemoryNetwork connects three helpers in a ring of in-memory
// pipes: H1-H2, H2-H3, and H3-H1. The pipe of a pair is created when
// either helper first connects to the other.
type InMemoryNetwork struct {
	m      sync.Mutex
	conns  [3][3]*p2p.Conn
	closed bool
}

// NewInMemoryNetwork creates a new in-memory network.
func NewInMemoryNetwork() *InMemoryNetwork {
	return new(InMemoryNetwork)
}

// Transport returns the transport of the helper role.
func (n *InMemoryNetwork) Transport(role Role) Transport {
	return &memoryTransport{
		network: n,
		role:    role,
	}
}

// Drop breaks the link between helpers a and b. Both ends observe a
// connection failure and the next connect creates a new pipe.
func (n *InMemoryNetwork) Drop(a, b Role) {
	n.m.Lock()
	defer n.m.Unlock()
	n.drop(a, b)
}

func (n *InMemoryNetwork) drop(a, b Role) {
	if c := n.conns[a][b]; c != nil {
		c.Shutdown()
	}
	if c := n.conns[b][a]; c != nil {
		c.Shutdown()
	}
	n.conns[a][b] = nil
	n.conns[b][a] = nil
}

// Close closes all pipes of the network.
func (n *InMemoryNetwork) Close() {
	n.m.Lock()
	defer n.m.Unlock()

	n.closed = true
	for _, r := range Roles {
		n.drop(r, r.Peer(Right))
	}
}

type memoryTransport struct {
	network *InMemoryNetwork
	role    Role
}

func (t *memoryTransport) Connect(ctx context.Context, peer Role) (
	*p2p.Conn, error) {

	n := t.network
	n.m.Lock()
	defer n.m.Unlock()

	if peer == t.role {
		return nil, errors.Newf("cannot connect %s to itself", peer)
	}
	if n.closed {
		return nil, net.ErrClosed
	}
	if n.conns[t.role][peer] == nil {
		a, b := p2p.Pipe()
		n.conns[t.role][peer] = a
		n.conns[peer][t.role] = b
	}
	return n.conns[t.role][peer], nil
}

func (t *memoryTransport) Disconnect(peer Role, conn *p2p.Conn) {
	n := t.network
	n.m.Lock()
	defer n.m.Unlock()

	if n.conns[t.role][peer] == conn {
		n.drop(t.role, peer)
	} else {
		conn.Shutdown()
	}
}

// Frame operations.
const (
	OpData byte = iota + 1
	OpCredit
	OpAbort
)

type frame struct {
	op      byte
	query   QueryID
	gate    string
	record  RecordID
	payload []byte
	count   int
	kind    mpcerr.Kind
	reason  string
}

func (f *frame) write(conn *p2p.Conn) error {
	if err := conn.SendByte(f.op); err != nil {
		return err
	}
	if err := conn.SendData(f.query[:]); err != nil {
		return err
	}
	switch f.op {
	case OpData:
		if err := conn.SendString(f.gate); err != nil {
			return err
		}
		if err := conn.SendUint32(int(f.record)); err != nil {
			return err
		}
		return conn.SendData(f.payload)

	case OpCredit:
		return conn.SendUint32(f.count)

	case OpAbort:
		if err := conn.SendByte(byte(f.kind)); err != nil {
			return err
		}
		return conn.SendString(f.reason)

	default:
		return errors.Newf("invalid frame operation %d", f.op)
	}
}

func readFrame(conn *p2p.Conn) (*frame, error) {
	op, err := conn.ReceiveByte()
	if err != nil {
		return nil, err
	}
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	id, err := QueryIDFromBytes(data)
	if err != nil {
		return nil, err
	}
	f := &frame{
		op:    op,
		query: id,
	}
	switch op {
	case OpData:
		f.gate, err = conn.ReceiveString()
		if err != nil {
			return nil, err
		}
		record, err := conn.ReceiveUint32()
		if err != nil {
			return nil, err
		}
		f.record = RecordID(record)
		f.payload, err = conn.ReceiveData()
		if err != nil {
			return nil, err
		}

	case OpCredit:
		f.count, err = conn.ReceiveUint32()
		if err != nil {
			return nil, err
		}

	case OpAbort:
		kind, err := conn.ReceiveByte()
		if err != nil {
			return nil, err
		}
		f.kind = mpcerr.Kind(kind)
		f.reason, err = conn.ReceiveString()
		if err != nil {
			return nil, err
		}

	default:
		return nil, mpcerr.Addressingf("invalid frame operation %d", op)
	}
	return f, nil
}
