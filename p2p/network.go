//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// DefaultRetryDelay is the default delay between connection attempts.
const DefaultRetryDelay = time.Second

const (
	handshakeTimeout = 10 * time.Second
	handshakeAck     = 0x01
)

// Network implements the peer-to-peer network of the helpers. Each
// pair of nodes shares exactly one connection: the node with the
// lower ID dials and the node with the higher ID accepts. The first
// message on every connection is the ID of the dialing node, which
// the accepting node confirms with an acknowledgement byte. A
// connection released with Disconnect is redialed by the next
// Connect.
type Network struct {
	ID         int
	RetryDelay time.Duration
	m          sync.Mutex
	c          *sync.Cond
	dialM      sync.Mutex
	Peers      map[int]*Peer
	addrs      map[int]string
	addr       string
	listener   net.Listener
	log        zerolog.Logger
	closed     bool
}

// NewNetwork creates a new peer-to-peer network listening at addr.
func NewNetwork(addr string, id int, log zerolog.Logger) (*Network, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	nw := &Network{
		ID:         id,
		RetryDelay: DefaultRetryDelay,
		Peers:      make(map[int]*Peer),
		addrs:      make(map[int]string),
		addr:       listener.Addr().String(),
		listener:   listener,
		log:        log.With().Int("node", id).Logger(),
	}
	nw.c = sync.NewCond(&nw.m)
	go nw.acceptLoop()
	return nw, nil
}

// Addr returns the listener address of the network.
func (nw *Network) Addr() string {
	return nw.addr
}

// Close closes the network and all peer connections.
func (nw *Network) Close() error {
	nw.m.Lock()
	nw.closed = true
	peers := nw.Peers
	nw.Peers = make(map[int]*Peer)
	nw.c.Broadcast()
	nw.m.Unlock()

	err := nw.listener.Close()
	for _, peer := range peers {
		peer.Close()
	}
	return err
}

// AddPeer adds a peer to the network. If our ID is lower than the
// peer's ID, the function dials the peer until the peer confirms the
// connection or the context is done. Otherwise the peer is expected
// to dial us.
func (nw *Network) AddPeer(ctx context.Context, addr string, id int) error {
	if id == nw.ID {
		return errors.Newf("cannot add self as peer")
	}
	if id < nw.ID {
		return nil
	}
	nw.m.Lock()
	nw.addrs[id] = addr
	nw.m.Unlock()

	return nw.dial(ctx, addr, id)
}

// dial connects to the peer unless it is already connected.
func (nw *Network) dial(ctx context.Context, addr string, id int) error {
	nw.dialM.Lock()
	defer nw.dialM.Unlock()

	var dialer net.Dialer
	for {
		// Check if we are already connected with the peer.
		nw.m.Lock()
		_, ok := nw.Peers[id]
		closed := nw.closed
		nw.m.Unlock()
		if ok {
			return nil
		}
		if closed {
			return net.ErrClosed
		}

		nw.log.Debug().Int("peer", id).Str("addr", addr).Msg("connecting")
		nc, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			var conn *Conn
			conn, err = nw.handshake(nc)
			if err == nil {
				nw.log.Info().Int("peer", id).Str("addr", addr).Msg("connected")
				return nw.newPeer(true, conn, id)
			}
		}
		nw.log.Info().Int("peer", id).Err(err).
			Dur("retry", nw.RetryDelay).Msg("connect failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(nw.RetryDelay):
		}
	}
}

// handshake sends our ID to the accepting node and waits for its
// acknowledgement.
func (nw *Network) handshake(nc net.Conn) (*Conn, error) {
	conn := NewConn(nc)

	err := conn.SendUint32(nw.ID)
	if err == nil {
		err = conn.Flush()
	}
	if err == nil {
		nc.SetReadDeadline(time.Now().Add(handshakeTimeout))
		var ack byte
		ack, err = conn.ReceiveByte()
		if err == nil && ack != handshakeAck {
			err = errors.Newf("invalid handshake acknowledgement 0x%x", ack)
		}
		nc.SetReadDeadline(time.Time{})
	}
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "handshake")
	}
	return conn, nil
}

// Connect returns the connection to the peer. If we dial the peer
// and it is not connected, Connect dials it. Otherwise Connect waits
// until the peer is connected or the context is done.
func (nw *Network) Connect(ctx context.Context, id int) (*Conn, error) {
	nw.m.Lock()
	addr, dialer := nw.addrs[id]
	nw.m.Unlock()

	if dialer {
		if err := nw.dial(ctx, addr, id); err != nil {
			return nil, err
		}
	}

	stop := context.AfterFunc(ctx, func() {
		nw.m.Lock()
		nw.c.Broadcast()
		nw.m.Unlock()
	})
	defer stop()

	nw.m.Lock()
	defer nw.m.Unlock()
	for {
		peer, ok := nw.Peers[id]
		if ok {
			return peer.conn, nil
		}
		if nw.closed {
			return nil, net.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nw.c.Wait()
	}
}

// Disconnect releases the connection to the peer after it has
// failed. The connection is shut down and removed from the network
// unless it has already been replaced by a newer connection.
func (nw *Network) Disconnect(id int, conn *Conn) {
	nw.m.Lock()
	peer, ok := nw.Peers[id]
	if ok && peer.conn == conn {
		delete(nw.Peers, id)
	}
	nw.m.Unlock()

	conn.Shutdown()
	nw.log.Debug().Int("peer", id).Msg("peer disconnected")
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	nw.m.Lock()
	defer nw.m.Unlock()

	result := NewIOStats()
	for _, peer := range nw.Peers {
		result = result.Add(peer.conn.Stats)
	}
	return result
}

func (nw *Network) acceptLoop() {
	for {
		nc, err := nw.listener.Accept()
		if err != nil {
			nw.log.Debug().Err(err).Msg("accept loop terminated")
			return
		}
		go nw.accept(nc)
	}
}

func (nw *Network) accept(nc net.Conn) {
	conn := NewConn(nc)

	// Read peer ID.
	nc.SetReadDeadline(time.Now().Add(handshakeTimeout))
	id, err := conn.ReceiveUint32()
	nc.SetReadDeadline(time.Time{})
	if err != nil {
		nw.log.Warn().Err(err).Msg("handshake failed")
		conn.Close()
		return
	}
	// Only nodes with lower IDs dial us.
	if id >= nw.ID {
		nw.log.Warn().Int("peer", id).Msg("unexpected inbound connection")
		conn.Close()
		return
	}
	err = conn.SendByte(handshakeAck)
	if err == nil {
		err = conn.Flush()
	}
	if err == nil {
		err = nw.newPeer(false, conn, id)
	}
	if err != nil {
		nw.log.Warn().Int("peer", id).Err(err).
			Msg("inbound connection error")
		conn.Close()
	}
}

// newPeer registers the connection to the peer. An inbound connection
// replaces an earlier connection from the same peer since the peer
// only redials after its end of the earlier connection failed.
func (nw *Network) newPeer(client bool, conn *Conn, id int) error {
	nw.m.Lock()
	defer nw.m.Unlock()

	if nw.closed {
		conn.Close()
		return net.ErrClosed
	}
	old, ok := nw.Peers[id]
	if ok {
		if client {
			conn.Close()
			return errors.Newf("peer %d already connected", id)
		}
		old.conn.Shutdown()
		nw.log.Debug().Int("peer", id).Msg("replacing peer connection")
	}
	nw.Peers[id] = &Peer{
		id:     id,
		conn:   conn,
		client: client,
	}
	nw.c.Broadcast()

	nw.log.Debug().Int("peer", id).Bool("client", client).Msg("peer added")
	return nil
}

// Peer implements a peer in the peer-to-peer network.
type Peer struct {
	id     int
	conn   *Conn
	client bool
}

// Close closes the peer connection.
func (peer *Peer) Close() error {
	return peer.conn.Close()
}
