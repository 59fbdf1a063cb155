//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gateway

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/p2p"
)

const (
	outQueueSize     = 1024
	closedQueryTTL   = 10 * time.Minute
	abortSendTimeout = 5 * time.Second
)

// Mesh multiplexes the gateways of all running queries over one
// connection per peer. The connection pool is shared: establishing
// connections is serialized, after which every query uses the
// established links independently. A failed link fails the queries
// using it and is redialed by the next Connect.
type Mesh struct {
	role      Role
	transport Transport
	config    Config
	log       zerolog.Logger

	connectM sync.Mutex
	linksM   sync.RWMutex
	links    [3]*link

	m       sync.Mutex
	queries map[QueryID]*Gateway
	retired map[QueryID]time.Time
	closed  bool

	wg sync.WaitGroup
}

type link struct {
	peer Role
	conn *p2p.Conn
	out  chan *frame
	done chan struct{}
	err  error
	once sync.Once
}

func (l *link) fail(err error) bool {
	var first bool
	l.once.Do(func() {
		first = true
		l.err = err
		close(l.done)
		l.conn.Shutdown()
	})
	return first
}

// NewMesh creates a new mesh for the helper role.
func NewMesh(role Role, transport Transport, config Config,
	log zerolog.Logger) (*Mesh, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Mesh{
		role:      role,
		transport: transport,
		config:    config,
		log:       log.With().Str("role", role.String()).Logger(),
		queries:   make(map[QueryID]*Gateway),
		retired:   make(map[QueryID]time.Time),
	}, nil
}

// Role returns the helper role of the mesh.
func (m *Mesh) Role() Role {
	return m.role
}

// Config returns the gateway configuration of the mesh.
func (m *Mesh) Config() Config {
	return m.config
}

// Connect establishes the connections to both peers, replacing
// failed links. It is safe to call Connect multiple times and from
// multiple goroutines.
func (m *Mesh) Connect(ctx context.Context) error {
	peers := m.role.Peers()
	if m.Connected(peers[0]) && m.Connected(peers[1]) {
		return nil
	}
	m.connectM.Lock()
	defer m.connectM.Unlock()

	for _, peer := range peers {
		if m.Connected(peer) {
			continue
		}
		conn, err := m.transport.Connect(ctx, peer)
		if err != nil {
			if ctx.Err() != nil {
				return mpcerr.Cancelled(ctx.Err())
			}
			return mpcerr.Connectivity(err, "connect to %s", peer)
		}
		l := &link{
			peer: peer,
			conn: conn,
			out:  make(chan *frame, outQueueSize),
			done: make(chan struct{}),
		}

		m.m.Lock()
		if m.closed {
			m.m.Unlock()
			m.transport.Disconnect(peer, conn)
			return mpcerr.Connectivity(net.ErrClosed, "mesh closed")
		}
		m.linksM.Lock()
		m.links[peer] = l
		m.linksM.Unlock()
		m.wg.Add(2)
		m.m.Unlock()

		go m.readLoop(l)
		go m.writeLoop(l)

		m.log.Debug().Str("peer", peer.String()).Msg("link established")
	}
	return nil
}

// Close closes all peer links and fails all running queries.
func (m *Mesh) Close() error {
	m.m.Lock()
	m.closed = true
	m.m.Unlock()

	m.linksM.RLock()
	links := m.links
	m.linksM.RUnlock()

	for _, l := range links {
		if l != nil {
			m.failLink(l, mpcerr.Connectivity(net.ErrClosed, "mesh closed"))
		}
	}
	m.wg.Wait()
	return nil
}

// Connected reports whether the mesh has an operational link to the
// peer.
func (m *Mesh) Connected(peer Role) bool {
	m.linksM.RLock()
	l := m.links[peer]
	m.linksM.RUnlock()

	if l == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Stats returns the I/O statistics of the peer links.
func (m *Mesh) Stats() p2p.IOStats {
	m.linksM.RLock()
	defer m.linksM.RUnlock()

	result := p2p.NewIOStats()
	for _, l := range m.links {
		if l != nil {
			result = result.Add(l.conn.Stats)
		}
	}
	return result
}

// Gateway returns the gateway of the query, creating it if needed.
// The caller claims the gateway and must close or abort it.
func (m *Mesh) Gateway(id QueryID) (*Gateway, error) {
	gw := m.gateway(id, true)
	if gw == nil {
		return nil, mpcerr.Addressingf("query %s already closed", id)
	}
	return gw, nil
}

// Queries returns the number of queries with an open gateway.
func (m *Mesh) Queries() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.queries)
}

// gateway returns the gateway of the query, creating it if needed.
// Gateways created for frames of a query that no caller claims
// within the receive timeout are aborted.
func (m *Mesh) gateway(id QueryID, claim bool) *Gateway {
	m.m.Lock()
	defer m.m.Unlock()

	gw, ok := m.queries[id]
	if ok {
		if claim && !gw.claimed {
			gw.claimed = true
			if gw.expiry != nil {
				gw.expiry.Stop()
			}
		}
		return gw
	}
	if _, ok := m.retired[id]; ok || m.closed {
		return nil
	}
	gw = newGateway(m, id)
	gw.claimed = claim
	if !claim && m.config.ReceiveTimeout > 0 {
		gw.expiry = time.AfterFunc(m.config.ReceiveTimeout, func() {
			m.expire(gw)
		})
	}
	m.queries[id] = gw

	m.linksM.RLock()
	for _, l := range m.links {
		if l == nil {
			continue
		}
		select {
		case <-l.done:
			gw.failPeer(l.peer, l.err)
		default:
		}
	}
	m.linksM.RUnlock()

	return gw
}

func (m *Mesh) expire(gw *Gateway) {
	m.m.Lock()
	claimed := gw.claimed
	m.m.Unlock()

	if !claimed {
		gw.Abort(mpcerr.Connectivityf("query %s not started within %s",
			gw.id, m.config.ReceiveTimeout))
	}
}

func (m *Mesh) retire(id QueryID) {
	m.m.Lock()
	defer m.m.Unlock()

	if gw, ok := m.queries[id]; ok && gw.expiry != nil {
		gw.expiry.Stop()
	}
	delete(m.queries, id)

	now := time.Now()
	for q, t := range m.retired {
		if now.Sub(t) > closedQueryTTL {
			delete(m.retired, q)
		}
	}
	m.retired[id] = now
}

func (m *Mesh) send(ctx context.Context, peer Role, f *frame) error {
	m.linksM.RLock()
	l := m.links[peer]
	m.linksM.RUnlock()

	if l == nil {
		return mpcerr.Connectivityf("not connected to %s", peer)
	}
	select {
	case l.out <- f:
		return nil
	case <-l.done:
		return l.err
	case <-ctx.Done():
		return mpcerr.Cancelled(ctx.Err())
	}
}

func (m *Mesh) failLink(l *link, err error) {
	if !l.fail(err) {
		return
	}
	m.log.Warn().Str("peer", l.peer.String()).Err(err).Msg("link failed")

	m.linksM.Lock()
	if m.links[l.peer] == l {
		m.links[l.peer] = nil
	}
	m.linksM.Unlock()
	m.transport.Disconnect(l.peer, l.conn)

	m.m.Lock()
	var gateways []*Gateway
	for _, gw := range m.queries {
		gateways = append(gateways, gw)
	}
	m.m.Unlock()

	for _, gw := range gateways {
		gw.failPeer(l.peer, l.err)
	}
}

func (m *Mesh) readLoop(l *link) {
	defer m.wg.Done()

	for {
		f, err := readFrame(l.conn)
		if err != nil {
			m.failLink(l, mpcerr.Connectivity(err, "receive from %s", l.peer))
			return
		}
		gw := m.gateway(f.query, false)
		if gw == nil {
			m.log.Debug().Str("query", f.query.String()).
				Str("peer", l.peer.String()).Msg("frame for closed query")
			continue
		}
		switch f.op {
		case OpData:
			gw.deliver(l.peer, f)

		case OpCredit:
			gw.credit(l.peer, f.count)

		case OpAbort:
			gw.peerAborted(mpcerr.FromKind(f.kind, fmt.Sprintf(
				"%s aborted query %s: %s", l.peer, f.query, f.reason)))
		}
	}
}

func (m *Mesh) writeLoop(l *link) {
	defer m.wg.Done()
	defer l.conn.Close()

	for {
		select {
		case <-l.done:
			return

		case f := <-l.out:
			err := f.write(l.conn)
		batch:
			for count := 1; err == nil && count < m.config.Batch; count++ {
				select {
				case f = <-l.out:
					err = f.write(l.conn)
				default:
					break batch
				}
			}
			if err == nil {
				err = l.conn.Flush()
			}
			if err != nil {
				m.failLink(l, mpcerr.Connectivity(err, "send to %s", l.peer))
				return
			}
		}
	}
}
