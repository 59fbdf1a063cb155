//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package gateway implements the communication mesh between the three
// helpers. Messages are addressed by channel, the pair of a step and
// a peer, and by record within the channel. All channels of all
// queries are multiplexed over one connection per peer.
//
// Sends never wait for the receiver but each message in flight holds
// one credit of the per-peer send buffer; when the buffer is
// exhausted the sender is suspended until the peer consumes a message
// and returns the credit. Receives suspend until the addressed
// message arrives; messages arriving early are buffered.
package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/step"
)

// ErrClosed is returned for operations on a closed gateway.
var ErrClosed = mpcerr.Cancelled(errors.New("query gateway closed"))

// Gateway implements the communication endpoint of one query.
type Gateway struct {
	mesh *Mesh
	id   QueryID
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelCauseFunc
	links  [3]*peerLink

	// Protected by the mesh lock.
	claimed bool
	expiry  *time.Timer

	m        sync.Mutex
	channels map[channelKey]*Channel
	err      error
	once     sync.Once
}

type peerLink struct {
	peer     Role
	ctx      context.Context
	cancel   context.CancelCauseFunc
	credits  *semaphore.Weighted
	inflight atomic.Int64
}

func (pl *peerLink) err() error {
	return context.Cause(pl.ctx)
}

type channelKey struct {
	gate string
	peer Role
}

func newGateway(mesh *Mesh, id QueryID) *Gateway {
	ctx, cancel := context.WithCancelCause(context.Background())
	gw := &Gateway{
		mesh:     mesh,
		id:       id,
		log:      mesh.log.With().Str("query", id.String()).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		channels: make(map[channelKey]*Channel),
	}
	for _, peer := range mesh.role.Peers() {
		pctx, pcancel := context.WithCancelCause(ctx)
		gw.links[peer] = &peerLink{
			peer:    peer,
			ctx:     pctx,
			cancel:  pcancel,
			credits: semaphore.NewWeighted(int64(mesh.config.SendBuffer)),
		}
	}
	return gw
}

// ID returns the query ID of the gateway.
func (gw *Gateway) ID() QueryID {
	return gw.id
}

// Role returns the helper role of the gateway.
func (gw *Gateway) Role() Role {
	return gw.mesh.role
}

// Done returns a channel that is closed when the gateway is closed or
// aborted.
func (gw *Gateway) Done() <-chan struct{} {
	return gw.ctx.Done()
}

// Err returns the error that aborted the gateway or nil if the
// gateway was not aborted.
func (gw *Gateway) Err() error {
	gw.m.Lock()
	defer gw.m.Unlock()
	return gw.err
}

// PeerErr returns the error that failed the link to the peer or nil
// if the link is operational.
func (gw *Gateway) PeerErr(peer Role) error {
	pl := gw.links[peer]
	if pl == nil {
		return mpcerr.Addressingf("%s is not a peer of %s", peer, gw.mesh.role)
	}
	return pl.err()
}

// Close closes the gateway after the query has completed. Peers are
// not notified.
func (gw *Gateway) Close() {
	gw.once.Do(func() {
		gw.cancel(ErrClosed)
		gw.mesh.retire(gw.id)
		gw.log.Debug().Msg("gateway closed")
	})
}

// Abort aborts the query. The peers are notified in the background
// so that their pending operations for the query fail with the kind
// of the cause without waiting for a timeout.
func (gw *Gateway) Abort(cause error) {
	gw.once.Do(func() {
		gw.m.Lock()
		gw.err = cause
		gw.m.Unlock()

		gw.log.Warn().Err(cause).Msg("query aborted")

		f := &frame{
			op:     OpAbort,
			query:  gw.id,
			kind:   mpcerr.KindOf(cause),
			reason: cause.Error(),
		}
		for _, peer := range gw.mesh.role.Peers() {
			if gw.links[peer].err() == nil {
				go gw.notifyAbort(peer, f)
			}
		}
		gw.cancel(cause)
		gw.mesh.retire(gw.id)
	})
}

func (gw *Gateway) notifyAbort(peer Role, f *frame) {
	ctx, cancel := context.WithTimeout(context.Background(), abortSendTimeout)
	defer cancel()

	if err := gw.mesh.send(ctx, peer, f); err != nil {
		gw.log.Debug().Str("peer", peer.String()).Err(err).
			Msg("abort notification failed")
	}
}

// Channel returns the channel for the gate and peer. The total
// argument bounds the record IDs of the channel; zero leaves the
// channel unbounded.
func (gw *Gateway) Channel(gate step.Gate, peer Role, total int) (
	*Channel, error) {

	if err := gate.Err(); err != nil {
		gw.Abort(err)
		return nil, err
	}
	if gw.links[peer] == nil {
		err := mpcerr.Addressingf("%s is not a peer of %s", peer, gw.mesh.role)
		gw.Abort(err)
		return nil, err
	}
	ch := gw.channel(gate.String(), peer)
	if total > 0 {
		ch.setTotal(total)
	}
	return ch, nil
}

// Send sends the payload to the peer at the gate and record.
func (gw *Gateway) Send(ctx context.Context, gate step.Gate, peer Role,
	record RecordID, payload []byte) error {

	ch, err := gw.Channel(gate, peer, 0)
	if err != nil {
		return err
	}
	return ch.Send(ctx, record, payload)
}

// Receive receives the payload from the peer at the gate and record.
func (gw *Gateway) Receive(ctx context.Context, gate step.Gate, peer Role,
	record RecordID) ([]byte, error) {

	ch, err := gw.Channel(gate, peer, 0)
	if err != nil {
		return nil, err
	}
	return ch.Receive(ctx, record)
}

func (gw *Gateway) channel(gate string, peer Role) *Channel {
	key := channelKey{
		gate: gate,
		peer: peer,
	}
	gw.m.Lock()
	defer gw.m.Unlock()

	ch, ok := gw.channels[key]
	if !ok {
		ch = &Channel{
			gw:       gw,
			gate:     gate,
			peer:     peer,
			link:     gw.links[peer],
			sent:     make(map[RecordID]struct{}),
			slots:    make(map[RecordID]*slot),
			consumed: make(map[RecordID]struct{}),
		}
		gw.channels[key] = ch
	}
	return ch
}

func (gw *Gateway) failPeer(peer Role, err error) {
	pl := gw.links[peer]
	if pl == nil || pl.err() != nil {
		return
	}
	pl.cancel(err)
	gw.log.Debug().Str("peer", peer.String()).Err(err).Msg("peer link failed")
}

// peerAborted fails all peer links of the query. The query is dead
// once any helper has abandoned it.
func (gw *Gateway) peerAborted(err error) {
	for _, peer := range gw.mesh.role.Peers() {
		gw.failPeer(peer, err)
	}
}

func (gw *Gateway) deliver(peer Role, f *frame) {
	if gw.links[peer] == nil {
		return
	}
	ch := gw.channel(f.gate, peer)
	if err := ch.deliver(f.record, f.payload); err != nil {
		gw.Abort(err)
	}
}

func (gw *Gateway) credit(peer Role, count int) {
	pl := gw.links[peer]
	if pl == nil {
		return
	}
	if pl.inflight.Add(-int64(count)) < 0 {
		gw.Abort(mpcerr.Addressingf("%s returned %d credits, more than in flight",
			peer, count))
		return
	}
	pl.credits.Release(int64(count))
}

// Channel implements the communication channel for one step with one
// peer. Outgoing and incoming messages are addressed by record IDs.
type Channel struct {
	gw   *Gateway
	gate string
	peer Role
	link *peerLink

	m        sync.Mutex
	total    int
	next     RecordID
	sent     map[RecordID]struct{}
	slots    map[RecordID]*slot
	consumed map[RecordID]struct{}
}

type slot struct {
	data  []byte
	ready chan struct{}
	full  bool
}

func (ch *Channel) String() string {
	return ch.gate + "@" + ch.peer.String()
}

func (ch *Channel) setTotal(total int) {
	ch.m.Lock()
	defer ch.m.Unlock()
	if ch.total == 0 {
		ch.total = total
	}
}

func (ch *Channel) checkRecord(record RecordID) error {
	if ch.total > 0 && int(record) >= ch.total {
		return mpcerr.Addressingf("%s: record %d out of bounds [0,%d)",
			ch, record, ch.total)
	}
	return nil
}

// Send sends the payload for the record. It blocks while the send
// buffer of the peer link is full.
func (ch *Channel) Send(ctx context.Context, record RecordID,
	payload []byte) error {

	ch.m.Lock()
	err := ch.checkRecord(record)
	if err == nil {
		if _, ok := ch.sent[record]; ok {
			err = mpcerr.Addressingf("%s: record %d sent twice", ch, record)
		} else {
			ch.sent[record] = struct{}{}
		}
	}
	ch.m.Unlock()
	if err != nil {
		ch.gw.Abort(err)
		return err
	}

	if err := ch.acquire(ctx); err != nil {
		return err
	}
	ch.link.inflight.Add(1)

	return ch.sendFrame(ctx, &frame{
		op:      OpData,
		query:   ch.gw.id,
		gate:    ch.gate,
		record:  record,
		payload: payload,
	})
}

func (ch *Channel) acquire(ctx context.Context) error {
	if err := ch.link.err(); err != nil {
		return err
	}
	actx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(ch.link.ctx, func() {
		cancel(context.Cause(ch.link.ctx))
	})
	defer stop()

	if err := ch.link.credits.Acquire(actx, 1); err != nil {
		if ctx.Err() != nil {
			return mpcerr.Cancelled(ctx.Err())
		}
		return ch.link.err()
	}
	return nil
}

func (ch *Channel) sendFrame(ctx context.Context, f *frame) error {
	if err := ch.link.err(); err != nil {
		return err
	}
	err := ch.gw.mesh.send(ctx, ch.peer, f)
	if err != nil && mpcerr.KindOf(err) == mpcerr.KindConnectivity {
		ch.gw.failPeer(ch.peer, err)
	}
	return err
}

// Receive receives the payload of the record. It blocks until the
// message arrives, the context is done, or the peer link fails.
func (ch *Channel) Receive(ctx context.Context, record RecordID) (
	[]byte, error) {

	ch.m.Lock()
	err := ch.checkRecord(record)
	if err == nil {
		if _, ok := ch.consumed[record]; ok {
			err = mpcerr.Addressingf("%s: record %d received twice", ch, record)
		}
	}
	if err != nil {
		ch.m.Unlock()
		ch.gw.Abort(err)
		return nil, err
	}
	s := ch.slot(record)
	ch.m.Unlock()

	select {
	case <-s.ready:
	default:
		if err := ch.wait(ctx, s); err != nil {
			return nil, err
		}
	}

	ch.m.Lock()
	if _, ok := ch.consumed[record]; ok {
		ch.m.Unlock()
		err := mpcerr.Addressingf("%s: record %d received twice", ch, record)
		ch.gw.Abort(err)
		return nil, err
	}
	delete(ch.slots, record)
	ch.consumed[record] = struct{}{}
	ch.m.Unlock()

	err = ch.sendFrame(context.WithoutCancel(ctx), &frame{
		op:    OpCredit,
		query: ch.gw.id,
		count: 1,
	})
	if err != nil {
		return nil, err
	}
	return s.data, nil
}

func (ch *Channel) wait(ctx context.Context, s *slot) error {
	var timeout <-chan time.Time
	if t := ch.gw.mesh.config.ReceiveTimeout; t > 0 {
		timer := time.NewTimer(t)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-s.ready:
		return nil

	case <-ctx.Done():
		return mpcerr.Cancelled(ctx.Err())

	case <-ch.link.ctx.Done():
		// Data that arrived before the failure is still valid.
		select {
		case <-s.ready:
			return nil
		default:
		}
		return ch.link.err()

	case <-timeout:
		err := mpcerr.Connectivityf("%s: receive timed out after %s",
			ch, ch.gw.mesh.config.ReceiveTimeout)
		ch.gw.failPeer(ch.peer, err)
		return ch.link.err()
	}
}

// Next receives the next record of the channel. Records are returned
// in record ID order regardless of their arrival order.
func (ch *Channel) Next(ctx context.Context) (RecordID, []byte, error) {
	ch.m.Lock()
	record := ch.next
	ch.next++
	ch.m.Unlock()

	data, err := ch.Receive(ctx, record)
	return record, data, err
}

// slot returns the slot for the record. The channel lock must be
// held.
func (ch *Channel) slot(record RecordID) *slot {
	s, ok := ch.slots[record]
	if !ok {
		s = &slot{
			ready: make(chan struct{}),
		}
		ch.slots[record] = s
	}
	return s
}

func (ch *Channel) deliver(record RecordID, data []byte) error {
	ch.m.Lock()
	defer ch.m.Unlock()

	if err := ch.checkRecord(record); err != nil {
		return err
	}
	if _, ok := ch.consumed[record]; ok {
		return mpcerr.Addressingf("%s: record %d delivered twice", ch, record)
	}
	s := ch.slot(record)
	if s.full {
		return mpcerr.Addressingf("%s: record %d delivered twice", ch, record)
	}
	s.data = data
	s.full = true
	close(s.ready)
	return nil
}
