//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/p2p"
)

// Client protocol operations.
const (
	OpQuery byte = iota + 1
	OpCancel
	OpResult
	OpError
	OpOK
)

// Server serves query clients of a helper.
type Server struct {
	processor *Processor
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	m         sync.Mutex
	listeners []net.Listener
	conns     map[*p2p.Conn]struct{}
}

// NewServer creates a new query server for the processor.
func NewServer(processor *Processor, log zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		processor: processor,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		conns:     make(map[*p2p.Conn]struct{}),
	}
}

// Serve accepts client connections from the listener until the
// listener or the server is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.m.Lock()
	s.listeners = append(s.listeners, ln)
	s.m.Unlock()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.log.Debug().Str("remote", nc.RemoteAddr().String()).
			Msg("client connected")
		conn := p2p.NewConn(nc)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(conn)
		}()
	}
}

// Close closes the listeners and client connections and cancels all
// queries started by the server.
func (s *Server) Close() error {
	s.cancel()

	s.m.Lock()
	for _, ln := range s.listeners {
		ln.Close()
	}
	for conn := range s.conns {
		conn.Shutdown()
	}
	s.m.Unlock()

	s.wg.Wait()
	return nil
}

// request is an operation read from a client connection.
type request struct {
	op  byte
	err error
}

// ServeConn serves requests from the client connection until the
// client closes it. A query runs under a context that is cancelled
// when the client disconnects.
func (s *Server) ServeConn(conn *p2p.Conn) {
	s.m.Lock()
	s.conns[conn] = struct{}{}
	s.m.Unlock()

	done := make(chan struct{})
	defer func() {
		close(done)
		s.m.Lock()
		delete(s.conns, conn)
		s.m.Unlock()
		conn.Close()
	}()

	// The reader reads the operation of each request and waits for
	// resume until the request body has been read. While a query runs
	// it watches the connection for the client going away.
	reqs := make(chan request)
	resume := make(chan struct{})
	go func() {
		for {
			op, err := conn.ReceiveByte()
			select {
			case reqs <- request{op, err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
			select {
			case <-resume:
			case <-done:
				return
			}
		}
	}()

	var pending *request
	for {
		var req request
		if pending != nil {
			req, pending = *pending, nil
		} else {
			req = <-reqs
		}
		if req.err != nil {
			if !errors.Is(req.err, io.EOF) {
				s.log.Debug().Err(req.err).Msg("client read failed")
			}
			return
		}
		var err error
		switch req.op {
		case OpQuery:
			pending, err = s.query(conn, reqs, resume)
		case OpCancel:
			err = s.cancelQuery(conn, resume)
		default:
			err = errors.Newf("unknown operation 0x%x", req.op)
			s.log.Warn().Err(err).Msg("invalid client request")
			return
		}
		if err != nil {
			s.log.Debug().Err(err).Msg("client write failed")
			return
		}
	}
}

func receiveQueryID(conn *p2p.Conn) (gateway.QueryID, error) {
	data, err := conn.ReceiveData()
	if err != nil {
		return gateway.QueryID{}, err
	}
	return gateway.QueryIDFromBytes(data)
}

// query runs a query request. It returns the next request if the
// client sent one before the query completed.
func (s *Server) query(conn *p2p.Conn, reqs <-chan request,
	resume chan<- struct{}) (*request, error) {

	id, err := receiveQueryID(conn)
	if err != nil {
		return nil, err
	}
	data, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	input, err := conn.ReceiveData()
	if err != nil {
		return nil, err
	}
	resume <- struct{}{}

	config, err := UnmarshalConfig(data)
	if err != nil {
		return nil, sendError(conn, err)
	}

	ctx, cancel := context.WithCancelCause(s.ctx)
	defer cancel(nil)

	type outcome struct {
		result *Result
		err    error
	}
	outcomes := make(chan outcome, 1)
	go func() {
		result, err := s.processor.Run(ctx, id, config, input)
		outcomes <- outcome{result, err}
	}()

	var next *request
	for {
		select {
		case o := <-outcomes:
			if o.err != nil {
				return next, sendError(conn, o.err)
			}
			return next, sendResult(conn, o.result)

		case req := <-reqs:
			if req.err != nil {
				s.log.Info().Str("query", id.String()).Err(req.err).
					Msg("client disconnected, cancelling query")
				cancel(errors.Wrap(req.err, "client disconnected"))
			}
			next = &req
			reqs = nil
		}
	}
}

func (s *Server) cancelQuery(conn *p2p.Conn, resume chan<- struct{}) error {
	id, err := receiveQueryID(conn)
	if err != nil {
		return err
	}
	resume <- struct{}{}

	if err := s.processor.Cancel(id); err != nil {
		return sendError(conn, err)
	}
	if err := conn.SendByte(OpOK); err != nil {
		return err
	}
	return conn.Flush()
}

func sendError(conn *p2p.Conn, e error) error {
	if err := conn.SendByte(OpError); err != nil {
		return err
	}
	if err := conn.SendByte(byte(mpcerr.KindOf(e))); err != nil {
		return err
	}
	if err := conn.SendString(e.Error()); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveError(conn *p2p.Conn) error {
	kind, err := conn.ReceiveByte()
	if err != nil {
		return err
	}
	msg, err := conn.ReceiveString()
	if err != nil {
		return err
	}
	return mpcerr.FromKind(mpcerr.Kind(kind), msg)
}

func sendResult(conn *p2p.Conn, r *Result) error {
	if err := conn.SendByte(OpResult); err != nil {
		return err
	}
	if err := conn.SendString(string(r.Field)); err != nil {
		return err
	}
	var revealed byte
	if r.Revealed {
		revealed = 1
	}
	if err := conn.SendByte(revealed); err != nil {
		return err
	}
	if err := conn.SendUint32(r.Width); err != nil {
		return err
	}
	if err := conn.SendUint32(len(r.Values)); err != nil {
		return err
	}
	for _, v := range r.Values {
		if err := conn.SendUint64(v); err != nil {
			return err
		}
	}
	if err := conn.SendUint32(len(r.Shares)); err != nil {
		return err
	}
	for _, s := range r.Shares {
		if err := conn.SendUint64(s[0]); err != nil {
			return err
		}
		if err := conn.SendUint64(s[1]); err != nil {
			return err
		}
	}
	return conn.Flush()
}

func receiveResult(conn *p2p.Conn) (*Result, error) {
	field, err := conn.ReceiveString()
	if err != nil {
		return nil, err
	}
	t, err := ff.ParseType(field)
	if err != nil {
		return nil, err
	}
	revealed, err := conn.ReceiveByte()
	if err != nil {
		return nil, err
	}
	width, err := conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	result := &Result{
		Field:    t,
		Revealed: revealed != 0,
		Width:    width,
	}
	count, err := conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		v, err := conn.ReceiveUint64()
		if err != nil {
			return nil, err
		}
		result.Values = append(result.Values, v)
	}
	count, err = conn.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		left, err := conn.ReceiveUint64()
		if err != nil {
			return nil, err
		}
		right, err := conn.ReceiveUint64()
		if err != nil {
			return nil, err
		}
		result.Shares = append(result.Shares, [2]uint64{left, right})
	}
	return result, nil
}
