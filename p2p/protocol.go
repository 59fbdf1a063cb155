//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package p2p implements buffered big-endian framing over byte
// streams and the TCP network connecting the helpers.
package p2p

import (
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

const (
	numBuffers   = 3
	writeBufSize = 64 * 1024
	readBufSize  = 1024 * 1024

	// MaxDataSize limits the size of a single data element.
	MaxDataSize = 256 * 1024 * 1024
)

// IOStats holds the byte counters of connections.
type IOStats struct {
	Sent    *atomic.Uint64
	Recvd   *atomic.Uint64
	Flushed *atomic.Uint64
}

// NewIOStats creates zeroed I/O statistics.
func NewIOStats() IOStats {
	return IOStats{
		Sent:    new(atomic.Uint64),
		Recvd:   new(atomic.Uint64),
		Flushed: new(atomic.Uint64),
	}
}

// Add returns the sum of the statistics.
func (stats IOStats) Add(o IOStats) IOStats {
	result := NewIOStats()
	result.Sent.Store(load(stats.Sent) + load(o.Sent))
	result.Recvd.Store(load(stats.Recvd) + load(o.Recvd))
	result.Flushed.Store(load(stats.Flushed) + load(o.Flushed))
	return result
}

// Sum returns the number of bytes sent and received.
func (stats IOStats) Sum() uint64 {
	return load(stats.Sent) + load(stats.Recvd)
}

func load(v *atomic.Uint64) uint64 {
	if v == nil {
		return 0
	}
	return v.Load()
}

// Conn frames values over a byte stream. Sent values are buffered
// until Flush and written by a background writer so that the sender
// can fill the next buffer while the previous one is in flight. A
// Conn is not safe for concurrent use, but one goroutine may send
// while another receives.
type Conn struct {
	rw    io.ReadWriter
	Stats IOStats

	wbuf []byte
	wpos int

	rbuf   []byte
	rstart int
	rend   int

	free    chan []byte
	pending chan []byte
	werr    atomic.Pointer[error]

	closeOnce sync.Once
	closeErr  error
}

// NewConn creates a new connection over the byte stream.
func NewConn(rw io.ReadWriter) *Conn {
	c := &Conn{
		rw:      rw,
		Stats:   NewIOStats(),
		rbuf:    make([]byte, readBufSize),
		free:    make(chan []byte, numBuffers),
		pending: make(chan []byte, numBuffers),
	}
	for i := 0; i < numBuffers; i++ {
		c.free <- make([]byte, writeBufSize)
	}
	c.wbuf = <-c.free

	go c.writer()

	return c
}

// writer writes the pending buffers and returns them to the free
// list. After the first write error the remaining buffers are
// dropped; the error is reported by the next Flush.
func (c *Conn) writer() {
	for buf := range c.pending {
		if c.writeErr() == nil {
			if _, err := c.rw.Write(buf); err != nil {
				c.werr.Store(&err)
			}
		}
		c.free <- buf[:cap(buf)]
	}
	close(c.free)
}

func (c *Conn) writeErr() error {
	if err := c.werr.Load(); err != nil {
		return *err
	}
	return nil
}

// reserve returns the next n bytes of the write buffer.
func (c *Conn) reserve(n int) ([]byte, error) {
	if c.wpos+n > len(c.wbuf) {
		if err := c.Flush(); err != nil {
			return nil, err
		}
	}
	b := c.wbuf[c.wpos : c.wpos+n]
	c.wpos += n
	return b, nil
}

// Flush hands the buffered data to the writer.
func (c *Conn) Flush() error {
	if c.wpos == 0 {
		return nil
	}
	c.Stats.Sent.Add(uint64(c.wpos))
	c.pending <- c.wbuf[:c.wpos]

	next := <-c.free
	if err := c.writeErr(); err != nil {
		return err
	}
	c.wbuf = next
	c.wpos = 0
	c.Stats.Flushed.Add(1)
	return nil
}

// fill reads from the stream until at least n unread bytes are
// buffered.
func (c *Conn) fill(n int) error {
	unread := c.rend - c.rstart
	if n > len(c.rbuf) {
		buf := make([]byte, n)
		copy(buf, c.rbuf[c.rstart:c.rend])
		c.rbuf = buf
	} else {
		copy(c.rbuf, c.rbuf[c.rstart:c.rend])
	}
	c.rstart = 0
	c.rend = unread

	for c.rend < n {
		got, err := c.rw.Read(c.rbuf[c.rend:])
		if err != nil {
			return err
		}
		c.Stats.Recvd.Add(uint64(got))
		c.rend += got
	}
	return nil
}

// next consumes the next n bytes of the input.
func (c *Conn) next(n int) ([]byte, error) {
	if c.rstart+n > c.rend {
		if err := c.fill(n); err != nil {
			return nil, err
		}
	}
	b := c.rbuf[c.rstart : c.rstart+n]
	c.rstart += n
	return b, nil
}

// Close flushes pending data, stops the writer, and closes the
// stream. Only the first call closes the connection; later calls
// return its result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		flushErr := c.Flush()

		close(c.pending)
		for range c.free {
		}
		closeErr := c.Shutdown()

		c.closeErr = flushErr
		if c.closeErr == nil {
			c.closeErr = c.writeErr()
		}
		if c.closeErr == nil {
			c.closeErr = closeErr
		}
	})
	return c.closeErr
}

// Shutdown closes the stream without flushing. It unblocks the
// goroutines reading from or writing to the connection and is safe
// to call concurrently with them.
func (c *Conn) Shutdown() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SendByte sends a byte value.
func (c *Conn) SendByte(val byte) error {
	b, err := c.reserve(1)
	if err != nil {
		return err
	}
	b[0] = val
	return nil
}

// SendUint32 sends an uint32 value.
func (c *Conn) SendUint32(val int) error {
	b, err := c.reserve(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b, uint32(val))
	return nil
}

// SendUint64 sends an uint64 value.
func (c *Conn) SendUint64(val uint64) error {
	b, err := c.reserve(8)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b, val)
	return nil
}

// SendData sends length-prefixed binary data. Data larger than the
// write buffer is sent in buffer-sized chunks.
func (c *Conn) SendData(val []byte) error {
	if len(val) > MaxDataSize {
		return errors.Newf("data too large: %d > %d", len(val), MaxDataSize)
	}
	if err := c.SendUint32(len(val)); err != nil {
		return err
	}
	for len(val) > 0 {
		if c.wpos == len(c.wbuf) {
			if err := c.Flush(); err != nil {
				return err
			}
		}
		n := copy(c.wbuf[c.wpos:], val)
		c.wpos += n
		val = val[n:]
	}
	return nil
}

// SendString sends a string value.
func (c *Conn) SendString(val string) error {
	return c.SendData([]byte(val))
}

// ReceiveByte receives a byte value.
func (c *Conn) ReceiveByte() (byte, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReceiveUint32 receives an uint32 value.
func (c *Conn) ReceiveUint32() (int, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

// ReceiveUint64 receives an uint64 value.
func (c *Conn) ReceiveUint64() (uint64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReceiveData receives length-prefixed binary data.
func (c *Conn) ReceiveData() ([]byte, error) {
	n, err := c.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if n > MaxDataSize {
		return nil, errors.Newf("data too large: %d > %d", n, MaxDataSize)
	}
	b, err := c.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReceiveString receives a string value.
func (c *Conn) ReceiveString() (string, error) {
	b, err := c.ReceiveData()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
