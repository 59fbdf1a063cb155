//
// network_test.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNetwork(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var nws [3]*Network
	for i := range nws {
		nw, err := NewNetwork("127.0.0.1:0", i, zerolog.Nop())
		require.NoError(t, err)
		nw.RetryDelay = 10 * time.Millisecond
		nws[i] = nw
		defer nw.Close()
	}
	for i := range nws {
		for j := range nws {
			if i == j {
				continue
			}
			require.NoError(t, nws[i].AddPeer(ctx, nws[j].Addr(), j))
		}
	}

	c01, err := nws[0].Connect(ctx, 1)
	require.NoError(t, err)
	c10, err := nws[1].Connect(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, c01.SendString("hello"))
	require.NoError(t, c01.Flush())
	v, err := c10.ReceiveString()
	require.NoError(t, err)
	require.Equal(t, "hello", v)

	c21, err := nws[2].Connect(ctx, 1)
	require.NoError(t, err)
	c12, err := nws[1].Connect(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, c21.SendUint64(42))
	require.NoError(t, c21.Flush())
	n, err := c12.ReceiveUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(42), n)

	require.NotZero(t, nws[1].Stats().Sum())
}

func TestNetworkConnectCancel(t *testing.T) {
	nw, err := NewNetwork("127.0.0.1:0", 0, zerolog.Nop())
	require.NoError(t, err)
	defer nw.Close()

	ctx, cancel := context.WithTimeout(context.Background(),
		50*time.Millisecond)
	defer cancel()

	_, err = nw.Connect(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNetworkHandshake(t *testing.T) {
	nw, err := NewNetwork("127.0.0.1:0", 1, zerolog.Nop())
	require.NoError(t, err)
	defer nw.Close()

	dial := func(id int) (*Conn, byte, error) {
		nc, err := net.Dial("tcp", nw.Addr())
		require.NoError(t, err)
		conn := NewConn(nc)
		require.NoError(t, conn.SendUint32(id))
		require.NoError(t, conn.Flush())
		nc.SetReadDeadline(time.Now().Add(5 * time.Second))
		ack, err := conn.ReceiveByte()
		return conn, ack, err
	}

	// Nodes with higher or equal IDs must wait for our dial.
	for _, id := range []int{1, 2} {
		conn, _, err := dial(id)
		require.Error(t, err, "inbound connection from %d accepted", id)
		conn.Close()
	}

	conn, ack, err := dial(0)
	require.NoError(t, err)
	require.Equal(t, byte(handshakeAck), ack)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = nw.Connect(ctx, 0)
	require.NoError(t, err)
}

func TestNetworkReconnect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var nws [2]*Network
	for i := range nws {
		nw, err := NewNetwork("127.0.0.1:0", i, zerolog.Nop())
		require.NoError(t, err)
		nw.RetryDelay = 10 * time.Millisecond
		nws[i] = nw
		defer nw.Close()
	}
	require.NoError(t, nws[0].AddPeer(ctx, nws[1].Addr(), 1))

	c01, err := nws[0].Connect(ctx, 1)
	require.NoError(t, err)
	c10, err := nws[1].Connect(ctx, 0)
	require.NoError(t, err)

	// Both ends release the failed connection; the dialer redials.
	nws[0].Disconnect(1, c01)
	nws[1].Disconnect(0, c10)

	d01, err := nws[0].Connect(ctx, 1)
	require.NoError(t, err)
	require.NotSame(t, c01, d01)
	d10, err := nws[1].Connect(ctx, 0)
	require.NoError(t, err)
	require.NotSame(t, c10, d10)

	require.NoError(t, d01.SendString("again"))
	require.NoError(t, d01.Flush())
	v, err := d10.ReceiveString()
	require.NoError(t, err)
	require.Equal(t, "again", v)

	// Releasing a stale connection keeps the current one.
	nws[1].Disconnect(0, c10)
	cur, err := nws[1].Connect(ctx, 0)
	require.NoError(t, err)
	require.Same(t, d10, cur)
}
