//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cryo28/ipa/env"
	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/p2p"
	"github.com/cryo28/ipa/step"
	"github.com/cryo28/ipa/testworld"
)

const waitTimeout = 5 * time.Second

type helpers struct {
	world      *testworld.World
	processors [3]*Processor
}

func newHelpers(t *testing.T, mode step.Mode) *helpers {
	config := testworld.DefaultConfig()
	config.Mode = mode
	return newWorldHelpers(t, config)
}

func newWorldHelpers(t *testing.T, config testworld.Config) *helpers {
	mode := config.Mode
	w, err := testworld.New(config)
	require.NoError(t, err)
	t.Cleanup(w.Close)

	h := &helpers{
		world: w,
	}
	for _, r := range gateway.Roles {
		h.processors[r] = NewProcessor(w.Mesh(r), mode, 4, &env.Config{})
	}
	return h
}

type outcome struct {
	result *Result
	err    error
}

// start starts the query on the helpers and returns a channel
// receiving the outcomes in role order.
func (h *helpers) start(ctx context.Context, id gateway.QueryID,
	config Config, inputs [3][]byte, roles ...gateway.Role) [3]chan outcome {

	var result [3]chan outcome
	for _, r := range roles {
		ch := make(chan outcome, 1)
		result[r] = ch
		go func(r gateway.Role) {
			res, err := h.processors[r].Run(ctx, id, config, inputs[r])
			ch <- outcome{res, err}
		}(r)
	}
	return result
}

func (h *helpers) run(t *testing.T, config Config, values []uint64) (
	[3]*Result, error) {

	inputs, err := ShareInputs(config, values, rand.Reader)
	require.NoError(t, err)

	outcomes := h.start(context.Background(), gateway.NewQueryID(), config,
		inputs, gateway.Roles[:]...)

	var results [3]*Result
	var first error
	for i, ch := range outcomes {
		o := <-ch
		results[i] = o.result
		if o.err != nil && first == nil {
			first = o.err
		}
	}
	return results, first
}

func TestConfig(t *testing.T) {
	c := Config{
		Type:    TypeSort,
		Field:   ff.TypeFp32BitPrime,
		Records: 10,
		KeyBits: 4,
	}
	require.NoError(t, c.Validate())
	require.Equal(t, 5, c.Width())
	require.False(t, c.Reveals())

	data, err := c.Marshal()
	require.NoError(t, err)
	c2, err := UnmarshalConfig(data)
	require.NoError(t, err)
	require.Equal(t, c, c2)

	bad := []Config{
		{Type: "max", Field: ff.TypeFp31, Records: 1},
		{Type: TypeSum, Field: "fp7", Records: 1},
		{Type: TypeSum, Field: ff.TypeFp31, Records: 0},
		{Type: TypeSum, Field: ff.TypeFp31, Records: 1, KeyBits: 3},
		{Type: TypeSort, Field: ff.TypeFp31, Records: 1, KeyBits: 33},
		{Type: TypeSort, Field: ff.TypeFp31, Records: 31, KeyBits: 1},
	}
	for _, c := range bad {
		require.Error(t, c.Validate(), "%v", c)
	}
	err = bad[5].Validate()
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}

func TestMachine(t *testing.T) {
	sm := NewMachine([]string{"a", "b"})
	require.Equal(t, StateCreated, sm.Status().State)
	require.Error(t, sm.Enter(1))
	require.Error(t, sm.Complete())

	require.NoError(t, sm.Enter(0))
	require.Equal(t, StateRunning, sm.Status().State)
	require.Equal(t, "a", sm.Status().Name)
	require.Error(t, sm.Enter(0))
	require.Error(t, sm.Complete())

	require.NoError(t, sm.Enter(1))
	require.NoError(t, sm.Complete())
	require.Equal(t, StateCompleted, sm.Status().State)
	require.Error(t, sm.Enter(2))

	sm.Abort(mpcerr.Connectivityf("late"))
	require.Equal(t, StateCompleted, sm.Status().State)

	sm = NewMachine([]string{"a"})
	sm.Abort(mpcerr.Connectivityf("lost"))
	require.Equal(t, StateAborted, sm.Status().State)
	require.Error(t, sm.Enter(0))
}

func TestSumFp31(t *testing.T) {
	for _, mode := range []step.Mode{step.ModeDescriptive, step.ModeCompact} {
		t.Run(string(mode), func(t *testing.T) {
			h := newHelpers(t, mode)
			config := Config{
				Type:    TypeSum,
				Field:   ff.TypeFp31,
				Records: 3,
			}
			results, err := h.run(t, config, []uint64{3, 5, 7})
			require.NoError(t, err)

			// Every helper computes the sum independently.
			for _, r := range results {
				require.True(t, r.Revealed)
				require.Equal(t, []uint64{15}, r.Values)
			}
			values, err := Combine(results)
			require.NoError(t, err)
			require.Equal(t, []uint64{15}, values)
		})
	}
}

func TestQueries(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)

	tests := []struct {
		config   Config
		values   []uint64
		expected []uint64
	}{
		{
			config: Config{
				Type:    TypeSum,
				Field:   ff.TypeFp31,
				Records: 4,
			},
			values:   []uint64{20, 20, 20, 1},
			expected: []uint64{30},
		},
		{
			config: Config{
				Type:    TypeMultiply,
				Field:   ff.TypeFp32BitPrime,
				Records: 3,
			},
			values:   []uint64{2, 3, 4, 5, 100000, 100000},
			expected: []uint64{6, 20, 10000000000 % 4294967291},
		},
		{
			config: Config{
				Type:    TypeDotProduct,
				Field:   ff.TypeFp61BitPrime,
				Records: 3,
			},
			values:   []uint64{1, 2, 3, 4, 5, 6},
			expected: []uint64{2 + 12 + 30},
		},
		{
			config: Config{
				Type:    TypeSort,
				Field:   ff.TypeFp32BitPrime,
				Records: 5,
				KeyBits: 3,
			},
			// key bits (LSB first), value
			values: []uint64{
				1, 0, 1, 500, // 5
				0, 1, 0, 200, // 2
				1, 1, 1, 700, // 7
				0, 0, 0, 0, // 0
				0, 1, 0, 201, // 2
			},
			expected: []uint64{0, 200, 201, 500, 700},
		},
	}
	for _, test := range tests {
		t.Run(string(test.config.Type), func(t *testing.T) {
			results, err := h.run(t, test.config, test.values)
			require.NoError(t, err)
			values, err := Combine(results)
			require.NoError(t, err)
			require.Equal(t, test.expected, values)
			require.Equal(t, test.config.Reveals(), results[0].Revealed)
			require.NoError(t, Verify(test.config, test.values, values))
		})
	}
}

func TestShuffleQuery(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	config := Config{
		Type:    TypeShuffle,
		Field:   ff.TypeFp61BitPrime,
		Records: 20,
	}
	var values []uint64
	for i := 0; i < config.Records; i++ {
		values = append(values, uint64(i))
	}
	results, err := h.run(t, config, values)
	require.NoError(t, err)
	shuffled, err := Combine(results)
	require.NoError(t, err)
	require.ElementsMatch(t, values, shuffled)
	require.NotEqual(t, values, shuffled)
	require.NoError(t, Verify(config, values, shuffled))
}

func TestVerify(t *testing.T) {
	config := Config{
		Type:    TypeMultiply,
		Field:   ff.TypeFp31,
		Records: 2,
	}
	want, err := Expected(config, []uint64{3, 5, 6, 7})
	require.NoError(t, err)
	require.Equal(t, []uint64{15, 11}, want)
	require.NoError(t, Verify(config, []uint64{3, 5, 6, 7}, []uint64{15, 11}))
	require.Error(t, Verify(config, []uint64{3, 5, 6, 7}, []uint64{15, 12}))

	_, err = Expected(config, []uint64{3, 5, 6})
	require.Error(t, err)
	_, err = Expected(config, []uint64{3, 5, 6, 31})
	require.Error(t, err)

	sortConfig := Config{
		Type:    TypeSort,
		Field:   ff.TypeFp31,
		Records: 2,
		KeyBits: 1,
	}
	_, err = Expected(sortConfig, []uint64{2, 10, 0, 11})
	require.Error(t, err)
	want, err = Expected(sortConfig, []uint64{1, 10, 0, 11})
	require.NoError(t, err)
	require.Equal(t, []uint64{11, 10}, want)
}

func TestInvalidInput(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	config := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 2,
	}
	inputs, err := ShareInputs(config, []uint64{1, 2}, rand.Reader)
	require.NoError(t, err)

	// Out of range element in H2's input.
	inputs[gateway.H2] = bytes.Repeat([]byte{0xff}, len(inputs[gateway.H2]))

	id := gateway.NewQueryID()
	outcomes := h.start(context.Background(), id, config, inputs,
		gateway.Roles[:]...)

	o := <-outcomes[gateway.H2]
	require.Error(t, o.err)
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(o.err))

	// The peers report the cause of the abort.
	for _, r := range []gateway.Role{gateway.H1, gateway.H3} {
		o := <-outcomes[r]
		require.Error(t, o.err)
		require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(o.err))
		require.False(t, mpcerr.Retryable(o.err))

		status, ok := h.processors[r].Status(id)
		require.True(t, ok)
		require.Equal(t, StateAborted, status.State)
	}

	_, err = ShareInputs(config, []uint64{1, 31}, rand.Reader)
	require.Error(t, err)
	require.Equal(t, mpcerr.KindArithmetic, mpcerr.KindOf(err))
}

func TestCancel(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	config := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 1,
	}
	inputs, err := ShareInputs(config, []uint64{1}, rand.Reader)
	require.NoError(t, err)

	// H3 never joins; the query waits in the PRSS exchange.
	id := gateway.NewQueryID()
	outcomes := h.start(context.Background(), id, config, inputs,
		gateway.H1, gateway.H2)

	require.Eventually(t, func() bool {
		status, ok := h.processors[gateway.H1].Status(id)
		return ok && status.State == StateRunning
	}, waitTimeout, 10*time.Millisecond)

	require.NoError(t, h.processors[gateway.H1].Cancel(id))

	o := <-outcomes[gateway.H1]
	require.Error(t, o.err)
	require.Equal(t, mpcerr.KindCancelled, mpcerr.KindOf(o.err))
	require.False(t, mpcerr.Retryable(o.err))

	o = <-outcomes[gateway.H2]
	require.Error(t, o.err)
	require.Equal(t, mpcerr.KindCancelled, mpcerr.KindOf(o.err))

	require.Error(t, h.processors[gateway.H1].Cancel(gateway.NewQueryID()))
}

func TestAbortIsolation(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	config := Config{
		Type:    TypeMultiply,
		Field:   ff.TypeFp32BitPrime,
		Records: 50,
	}
	var values []uint64
	for i := 0; i < config.Records*2; i++ {
		values = append(values, uint64(i))
	}
	inputs, err := ShareInputs(config, values, rand.Reader)
	require.NoError(t, err)

	// The failing query misses H3.
	failing := gateway.NewQueryID()
	failed := h.start(context.Background(), failing, config, inputs,
		gateway.H1, gateway.H2)

	// The sibling query completes.
	results, err := h.run(t, config, values)
	require.NoError(t, err)
	products, err := Combine(results)
	require.NoError(t, err)
	for i, p := range products {
		require.Equal(t, uint64(2*i*(2*i+1)), p)
	}

	require.NoError(t, h.processors[gateway.H2].Cancel(failing))
	for _, r := range []gateway.Role{gateway.H1, gateway.H2} {
		o := <-failed[r]
		require.Error(t, o.err)
	}
}

func TestLinkDrop(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	config := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 1,
	}
	inputs, err := ShareInputs(config, []uint64{1}, rand.Reader)
	require.NoError(t, err)

	id := gateway.NewQueryID()
	outcomes := h.start(context.Background(), id, config, inputs,
		gateway.H1, gateway.H2)

	require.Eventually(t, func() bool {
		status, ok := h.processors[gateway.H1].Status(id)
		return ok && status.State == StateRunning
	}, waitTimeout, 10*time.Millisecond)

	h.world.DropLink(gateway.H1, gateway.H3)

	for _, r := range []gateway.Role{gateway.H1, gateway.H2} {
		select {
		case o := <-outcomes[r]:
			require.Error(t, o.err)
			require.Equal(t, mpcerr.KindConnectivity, mpcerr.KindOf(o.err))
			require.True(t, mpcerr.Retryable(o.err))
		case <-time.After(waitTimeout):
			t.Fatalf("%s: query not aborted", r)
		}
		status, ok := h.processors[r].Status(id)
		require.True(t, ok)
		require.Equal(t, StateAborted, status.State)
	}
}

func TestMissingHelper(t *testing.T) {
	config := testworld.DefaultConfig()
	config.Gateway.ReceiveTimeout = 100 * time.Millisecond
	h := newWorldHelpers(t, config)

	qc := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 1,
	}
	inputs, err := ShareInputs(qc, []uint64{1}, rand.Reader)
	require.NoError(t, err)

	// H3 never starts the query.
	id := gateway.NewQueryID()
	outcomes := h.start(context.Background(), id, qc, inputs,
		gateway.H1, gateway.H2)

	for _, r := range []gateway.Role{gateway.H1, gateway.H2} {
		select {
		case o := <-outcomes[r]:
			require.Error(t, o.err)
			require.Equal(t, mpcerr.KindConnectivity, mpcerr.KindOf(o.err))
		case <-time.After(waitTimeout):
			t.Fatalf("%s: query not failed", r)
		}
	}
	// H3 drops the frames it buffered for the query.
	require.Eventually(t, func() bool {
		return h.world.Mesh(gateway.H3).Queries() == 0
	}, waitTimeout, 10*time.Millisecond)
}

func TestLinkRecovery(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	config := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 2,
	}

	h.world.DropLink(gateway.H1, gateway.H2)
	require.Eventually(t, func() bool {
		return !h.world.Mesh(gateway.H1).Connected(gateway.H2) &&
			!h.world.Mesh(gateway.H2).Connected(gateway.H1)
	}, waitTimeout, 10*time.Millisecond)

	// The next query redials the link.
	for i := 0; i < 2; i++ {
		results, err := h.run(t, config, []uint64{4, 5})
		require.NoError(t, err)
		values, err := Combine(results)
		require.NoError(t, err)
		require.Equal(t, []uint64{9}, values)
	}
}

func TestClientServer(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)

	var clients [3]*Client
	e := h.world.Config().Env
	for _, r := range gateway.Roles {
		server := NewServer(h.processors[r], e.GetLogger())
		t.Cleanup(func() { server.Close() })

		c, s := p2p.Pipe()
		go server.ServeConn(s)
		clients[r] = NewClient(c)
		t.Cleanup(func() { clients[r].Close() })
	}

	config := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 3,
	}
	inputs, err := ShareInputs(config, []uint64{3, 5, 7}, rand.Reader)
	require.NoError(t, err)

	id := gateway.NewQueryID()
	var results [3]*Result
	errs := make(chan error, 3)
	for _, r := range gateway.Roles {
		go func(r gateway.Role) {
			var err error
			results[r], err = clients[r].Submit(context.Background(), id,
				config, inputs[r])
			errs <- err
		}(r)
	}
	for range gateway.Roles {
		require.NoError(t, <-errs)
	}
	values, err := Combine(results)
	require.NoError(t, err)
	require.Equal(t, []uint64{15}, values)

	// Errors keep their kind over the wire.
	err = clients[gateway.H1].Cancel(context.Background(), gateway.NewQueryID())
	require.Error(t, err)
	require.Equal(t, mpcerr.KindAddressing, mpcerr.KindOf(err))

	bad := config
	bad.Records = 0
	_, err = clients[gateway.H1].Submit(context.Background(),
		gateway.NewQueryID(), bad, nil)
	require.Error(t, err)
}

func TestClientDisconnect(t *testing.T) {
	h := newHelpers(t, step.ModeCompact)
	e := h.world.Config().Env
	server := NewServer(h.processors[gateway.H1], e.GetLogger())
	t.Cleanup(func() { server.Close() })

	c, s := p2p.Pipe()
	go server.ServeConn(s)
	client := NewClient(c)

	config := Config{
		Type:    TypeSum,
		Field:   ff.TypeFp31,
		Records: 1,
	}
	inputs, err := ShareInputs(config, []uint64{1}, rand.Reader)
	require.NoError(t, err)

	// The other helpers never join; the query waits for them.
	id := gateway.NewQueryID()
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := client.Submit(ctx, id, config, inputs[gateway.H1])
		errs <- err
	}()
	require.Eventually(t, func() bool {
		status, ok := h.processors[gateway.H1].Status(id)
		return ok && status.State == StateRunning
	}, waitTimeout, 10*time.Millisecond)

	// The client going away cancels the query.
	cancel()
	require.Error(t, <-errs)
	require.Eventually(t, func() bool {
		status, ok := h.processors[gateway.H1].Status(id)
		return ok && status.State == StateAborted
	}, waitTimeout, 10*time.Millisecond)
}

func TestTiming(t *testing.T) {
	timing := NewTiming()
	timing.Stage("prss", 1)
	timing.Stage("reveal", 1)
	require.Len(t, timing.Stages, 2)
	require.GreaterOrEqual(t, timing.Total(),
		timing.Stages[0].Elapsed+timing.Stages[1].Elapsed)

	var buf bytes.Buffer
	timing.Print(&buf, "H1", p2p.NewIOStats())
	require.Contains(t, buf.String(), "prss")
	require.Contains(t, buf.String(), "Total")

	require.Equal(t, "999B", ByteCount(999).String())
	require.Equal(t, "2kB", ByteCount(2500).String())
	require.Equal(t, "3GB", ByteCount(3_200_000_000).String())
}
