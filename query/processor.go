//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/cryo28/ipa/env"
	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/protocol/basics"
	"github.com/cryo28/ipa/protocol/sort"
	"github.com/cryo28/ipa/prss"
	"github.com/cryo28/ipa/secret"
	"github.com/cryo28/ipa/step"
)

// Steps of the query circuits.
const (
	StepPRSSExchange  = "prss_exchange"
	StepSum           = "sum"
	StepMultiply      = "multiply"
	StepDotProduct    = "dot_product"
	StepSumOfProducts = "sum_of_products"
	StepShuffle       = "shuffle"
	StepSort          = "sort"
	StepReveal        = "reveal"
)

// ErrCancelledByClient is the cause of queries cancelled with
// Processor.Cancel.
var ErrCancelledByClient = mpcerr.Cancelled(errors.New("cancelled by client"))

const maxRetained = 1024

// Processor runs queries on one helper.
type Processor struct {
	mesh    *gateway.Mesh
	env     *env.Config
	mode    step.Mode
	workers int
	log     zerolog.Logger
	report  io.Writer

	m       sync.Mutex
	queries map[gateway.QueryID]*instance
	order   []gateway.QueryID
}

type instance struct {
	machine *Machine
	cancel  context.CancelCauseFunc
}

// NewProcessor creates a new query processor for the helper mesh.
func NewProcessor(mesh *gateway.Mesh, mode step.Mode, workers int,
	e *env.Config) *Processor {

	log := e.GetLogger()
	return &Processor{
		mesh:    mesh,
		env:     e,
		mode:    mode,
		workers: workers,
		log:     log.With().Str("role", mesh.Role().String()).Logger(),
		queries: make(map[gateway.QueryID]*instance),
	}
}

// SetReport sets the writer for per-query timing reports. A nil
// writer disables the reports.
func (p *Processor) SetReport(w io.Writer) {
	p.report = w
}

// Status returns the status of the query.
func (p *Processor) Status(id gateway.QueryID) (Status, bool) {
	p.m.Lock()
	defer p.m.Unlock()

	inst, ok := p.queries[id]
	if !ok {
		return Status{}, false
	}
	return inst.machine.Status(), true
}

// Cancel cancels the running query.
func (p *Processor) Cancel(id gateway.QueryID) error {
	p.m.Lock()
	inst, ok := p.queries[id]
	p.m.Unlock()

	if !ok {
		return mpcerr.Addressingf("unknown query %s", id)
	}
	inst.cancel(ErrCancelledByClient)
	return nil
}

func (p *Processor) register(id gateway.QueryID, stages []string,
	cancel context.CancelCauseFunc) (*instance, error) {

	p.m.Lock()
	defer p.m.Unlock()

	if _, ok := p.queries[id]; ok {
		return nil, mpcerr.Addressingf("query %s already exists", id)
	}
	for len(p.order) >= maxRetained {
		old := p.order[0]
		if !p.queries[old].machine.Status().State.Terminal() {
			break
		}
		delete(p.queries, old)
		p.order = p.order[1:]
	}
	inst := &instance{
		machine: NewMachine(stages),
		cancel:  cancel,
	}
	p.queries[id] = inst
	p.order = append(p.order, id)
	return inst, nil
}

// Stages returns the stage names of the query type.
func Stages(t Type) []string {
	switch t {
	case TypeSum:
		return []string{"prss", "aggregate", "reveal"}
	case TypeMultiply:
		return []string{"prss", "multiply"}
	case TypeDotProduct:
		return []string{"prss", "sum-of-products", "reveal"}
	case TypeShuffle:
		return []string{"prss", "shuffle"}
	case TypeSort:
		return []string{"prss", "sort"}
	default:
		return nil
	}
}

// Run runs the query with the helper's input shares. The input holds
// Records·Width encoded shares in record order. On error the query is
// aborted and the peers are notified.
func (p *Processor) Run(ctx context.Context, id gateway.QueryID,
	config Config, input []byte) (*Result, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	inst, err := p.register(id, Stages(config.Type), cancel)
	if err != nil {
		return nil, err
	}
	log := p.log.With().Str("query", id.String()).
		Str("type", string(config.Type)).Logger()
	log.Info().Int("records", config.Records).Str("field", string(config.Field)).
		Msg("query started")

	var result *Result
	switch config.Field {
	case ff.TypeFp31:
		result, err = run[ff.Fp31](ctx, p, inst, id, config, input)
	case ff.TypeFp32BitPrime:
		result, err = run[ff.Fp32BitPrime](ctx, p, inst, id, config, input)
	default:
		result, err = run[ff.Fp61BitPrime](ctx, p, inst, id, config, input)
	}
	if err != nil {
		if ctx.Err() != nil && mpcerr.KindOf(err) == mpcerr.KindCancelled {
			err = mpcerr.Cancelled(context.Cause(ctx))
		}
		inst.machine.Abort(err)
		log.Warn().Err(err).Str("kind", mpcerr.KindOf(err).String()).
			Msg("query aborted")
		return nil, err
	}
	if err := inst.machine.Complete(); err != nil {
		return nil, err
	}
	log.Info().Dur("elapsed", result.Timing.Total()).Msg("query completed")
	if p.report != nil {
		result.Timing.Print(p.report,
			fmt.Sprintf("%s %s", config.Type, id), p.mesh.Stats())
	}
	return result, nil
}

type stage func(ctx context.Context) error

func run[F ff.Field[F]](ctx context.Context, p *Processor, inst *instance,
	id gateway.QueryID, config Config, input []byte) (*Result, error) {

	if err := p.mesh.Connect(ctx); err != nil {
		return nil, err
	}
	gw, err := p.mesh.Gateway(id)
	if err != nil {
		return nil, err
	}
	result, err := runStages[F](ctx, p, inst, gw, config, input)
	if err != nil {
		gw.Abort(err)
		return nil, err
	}
	gw.Close()
	return result, nil
}

func runStages[F ff.Field[F]](ctx context.Context, p *Processor,
	inst *instance, gw *gateway.Gateway, config Config, input []byte) (
	*Result, error) {

	timing := NewTiming()
	width := config.Width()

	shares, err := secret.ParseShares[F](input)
	if err != nil {
		return nil, err
	}
	if len(shares) != config.Records*width {
		return nil, mpcerr.Arithmeticf("expected %d input shares, got %d",
			config.Records*width, len(shares))
	}
	rows := make(sort.Rows[F], config.Records)
	for i := range rows {
		rows[i] = shares[i*width : (i+1)*width]
	}

	root := step.Root(p.mode)
	var c *protocol.Context

	result := newResult[F](1)
	result.Timing = timing

	stages := []stage{
		func(ctx context.Context) error {
			ep, err := prss.Exchange(ctx, gw, root.Narrow(StepPRSSExchange),
				p.env.GetRandom())
			if err != nil {
				return err
			}
			c = protocol.NewContext(gw, ep, root, p.workers)
			return nil
		},
	}
	stages = append(stages, circuit(config, rows, &c, result)...)

	for i, fn := range stages {
		if err := ctx.Err(); err != nil {
			return nil, mpcerr.Cancelled(context.Cause(ctx))
		}
		if err := inst.machine.Enter(i); err != nil {
			return nil, err
		}
		if err := fn(ctx); err != nil {
			return nil, err
		}
		timing.Stage(inst.machine.Status().Name, config.Records)
	}
	return result, nil
}

// circuit returns the circuit stages of the query. The stages read
// the protocol context through c, which the PRSS stage sets.
func circuit[F ff.Field[F]](config Config, rows sort.Rows[F],
	c **protocol.Context, result *Result) []stage {

	column := func(col int) []secret.Replicated[F] {
		v := make([]secret.Replicated[F], len(rows))
		for i, row := range rows {
			v[i] = row[col]
		}
		return v
	}

	switch config.Type {
	case TypeSum:
		var sum secret.Replicated[F]
		return []stage{
			func(ctx context.Context) error {
				for _, row := range rows {
					sum = sum.Add(row[0])
				}
				return nil
			},
			func(ctx context.Context) error {
				rc := (*c).Narrow(StepSum).Narrow(StepReveal).SetTotalRecords(1)
				v, err := basics.Reveal(ctx, rc, 0, sum)
				if err != nil {
					return err
				}
				result.setValues([]uint64{v.Uint64()})
				return nil
			},
		}

	case TypeMultiply:
		return []stage{
			func(ctx context.Context) error {
				products, err := basics.MultiplyAll(ctx,
					(*c).Narrow(StepMultiply), column(0), column(1))
				if err != nil {
					return err
				}
				setShares(result, products)
				return nil
			},
		}

	case TypeDotProduct:
		var dot secret.Replicated[F]
		return []stage{
			func(ctx context.Context) error {
				sc := (*c).Narrow(StepDotProduct).Narrow(StepSumOfProducts).
					SetTotalRecords(1)
				var err error
				dot, err = basics.SumOfProducts(ctx, sc, 0, column(0), column(1))
				return err
			},
			func(ctx context.Context) error {
				rc := (*c).Narrow(StepDotProduct).Narrow(StepReveal).
					SetTotalRecords(1)
				v, err := basics.Reveal(ctx, rc, 0, dot)
				if err != nil {
					return err
				}
				result.setValues([]uint64{v.Uint64()})
				return nil
			},
		}

	case TypeShuffle:
		return []stage{
			func(ctx context.Context) error {
				shuffled, err := sort.Shuffle(ctx, (*c).Narrow(StepShuffle), rows)
				if err != nil {
					return err
				}
				var out []secret.Replicated[F]
				for _, row := range shuffled {
					out = append(out, row...)
				}
				setShares(result, out)
				return nil
			},
		}

	case TypeSort:
		keyBits := make([]int, config.KeyBits)
		for i := range keyBits {
			keyBits[i] = i
		}
		return []stage{
			func(ctx context.Context) error {
				sorted, err := sort.Sort(ctx, (*c).Narrow(StepSort), rows,
					keyBits)
				if err != nil {
					return err
				}
				out := make([]secret.Replicated[F], len(sorted))
				for i, row := range sorted {
					out[i] = row[config.KeyBits]
				}
				setShares(result, out)
				return nil
			},
		}

	default:
		return nil
	}
}
