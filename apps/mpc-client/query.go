//
// query.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/tabulate"
	"golang.org/x/sync/errgroup"

	"github.com/cryo28/ipa/config"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/mpcerr"
	"github.com/cryo28/ipa/query"
)

func runQuery(ctx context.Context, w io.Writer, conf *config.Config,
	qc query.Config, values []uint64, verify bool) error {

	shares, err := query.ShareInputs(qc, values, rand.Reader)
	if err != nil {
		return err
	}
	id := gateway.NewQueryID()
	fmt.Fprintf(w, "query %s: %s, %d records, field %s\n",
		id, qc.Type, qc.Records, qc.Field)

	start := time.Now()
	var results [3]*query.Result

	g, gctx := errgroup.WithContext(ctx)
	for _, role := range gateway.Roles {
		h, err := conf.Helper(role)
		if err != nil {
			return err
		}
		g.Go(func() error {
			client, err := query.Dial(gctx, h.ClientAddress)
			if err != nil {
				return errors.Wrapf(err, "%s", role)
			}
			defer client.Close()

			result, err := client.Submit(gctx, id, qc, shares[role.Index()])
			if err != nil {
				return errors.Wrapf(err, "%s", role)
			}
			results[role.Index()] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		kind := mpcerr.KindOf(err)
		if mpcerr.Retryable(err) {
			return errors.Wrapf(err, "query failed (%s, retryable)", kind)
		}
		return errors.Wrapf(err, "query failed (%s)", kind)
	}
	elapsed := time.Since(start)

	outputs, err := query.Combine(results)
	if err != nil {
		return err
	}
	printResults(w, results, outputs)
	fmt.Fprintf(w, "elapsed %s\n", elapsed)

	if !verify {
		return nil
	}
	if err := query.Verify(qc, values, outputs); err != nil {
		return err
	}
	fmt.Fprintln(w, "result verified")
	return nil
}

func printResults(w io.Writer, results [3]*query.Result, outputs []uint64) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Record").SetAlign(tabulate.MR)
	for _, role := range gateway.Roles {
		tab.Header(role.Label()).SetAlign(tabulate.MR)
	}
	tab.Header("Value").SetAlign(tabulate.MR)

	for i, v := range outputs {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", i))
		for _, r := range results {
			if r.Revealed {
				row.Column(fmt.Sprintf("%d", r.Values[i]))
			} else {
				row.Column(fmt.Sprintf("(%d,%d)", r.Shares[i][0],
					r.Shares[i][1]))
			}
		}
		row.Column(fmt.Sprintf("%d", v)).SetFormat(tabulate.FmtBold)
	}
	tab.Print(w)
}

func cancelQuery(ctx context.Context, conf *config.Config, arg string) error {
	id, err := gateway.ParseQueryID(arg)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, role := range gateway.Roles {
		h, err := conf.Helper(role)
		if err != nil {
			return err
		}
		g.Go(func() error {
			client, err := query.Dial(gctx, h.ClientAddress)
			if err != nil {
				return errors.Wrapf(err, "%s", role)
			}
			defer client.Close()

			err = client.Cancel(gctx, id)
			if mpcerr.KindOf(err) == mpcerr.KindAddressing {
				// The query already terminated on this helper.
				return nil
			}
			return errors.Wrapf(err, "%s", role)
		})
	}
	return g.Wait()
}
