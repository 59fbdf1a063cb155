//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Mpc-client submits queries to the helper network and verifies the
// results against the computation in the clear.
package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cryo28/ipa/config"
	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/query"
)

type options struct {
	network string
	field   string
	timeout time.Duration
	verify  bool
}

func (o *options) load() (*config.Config, ff.Type, error) {
	field, err := ff.ParseType(o.field)
	if err != nil {
		return nil, "", err
	}
	conf, err := config.Load(o.network)
	if err != nil {
		return nil, "", err
	}
	return conf, field, nil
}

func (o *options) context(parent context.Context) (context.Context,
	context.CancelFunc) {
	if o.timeout > 0 {
		return context.WithTimeout(parent, o.timeout)
	}
	return context.WithCancel(parent)
}

func main() {
	opts := new(options)

	command := &cobra.Command{
		Use:          "mpc-client",
		Short:        "Submit queries to the MPC helpers",
		SilenceUsage: true,
	}
	flags := command.PersistentFlags()
	flags.StringVarP(&opts.network, "network", "n", "network.yaml",
		"helper network configuration file")
	flags.StringVarP(&opts.field, "field", "f", string(ff.TypeFp32BitPrime),
		"prime field: fp31, fp32bitprime, or fp61bitprime")
	flags.DurationVar(&opts.timeout, "timeout", 0, "query timeout")
	flags.BoolVar(&opts.verify, "verify", true,
		"verify the result against the computation in the clear")

	for _, t := range query.Types {
		addQueryCmd(command, opts, t)
	}
	addCancelCmd(command, opts)
	addGenInputsCmd(command, opts)

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func addQueryCmd(command *cobra.Command, opts *options, t query.Type) {
	var keyBits int

	queryCmd := &cobra.Command{
		Use:   string(t) + " INPUT",
		Short: "Run a " + string(t) + " query",
		Long: "Run a " + string(t) + " query with the input values read " +
			"from INPUT, one record per line. Use - to read the standard " +
			"input.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, field, err := opts.load()
			if err != nil {
				return err
			}
			values, err := readInputs(args[0])
			if err != nil {
				return err
			}
			qc := query.Config{
				Type:    t,
				Field:   field,
				KeyBits: keyBits,
			}
			qc.Records = len(values) / qc.Width()

			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			return runQuery(ctx, cmd.OutOrStdout(), conf, qc, values,
				opts.verify)
		},
	}
	if t == query.TypeSort {
		queryCmd.Flags().IntVarP(&keyBits, "key-bits", "k", 8,
			"number of sort key bits")
	}
	command.AddCommand(queryCmd)
}

func addCancelCmd(command *cobra.Command, opts *options) {
	cancelCmd := &cobra.Command{
		Use:   "cancel QUERY",
		Short: "Cancel a running query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, _, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			return cancelQuery(ctx, conf, args[0])
		},
	}
	command.AddCommand(cancelCmd)
}

func addGenInputsCmd(command *cobra.Command, opts *options) {
	var typeName, output string
	var records, keyBits int
	var maxValue uint64

	genCmd := &cobra.Command{
		Use:   "gen-inputs",
		Short: "Generate random query inputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := query.ParseType(typeName)
			if err != nil {
				return err
			}
			field, err := ff.ParseType(opts.field)
			if err != nil {
				return err
			}
			qc := query.Config{
				Type:    t,
				Field:   field,
				Records: records,
			}
			if t == query.TypeSort {
				qc.KeyBits = keyBits
			}
			if err := qc.Validate(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeInputs(w, qc, genInputs(qc, maxValue))
		},
	}
	genCmd.Flags().StringVarP(&typeName, "type", "t", string(query.TypeSum),
		"query type")
	genCmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	genCmd.Flags().IntVarP(&records, "records", "r", 10,
		"number of records")
	genCmd.Flags().IntVarP(&keyBits, "key-bits", "k", 8,
		"number of sort key bits")
	genCmd.Flags().Uint64Var(&maxValue, "max", 1000,
		"exclusive upper bound of the values")
	command.AddCommand(genCmd)
}
