//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Helper runs one helper of the three-party computation network.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cryo28/ipa/config"
	"github.com/cryo28/ipa/env"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/p2p"
	"github.com/cryo28/ipa/query"
)

func main() {
	var network, roleName string
	var verbose bool

	command := &cobra.Command{
		Use:   "helper",
		Short: "Run an MPC helper",
		Long: "Run one helper of the three-party network. The helper " +
			"connects to its peers and serves queries from clients.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := gateway.ParseRole(roleName)
			if err != nil {
				return err
			}
			conf, err := config.Load(network)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt,
				syscall.SIGTERM)
			defer stop()

			return run(ctx, conf, role, verbose)
		},
	}
	command.Flags().StringVarP(&network, "network", "n", "network.yaml",
		"helper network configuration file")
	command.Flags().StringVarP(&roleName, "role", "r", "",
		"helper role: H1, H2, or H3")
	command.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"print query timing reports")
	command.MarkFlagRequired("role")

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *config.Config, role gateway.Role,
	verbose bool) error {

	level, err := conf.Runtime.Level()
	if err != nil {
		return err
	}
	log := zerolog.New(zerolog.NewConsoleWriter()).Level(level).
		With().Timestamp().Str("role", role.String()).Logger()

	self, err := conf.Helper(role)
	if err != nil {
		return err
	}
	nw, err := p2p.NewNetwork(self.Address, role.Index(), log)
	if err != nil {
		return err
	}
	defer nw.Close()

	mesh, err := gateway.NewMesh(role, &gateway.NetworkTransport{
		Network: nw,
	}, conf.Runtime.Gateway, log)
	if err != nil {
		return err
	}
	defer mesh.Close()

	log.Info().Str("addr", nw.Addr()).Msg("connecting to peers")

	g, gctx := errgroup.WithContext(ctx)
	for _, peer := range role.Peers() {
		h, err := conf.Helper(peer)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return nw.AddPeer(gctx, h.Address, peer.Index())
		})
	}
	g.Go(func() error {
		return mesh.Connect(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	processor := query.NewProcessor(mesh, conf.Runtime.Gates,
		conf.Runtime.Workers, &env.Config{
			Logger: &log,
		})
	if verbose {
		processor.SetReport(os.Stdout)
	}

	ln, err := net.Listen("tcp", self.ClientAddress)
	if err != nil {
		return err
	}
	server := query.NewServer(processor, log)

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).
		Str("gates", string(conf.Runtime.Gates)).
		Int("workers", conf.Runtime.Workers).
		Msg("serving queries")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		server.Close()
		return nil

	case err := <-errc:
		server.Close()
		return err
	}
}
