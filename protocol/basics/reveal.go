//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package basics

import (
	"context"

	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/protocol"
	"github.com/cryo28/ipa/secret"
)

// Reveal opens the shared value to all helpers. Each helper sends
// its left element to the right peer, which is missing it.
func Reveal[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	record protocol.RecordID, x secret.Replicated[F]) (F, error) {

	role := c.Role()
	err := protocol.Send(ctx, c, role.Peer(gateway.Right), record, x.Left())
	if err != nil {
		var zero F
		return zero, err
	}
	missing, err := protocol.Receive[F](ctx, c, role.Peer(gateway.Left), record)
	if err != nil {
		var zero F
		return zero, err
	}
	return x.Left().Add(x.Right()).Add(missing), nil
}

// RevealAll opens the shared vector. Element i uses record i.
func RevealAll[F ff.Field[F]](ctx context.Context, c *protocol.Context,
	x []secret.Replicated[F]) ([]F, error) {

	c = c.SetTotalRecords(len(x))
	result := make([]F, len(x))

	err := protocol.ForEach(ctx, c, len(x),
		func(ctx context.Context, record protocol.RecordID) error {
			v, err := Reveal(ctx, c, record, x[record])
			if err != nil {
				return err
			}
			result[record] = v
			return nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}
