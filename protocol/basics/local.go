//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package basics

import (
	"github.com/cryo28/ipa/ff"
	"github.com/cryo28/ipa/gateway"
	"github.com/cryo28/ipa/secret"
)

// ShareKnownValue returns the helper's share of the public value c.
// The value is carried in x₀, held by H1 and H3.
func ShareKnownValue[F ff.Field[F]](role gateway.Role, c F) secret.Replicated[F] {
	var zero F
	switch role {
	case gateway.H1:
		return secret.New(c, zero)
	case gateway.H3:
		return secret.New(zero, c)
	default:
		return secret.New(zero, zero)
	}
}

// AddConst adds the public value c to the shared value.
func AddConst[F ff.Field[F]](role gateway.Role, x secret.Replicated[F],
	c F) secret.Replicated[F] {

	return x.Add(ShareKnownValue(role, c))
}
