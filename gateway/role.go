//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package gateway

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/text/superscript"
	"github.com/rs/xid"

	"github.com/cryo28/ipa/mpcerr"
)

// Role identifies one of the three helpers.
type Role uint8

// Helper roles.
const (
	H1 Role = iota
	H2
	H3
)

// Roles lists all helper roles.
var Roles = [3]Role{H1, H2, H3}

// Direction selects a neighbour of a helper in the ring H1, H2, H3.
type Direction uint8

// Directions.
const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Left {
		return "left"
	}
	return "right"
}

// ParseRole parses the helper role name.
func ParseRole(name string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(name, r.String()) {
			return r, nil
		}
	}
	return 0, errors.Newf("invalid role '%s'", name)
}

// Index returns the zero-based index of the role.
func (r Role) Index() int {
	return int(r)
}

// Peer returns the neighbour in the argument direction. The left
// neighbour of Hᵢ is Hᵢ₋₁ and the right neighbour is Hᵢ₊₁.
func (r Role) Peer(d Direction) Role {
	if d == Left {
		return Role((int(r) + 2) % 3)
	}
	return Role((int(r) + 1) % 3)
}

// Peers returns the left and right neighbours.
func (r Role) Peers() [2]Role {
	return [2]Role{r.Peer(Left), r.Peer(Right)}
}

// Direction returns the direction of the peer from this role.
func (r Role) Direction(peer Role) Direction {
	if r.Peer(Left) == peer {
		return Left
	}
	return Right
}

func (r Role) String() string {
	return fmt.Sprintf("H%d", int(r)+1)
}

// Label returns a compact label for reports, for example H¹.
func (r Role) Label() string {
	return "H" + superscript.Itoa(int(r)+1)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(data []byte) error {
	role, err := ParseRole(string(data))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// RecordID identifies a message within a channel.
type RecordID uint32

// QueryID identifies a query across all helpers.
type QueryID xid.ID

// NewQueryID creates a new unique query ID.
func NewQueryID() QueryID {
	return QueryID(xid.New())
}

// ParseQueryID parses the string representation of a query ID.
func ParseQueryID(s string) (QueryID, error) {
	id, err := xid.FromString(s)
	if err != nil {
		return QueryID{}, err
	}
	return QueryID(id), nil
}

// QueryIDFromBytes creates a query ID from its binary representation.
func QueryIDFromBytes(data []byte) (QueryID, error) {
	var id QueryID
	if len(data) != len(id) {
		return id, mpcerr.Addressingf("invalid query ID length %d", len(data))
	}
	copy(id[:], data)
	return id, nil
}

// Bytes returns the binary representation of the query ID.
func (q QueryID) Bytes() []byte {
	return xid.ID(q).Bytes()
}

func (q QueryID) String() string {
	return xid.ID(q).String()
}
