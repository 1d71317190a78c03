package version

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Comparator orders version keys as a total preorder: two keys tie only when
// both their version strings and revisions are equal.
type Comparator struct {
	// Oracle is consulted for differing version strings. Nil means NoOracle.
	Oracle Oracle
	Log    zerolog.Logger
}

// Compare orders a against b.
//
// Equal version strings are decided by revision alone. Otherwise the oracle
// is asked, always with its operands in a canonical order so that
// Compare(a, b) and Compare(b, a) are exact inverses. An oracle error, or an
// oracle claiming two different versions are equal, falls through to
// Structural.
func (c Comparator) Compare(ctx context.Context, a, b Key) Order {
	if a.Version == b.Version {
		return compareInt(a.Revision, b.Revision)
	}
	if c.Oracle != nil {
		if o, ok := c.askOracle(ctx, a, b); ok {
			return o
		}
	}
	return Structural(a, b)
}

func (c Comparator) askOracle(ctx context.Context, a, b Key) (Order, bool) {
	swapped := a.Version > b.Version
	if swapped {
		a, b = b, a
	}
	o, err := c.Oracle.Compare(ctx, a, b)
	if err != nil {
		if !errors.Is(err, ErrIndeterminate) {
			c.Log.Debug().Err(err).Str("a", a.String()).Str("b", b.String()).Msg("version oracle unavailable, using structural comparison")
		}
		return Equal, false
	}
	if o != Less && o != Greater {
		return Equal, false
	}
	if swapped {
		o = o.Invert()
	}
	return o, true
}
