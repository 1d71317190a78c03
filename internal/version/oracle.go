package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/vup-linux/vup-release/internal/runner"
)

// ErrIndeterminate is returned by an Oracle that cannot decide an ordering.
var ErrIndeterminate = errors.New("version comparison indeterminate")

// DefaultOracleBinary is the xbps helper used for authoritative comparisons.
const DefaultOracleBinary = "xbps-uhelper"

// Oracle is an authoritative, possibly unavailable, version ordering.
// Implementations return ErrIndeterminate (or any error) when they cannot
// decide; the Comparator then falls back to Structural.
type Oracle interface {
	Compare(ctx context.Context, a, b Key) (Order, error)
}

// NoOracle never decides. It is the default when no external tool is wired.
type NoOracle struct{}

func (NoOracle) Compare(context.Context, Key, Key) (Order, error) {
	return Equal, ErrIndeterminate
}

// XbpsOracle asks `xbps-uhelper cmpver` to order two pkgver strings.
// cmpver exits 0 when equal, 1 when the first is greater and 255 (-1) when
// it is smaller.
type XbpsOracle struct {
	Runner runner.Runner
	Binary string
}

func (o XbpsOracle) Compare(ctx context.Context, a, b Key) (Order, error) {
	bin := o.Binary
	if bin == "" {
		bin = DefaultOracleBinary
	}
	r := o.Runner
	if r == nil {
		r = runner.ExecRunner{}
	}

	res, err := r.Run(ctx, bin, "cmpver", a.String(), b.String())
	if errors.Is(err, runner.ErrToolUnavailable) {
		return Equal, err
	}
	switch res.ExitCode {
	case 0:
		return Equal, nil
	case 1:
		return Greater, nil
	case 255:
		return Less, nil
	default:
		return Equal, fmt.Errorf("%s cmpver %s %s: exit %d: %w", bin, a, b, res.ExitCode, ErrIndeterminate)
	}
}
