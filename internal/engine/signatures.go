package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/sandbox"
)

// SignatureEngine removes detached signatures that no longer match a package
// in the local tier.
type SignatureEngine struct {
	Dir string
	Log zerolog.Logger
}

// SignatureOptions configures a signature validation run.
type SignatureOptions struct {
	DryRun bool
}

// Stale returns the signatures in snap that are older than the package they
// sign, in sorted order.
func (e *SignatureEngine) Stale(snap artifact.Snapshot) []string {
	var stale []string
	for _, ent := range snap.Entries() {
		if artifact.IsHousekeeping(ent.Name) {
			continue
		}
		parent, ok := artifact.SidecarParent(ent.Name)
		if !ok || !artifact.IsPackage(parent) {
			continue
		}
		pkg, ok := snap.Get(parent)
		if !ok {
			continue
		}
		if ent.ModTime.Before(pkg.ModTime) {
			stale = append(stale, ent.Name)
		}
	}
	return stale
}

// Orphans returns the signatures in snap whose parent file is absent, in
// sorted order.
func (e *SignatureEngine) Orphans(snap artifact.Snapshot) []string {
	var orphans []string
	for _, name := range snap.Names() {
		if artifact.IsHousekeeping(name) {
			continue
		}
		parent, ok := artifact.SidecarParent(name)
		if !ok {
			continue
		}
		if !snap.Has(parent) {
			orphans = append(orphans, name)
		}
	}
	return orphans
}

// Validate runs the staleness pass, then the orphan pass. Each pass works on
// a fresh snapshot of the directory.
func (e *SignatureEngine) Validate(ctx context.Context, opts SignatureOptions) (*SignatureResult, error) {
	result := &SignatureResult{DryRun: opts.DryRun}

	snap, err := artifact.ScanDir(e.Dir)
	if err != nil {
		return nil, err
	}
	result.Stale = e.remove(ctx, e.Stale(snap), "stale signature", opts, result)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	if !opts.DryRun {
		if snap, err = artifact.ScanDir(e.Dir); err != nil {
			return result, err
		}
	}
	result.Orphans = e.remove(ctx, e.Orphans(snap), "orphaned signature", opts, result)

	if len(result.Errors) > 0 {
		return result, result.Err()
	}
	return result, ctx.Err()
}

func (e *SignatureEngine) remove(ctx context.Context, names []string, reason string, opts SignatureOptions, result *SignatureResult) []FileAction {
	var actions []FileAction
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		if !opts.DryRun {
			if _, err := sandbox.RemoveIfExists(e.Dir, name); err != nil {
				e.Log.Warn().Err(err).Str("file", name).Str("tier", string(remote.TierLocal)).Str("op", "signatures").
					Msg("removing signature failed")
				result.Errors = append(result.Errors, FileError{Path: name, Err: err})
				continue
			}
			e.Log.Info().Str("file", name).Msg("removed " + reason)
		}
		actions = append(actions, FileAction{Path: name, Action: ActionRemoved, Reason: reason})
	}
	return actions
}
