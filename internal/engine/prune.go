package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/sandbox"
	"github.com/vup-linux/vup-release/internal/version"
)

// PruneEngine keeps only the newest build of every package in the local
// tier.
type PruneEngine struct {
	Dir        string
	Comparator version.Comparator
	Log        zerolog.Logger
}

// PruneOptions configures a prune operation.
type PruneOptions struct {
	DryRun bool
}

// PrunePlan is the decision half of a prune: which packages survive and
// which are removed. Computing it never touches the filesystem.
type PrunePlan struct {
	Keep    []artifact.Identity
	Remove  []Removal
	Skipped []FileError
}

// Removal is one superseded package together with the signatures present
// next to it.
type Removal struct {
	Package  artifact.Identity
	Winner   artifact.Identity
	Sidecars []string
}

// Plan groups the packages in snap by name and selects, per group, the
// maximum under the comparator. Every other member is scheduled for removal.
func (e *PruneEngine) Plan(ctx context.Context, snap artifact.Snapshot) PrunePlan {
	var plan PrunePlan
	var ids []artifact.Identity

	for _, name := range snap.Names() {
		if !artifact.IsPackage(name) {
			continue
		}
		id, err := artifact.Parse(name)
		if err != nil {
			e.Log.Warn().Err(err).Str("file", name).Str("tier", string(remote.TierLocal)).Str("op", "prune").
				Msg("skipping unparseable package")
			plan.Skipped = append(plan.Skipped, FileError{Path: name, Err: err})
			continue
		}
		ids = append(ids, id)
	}

	groups := artifact.GroupByName(ids)
	for _, name := range groups.Names() {
		members := e.rank(ctx, groups[name])
		winner := members[0]
		plan.Keep = append(plan.Keep, winner)

		if len(members) > 1 {
			e.Log.Debug().Str("package", name).Str("versions", joinKeys(members)).Msg("versions for package")
		}
		for _, loser := range members[1:] {
			r := Removal{Package: loser, Winner: winner}
			for _, sc := range artifact.SidecarNames(loser.Filename()) {
				if snap.Has(sc) {
					r.Sidecars = append(r.Sidecars, sc)
				}
			}
			plan.Remove = append(plan.Remove, r)
		}
	}
	return plan
}

// rank sorts members newest first. Ties, which only occur for identical
// version keys, are broken by filename.
func (e *PruneEngine) rank(ctx context.Context, members []artifact.Identity) []artifact.Identity {
	ranked := append([]artifact.Identity(nil), members...)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Filename() < ranked[j].Filename()
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return e.Comparator.Compare(ctx, ranked[i].Key(), ranked[j].Key()) == version.Greater
	})
	return ranked
}

// Prune scans the directory, plans and applies the removals. Each package is
// deleted before its signatures; a package that fails to delete keeps its
// signatures.
func (e *PruneEngine) Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error) {
	snap, err := artifact.ScanDir(e.Dir)
	if err != nil {
		return nil, err
	}

	plan := e.Plan(ctx, snap)
	result := &PruneResult{Skipped: plan.Skipped, DryRun: opts.DryRun}
	for _, k := range plan.Keep {
		result.Kept = append(result.Kept, k.Filename())
	}

	for _, r := range plan.Remove {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := r.Package.Filename()
		reason := "superseded by " + r.Winner.PkgVer()
		if opts.DryRun {
			result.Removed = append(result.Removed, FileAction{Path: name, Action: ActionRemoved, Reason: reason})
			for _, sc := range r.Sidecars {
				result.Removed = append(result.Removed, FileAction{Path: sc, Action: ActionRemoved, Reason: "signature of " + name})
			}
			continue
		}

		if err := sandbox.Remove(e.Dir, name); err != nil {
			e.Log.Warn().Err(err).Str("file", name).Str("tier", string(remote.TierLocal)).Str("op", "prune").
				Msg("removing superseded package failed")
			result.Errors = append(result.Errors, FileError{Path: name, Err: err})
			continue
		}
		e.Log.Info().Str("file", name).Str("kept", r.Winner.Filename()).Msg("removed old version")
		result.Removed = append(result.Removed, FileAction{Path: name, Action: ActionRemoved, Reason: reason})

		for _, sc := range artifact.SidecarNames(name) {
			removed, err := sandbox.RemoveIfExists(e.Dir, sc)
			if err != nil {
				result.Errors = append(result.Errors, FileError{Path: sc, Err: err})
				continue
			}
			if removed {
				result.Removed = append(result.Removed, FileAction{Path: sc, Action: ActionRemoved, Reason: "signature of " + name})
			}
		}
	}

	if len(result.Errors) > 0 {
		return result, fmt.Errorf("prune: %d removal(s) failed: %w", len(result.Errors), result.Err())
	}
	return result, nil
}

func joinKeys(ids []artifact.Identity) string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.Key().String()
	}
	return strings.Join(keys, ", ")
}
