package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/runner"
	"github.com/vup-linux/vup-release/internal/sandbox"
)

// ReconcilePlan lists the transfers that converge a remote tier toward the
// local tier. Both lists are sorted.
type ReconcilePlan struct {
	Upload []string
	Delete []string
}

// Empty reports whether the tiers already agree.
func (p ReconcilePlan) Empty() bool {
	return len(p.Upload) == 0 && len(p.Delete) == 0
}

// PlanReconcile diffs the local tier against a remote listing.
//
// The asset store is delete-only: remote files without a local counterpart
// are deleted and nothing is uploaded, since publishing happens elsewhere.
// The object store converges fully: files missing remotely, or whose sizes
// differ when both sides report one, are uploaded, and remote files without a
// local counterpart are deleted.
func PlanReconcile(local, listing artifact.Snapshot, tier remote.Tier) ReconcilePlan {
	plan := ReconcilePlan{Delete: listing.Difference(local)}
	if tier != remote.TierObjectStore {
		return plan
	}

	for _, ent := range local.Entries() {
		theirs, ok := listing.Get(ent.Name)
		switch {
		case !ok:
			plan.Upload = append(plan.Upload, ent.Name)
		case ent.Size != artifact.UnknownSize && theirs.Size != artifact.UnknownSize && ent.Size != theirs.Size:
			plan.Upload = append(plan.Upload, ent.Name)
		}
	}
	return plan
}

// ReconcileEngine applies reconciliation plans to the remote tiers.
type ReconcileEngine struct {
	Dir     string
	Assets  remote.AssetStore
	Objects remote.ObjectStore
	Log     zerolog.Logger
}

// ReconcileOptions configures a reconciliation pass.
type ReconcileOptions struct {
	DryRun bool

	// SkipUpload and SkipDelete run a single phase of an object store sync.
	SkipUpload bool
	SkipDelete bool
}

// CleanAssets deletes release assets of tag that are absent locally.
func (e *ReconcileEngine) CleanAssets(ctx context.Context, tag string, opts ReconcileOptions) (*ReconcileResult, error) {
	if e.Assets == nil {
		return nil, errors.New("no asset store configured")
	}
	result := &ReconcileResult{Tier: remote.TierAssetStore, Tag: tag, DryRun: opts.DryRun}

	local, err := scanLocal(e.Dir)
	if err != nil {
		return nil, err
	}
	listing, err := e.Assets.List(ctx, tag)
	if err != nil {
		return e.skip(result, err)
	}

	plan := PlanReconcile(local, listing, remote.TierAssetStore)
	e.Log.Debug().Str("tier", string(remote.TierAssetStore)).Int("local", local.Len()).Int("remote", listing.Len()).
		Int("delete", len(plan.Delete)).Msg("planned reconciliation")

	for _, name := range plan.Delete {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !opts.DryRun {
			if err := e.Assets.Delete(ctx, tag, name); err != nil {
				if errors.Is(err, remote.ErrNotFound) {
					e.Log.Debug().Str("file", name).Str("tier", string(remote.TierAssetStore)).Msg("asset already gone")
					continue
				}
				return result, fmt.Errorf("deleting asset %s: %w", name, err)
			}
			e.Log.Info().Str("file", name).Str("tier", string(remote.TierAssetStore)).Msg("deleted remote asset")
		}
		result.Deleted = append(result.Deleted, FileAction{Path: name, Action: ActionDeleted, Reason: "absent locally"})
	}
	return result, nil
}

// SyncObjects converges the objects under tag toward the local tier: uploads
// first, then deletes in batches of at most remote.MaxDeleteBatch keys.
func (e *ReconcileEngine) SyncObjects(ctx context.Context, tag string, opts ReconcileOptions) (*ReconcileResult, error) {
	if e.Objects == nil {
		return nil, errors.New("no object store configured")
	}
	result := &ReconcileResult{Tier: remote.TierObjectStore, Tag: tag, DryRun: opts.DryRun}

	local, err := scanLocal(e.Dir)
	if err != nil {
		return nil, err
	}
	listing, err := e.Objects.List(ctx, tag)
	if err != nil {
		return e.skip(result, err)
	}

	plan := PlanReconcile(local, listing, remote.TierObjectStore)
	e.Log.Debug().Str("tier", string(remote.TierObjectStore)).Int("local", local.Len()).Int("remote", listing.Len()).
		Int("upload", len(plan.Upload)).Int("delete", len(plan.Delete)).Msg("planned reconciliation")

	if !opts.SkipUpload {
		for _, name := range plan.Upload {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if !opts.DryRun {
				path, err := sandbox.ValidatePath(e.Dir, name)
				if err != nil {
					return result, err
				}
				if err := e.Objects.Upload(ctx, tag, name, path); err != nil {
					return result, fmt.Errorf("uploading %s: %w", name, err)
				}
				e.Log.Info().Str("file", name).Str("tier", string(remote.TierObjectStore)).Msg("uploaded")
			}
			result.Uploaded = append(result.Uploaded, FileAction{Path: remote.ObjectKey(tag, name), Action: ActionUploaded})
		}
	}

	if !opts.SkipDelete {
		for _, batch := range remote.Batches(plan.Delete, remote.MaxDeleteBatch) {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if !opts.DryRun {
				if err := e.Objects.Delete(ctx, tag, batch); err != nil {
					return result, fmt.Errorf("deleting %d object(s): %w", len(batch), err)
				}
				e.Log.Info().Int("count", len(batch)).Str("tier", string(remote.TierObjectStore)).Msg("deleted obsolete objects")
			}
			for _, name := range batch {
				result.Deleted = append(result.Deleted, FileAction{Path: remote.ObjectKey(tag, name), Action: ActionDeleted, Reason: "absent locally"})
			}
		}
	}
	return result, nil
}

// skip abandons a pass whose remote listing failed in a way that says
// nothing about the tier's contents. Any other failure is returned.
func (e *ReconcileEngine) skip(result *ReconcileResult, err error) (*ReconcileResult, error) {
	if !errors.Is(err, remote.ErrNotFound) && !errors.Is(err, runner.ErrToolUnavailable) && !errors.Is(err, remote.ErrUnreachable) {
		return nil, fmt.Errorf("listing %s: %w", result.Tier, err)
	}
	e.Log.Warn().Err(err).Str("tier", string(result.Tier)).Str("op", "list").Str("file", result.Tag).
		Msg("could not list remote tier, skipping reconciliation")
	result.Skipped = true
	result.Reason = err.Error()
	return result, nil
}

// scanLocal snapshots the local tier. Unlike artifact.ScanDir a missing
// directory is an error, so that a wrong path never reads as an empty tier.
func scanLocal(dir string) (artifact.Snapshot, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return artifact.Snapshot{}, fmt.Errorf("local directory: %w", err)
	}
	if !fi.IsDir() {
		return artifact.Snapshot{}, fmt.Errorf("local directory %s is not a directory", dir)
	}
	return artifact.ScanDir(dir)
}
