package engine

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/remote"
	"github.com/vup-linux/vup-release/internal/sandbox"
)

// DownloadEngine populates the local tier from the asset store.
type DownloadEngine struct {
	Dir    string
	Assets remote.AssetStore
	Log    zerolog.Logger
}

// DownloadOptions configures a download.
type DownloadOptions struct {
	DryRun bool
}

// Download fetches every asset of tag into the local directory, replacing
// files that already exist. A release that does not exist yet is not an
// error: the result is marked Fresh and nothing changes.
func (e *DownloadEngine) Download(ctx context.Context, tag string, opts DownloadOptions) (*DownloadResult, error) {
	if e.Assets == nil {
		return nil, errors.New("no asset store configured")
	}
	result := &DownloadResult{Tag: tag, DryRun: opts.DryRun}

	if opts.DryRun {
		return e.plan(ctx, tag, result)
	}

	if err := sandbox.EnsureDir(e.Dir); err != nil {
		return nil, err
	}
	before, err := artifact.ScanDir(e.Dir)
	if err != nil {
		return nil, err
	}

	if err := e.Assets.Download(ctx, tag, e.Dir); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			e.Log.Info().Str("tier", string(remote.TierAssetStore)).Str("file", tag).Msg("release not found, starting fresh")
			result.Fresh = true
			return result, nil
		}
		return nil, err
	}

	after, err := artifact.ScanDir(e.Dir)
	if err != nil {
		return nil, err
	}
	result.Downloaded = snapshotDelta(before, after)
	e.Log.Debug().Int("changed", len(result.Downloaded)).Int("total", after.Len()).Msg("downloaded release assets")
	return result, nil
}

// plan reports what a download would fetch without writing anything.
func (e *DownloadEngine) plan(ctx context.Context, tag string, result *DownloadResult) (*DownloadResult, error) {
	listing, err := e.Assets.List(ctx, tag)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			result.Fresh = true
			return result, nil
		}
		return nil, err
	}
	local, err := artifact.ScanDir(e.Dir)
	if err != nil {
		return nil, err
	}
	for _, name := range listing.Names() {
		action := ActionDownloaded
		if local.Has(name) {
			action = ActionUpdated
		}
		result.Downloaded = append(result.Downloaded, FileAction{Path: name, Action: action})
	}
	return result, nil
}

// snapshotDelta returns the files that appeared or changed between two scans
// of the same directory.
func snapshotDelta(before, after artifact.Snapshot) []FileAction {
	var actions []FileAction
	for _, ent := range after.Entries() {
		old, ok := before.Get(ent.Name)
		switch {
		case !ok:
			actions = append(actions, FileAction{Path: ent.Name, Action: ActionDownloaded})
		case old.Size != ent.Size || !old.ModTime.Equal(ent.ModTime):
			actions = append(actions, FileAction{Path: ent.Name, Action: ActionUpdated})
		}
	}
	return actions
}
