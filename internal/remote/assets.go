package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/runner"
)

// AssetStore is the release-asset tier.
type AssetStore interface {
	// List snapshots the assets of release tag. It returns an error wrapping
	// ErrNotFound when the release does not exist.
	List(ctx context.Context, tag string) (artifact.Snapshot, error)

	// Download fetches every asset of tag into dir, overwriting local copies.
	Download(ctx context.Context, tag, dir string) error

	// Delete removes one asset from tag.
	Delete(ctx context.Context, tag, name string) error
}

// GitHubReleases implements AssetStore with the gh CLI.
type GitHubReleases struct {
	Repo   string
	Runner runner.Runner
	Binary string // defaults to "gh"
}

type releaseView struct {
	Assets []struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
	} `json:"assets"`
}

func (g *GitHubReleases) List(ctx context.Context, tag string) (artifact.Snapshot, error) {
	res, err := g.gh(ctx, "release", "view", tag, "--repo", g.Repo, "--json", "assets")
	if err != nil {
		return artifact.Snapshot{}, g.classify("list", tag, res, err)
	}

	var view releaseView
	if err := json.Unmarshal(res.Stdout, &view); err != nil {
		return artifact.Snapshot{}, &TierError{Tier: TierAssetStore, Operation: "list", Name: tag, Err: fmt.Errorf("%w: decoding release view: %v", ErrUnreachable, err)}
	}

	entries := make([]artifact.Entry, 0, len(view.Assets))
	for _, a := range view.Assets {
		entries = append(entries, artifact.Entry{Name: a.Name, Size: a.Size})
	}
	return artifact.NewSnapshot(entries...), nil
}

func (g *GitHubReleases) Download(ctx context.Context, tag, dir string) error {
	res, err := g.gh(ctx, "release", "download", tag, "--repo", g.Repo, "--dir", dir, "--pattern", "*", "--clobber")
	if err != nil {
		return g.classify("download", tag, res, err)
	}
	return nil
}

func (g *GitHubReleases) Delete(ctx context.Context, tag, name string) error {
	res, err := g.gh(ctx, "release", "delete-asset", tag, name, "--repo", g.Repo, "--yes")
	if err != nil {
		return g.classify("delete", name, res, err)
	}
	return nil
}

func (g *GitHubReleases) gh(ctx context.Context, args ...string) (runner.Result, error) {
	bin := g.Binary
	if bin == "" {
		bin = "gh"
	}
	r := g.Runner
	if r == nil {
		r = runner.ExecRunner{}
	}
	return r.Run(ctx, bin, args...)
}

func (g *GitHubReleases) classify(op, name string, res runner.Result, err error) error {
	te := &TierError{Tier: TierAssetStore, Operation: op, Name: name}
	switch {
	case errors.Is(err, runner.ErrToolUnavailable):
		te.Err = err
		te.Hint = "install the GitHub CLI (gh) and authenticate it"
	case bytes.Contains(bytes.ToLower(res.Stderr), []byte("not found")):
		te.Err = fmt.Errorf("%w: %s", ErrNotFound, bytes.TrimSpace(res.Stderr))
	case op == "list":
		te.Err = fmt.Errorf("%w: %v: %s", ErrUnreachable, err, bytes.TrimSpace(res.Stderr))
	default:
		te.Err = fmt.Errorf("%v: %s", err, bytes.TrimSpace(res.Stderr))
	}
	return te
}
