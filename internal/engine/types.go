package engine

import (
	"errors"

	"github.com/vup-linux/vup-release/internal/remote"
)

// Actions recorded in FileAction.
const (
	ActionRemoved    = "removed"
	ActionUploaded   = "uploaded"
	ActionDeleted    = "deleted"
	ActionDownloaded = "downloaded"
	ActionUpdated    = "updated"
)

// FileAction represents an action taken on a single file.
type FileAction struct {
	Path   string
	Action string
	Reason string // e.g. "superseded by foo-1.2_1", "stale signature"
}

// FileError represents an error associated with a specific file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// PruneResult holds the outcome of a prune operation.
type PruneResult struct {
	Removed []FileAction
	Kept    []string
	Skipped []FileError // unparseable packages, excluded from grouping
	Errors  []FileError
	DryRun  bool
}

// Err joins the removal failures.
func (r *PruneResult) Err() error {
	return joinFileErrors(r.Errors)
}

// SignatureResult holds the outcome of the signature passes.
type SignatureResult struct {
	Stale   []FileAction
	Orphans []FileAction
	Errors  []FileError
	DryRun  bool
}

// Err joins the removal failures.
func (r *SignatureResult) Err() error {
	return joinFileErrors(r.Errors)
}

// ReconcileResult holds the outcome of one reconciliation pass against a
// remote tier.
type ReconcileResult struct {
	Tier     remote.Tier
	Tag      string
	Uploaded []FileAction
	Deleted  []FileAction

	// Skipped is set when the remote listing could not be obtained and the
	// pass was abandoned without touching the tier.
	Skipped bool
	Reason  string
	DryRun  bool
}

// DownloadResult holds the outcome of populating the local tier.
type DownloadResult struct {
	Tag        string
	Fresh      bool // the release does not exist yet
	Downloaded []FileAction
	DryRun     bool
}

// ActionPaths returns the paths of actions in order.
func ActionPaths(actions []FileAction) []string {
	if len(actions) == 0 {
		return nil
	}
	paths := make([]string, len(actions))
	for i, a := range actions {
		paths[i] = a.Path
	}
	return paths
}

func joinFileErrors(errs []FileError) error {
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}
