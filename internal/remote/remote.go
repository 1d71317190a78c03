// Package remote talks to the two remote tiers of a release line: the
// GitHub release that holds the published assets, and the S3-compatible
// bucket that mirrors them.
package remote

import (
	"errors"
	"fmt"
	"strings"
)

// Tier names a storage location.
type Tier string

const (
	TierLocal       Tier = "local"
	TierAssetStore  Tier = "asset-store"
	TierObjectStore Tier = "object-store"
)

// MaxDeleteBatch is the largest number of keys sent in one object delete
// request.
const MaxDeleteBatch = 1000

var (
	// ErrNotFound means the release or bucket does not exist yet.
	ErrNotFound = errors.New("not found")

	// ErrUnreachable means the tier could not be listed, e.g. because of a
	// network failure or an unreadable response.
	ErrUnreachable = errors.New("tier unreachable")

	// ErrCredentialsMissing means no object store credentials were supplied.
	ErrCredentialsMissing = errors.New("object store credentials missing")
)

// TierError is an error from one operation against one tier.
type TierError struct {
	Tier      Tier
	Operation string
	Name      string // file or key, empty for whole-tier operations
	Err       error
	Hint      string
}

func (e *TierError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Tier, e.Operation)
	if e.Name != "" {
		msg += " " + e.Name
	}
	msg += " failed: " + e.Err.Error()
	if e.Hint != "" {
		msg += " — " + e.Hint
	}
	return msg
}

func (e *TierError) Unwrap() error {
	return e.Err
}

// ReleaseTag names the release line for a category and architecture.
func ReleaseTag(category, arch string) string {
	return category + "-" + arch + "-current"
}

// ObjectKey returns the bucket key of name within the release line tag.
func ObjectKey(tag, name string) string {
	return tag + "/" + name
}

// KeyName strips the release line prefix from key. It rejects keys outside the
// prefix and keys nested below it.
func KeyName(tag, key string) (string, bool) {
	name, ok := strings.CutPrefix(key, tag+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// Batches splits keys into consecutive chunks of at most size items.
func Batches(keys []string, size int) [][]string {
	if size <= 0 {
		size = MaxDeleteBatch
	}
	var out [][]string
	for len(keys) > 0 {
		n := min(size, len(keys))
		out = append(out, keys[:n:n])
		keys = keys[n:]
	}
	return out
}
