// Package remotetest provides in-memory remote tiers for tests.
package remotetest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/remote"
)

// Assets is an in-memory AssetStore. Releases maps a tag to its assets
// (name to content); a tag absent from the map does not exist.
type Assets struct {
	Releases map[string]map[string][]byte

	ListErr     error
	DownloadErr error
	DeleteErr   map[string]error

	Deleted []string
}

var _ remote.AssetStore = (*Assets)(nil)

// NewAssets returns a store holding one release tag with the given asset
// names, each with content equal to its name.
func NewAssets(tag string, names ...string) *Assets {
	rel := make(map[string][]byte, len(names))
	for _, n := range names {
		rel[n] = []byte(n)
	}
	return &Assets{Releases: map[string]map[string][]byte{tag: rel}}
}

func (a *Assets) List(_ context.Context, tag string) (artifact.Snapshot, error) {
	if a.ListErr != nil {
		return artifact.Snapshot{}, a.ListErr
	}
	rel, ok := a.Releases[tag]
	if !ok {
		return artifact.Snapshot{}, &remote.TierError{Tier: remote.TierAssetStore, Operation: "list", Name: tag, Err: remote.ErrNotFound}
	}
	entries := make([]artifact.Entry, 0, len(rel))
	for n, data := range rel {
		entries = append(entries, artifact.Entry{Name: n, Size: int64(len(data))})
	}
	return artifact.NewSnapshot(entries...), nil
}

func (a *Assets) Download(_ context.Context, tag, dir string) error {
	if a.DownloadErr != nil {
		return a.DownloadErr
	}
	rel, ok := a.Releases[tag]
	if !ok {
		return &remote.TierError{Tier: remote.TierAssetStore, Operation: "download", Name: tag, Err: remote.ErrNotFound}
	}
	for n, data := range rel {
		if err := os.WriteFile(filepath.Join(dir, n), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assets) Delete(_ context.Context, tag, name string) error {
	if err := a.DeleteErr[name]; err != nil {
		return err
	}
	rel, ok := a.Releases[tag]
	if !ok {
		return &remote.TierError{Tier: remote.TierAssetStore, Operation: "delete", Name: tag, Err: remote.ErrNotFound}
	}
	if _, ok := rel[name]; !ok {
		return &remote.TierError{Tier: remote.TierAssetStore, Operation: "delete", Name: name, Err: remote.ErrNotFound}
	}
	delete(rel, name)
	a.Deleted = append(a.Deleted, name)
	return nil
}

// Names returns the sorted asset names of tag.
func (a *Assets) Names(tag string) []string {
	return sortedKeys(a.Releases[tag])
}

// Objects is an in-memory ObjectStore keyed by full object key.
type Objects struct {
	Objects map[string][]byte

	ListErr   error
	UploadErr map[string]error
	DeleteErr error

	Uploaded     []string
	Deleted      []string
	DeleteCalls  int
	LargestBatch int
}

var _ remote.ObjectStore = (*Objects)(nil)

// NewObjects returns a store holding the given names under tag, each with
// content equal to its name.
func NewObjects(tag string, names ...string) *Objects {
	o := &Objects{Objects: make(map[string][]byte)}
	for _, n := range names {
		o.Objects[remote.ObjectKey(tag, n)] = []byte(n)
	}
	return o
}

func (o *Objects) List(_ context.Context, tag string) (artifact.Snapshot, error) {
	if o.ListErr != nil {
		return artifact.Snapshot{}, o.ListErr
	}
	var entries []artifact.Entry
	for key, data := range o.Objects {
		if name, ok := remote.KeyName(tag, key); ok {
			entries = append(entries, artifact.Entry{Name: name, Size: int64(len(data))})
		}
	}
	return artifact.NewSnapshot(entries...), nil
}

func (o *Objects) Upload(_ context.Context, tag, name, path string) error {
	if err := o.UploadErr[name]; err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	o.Objects[remote.ObjectKey(tag, name)] = data
	o.Uploaded = append(o.Uploaded, name)
	return nil
}

func (o *Objects) Delete(_ context.Context, tag string, names []string) error {
	if o.DeleteErr != nil {
		return o.DeleteErr
	}
	o.DeleteCalls++
	o.LargestBatch = max(o.LargestBatch, len(names))
	for _, n := range names {
		delete(o.Objects, remote.ObjectKey(tag, n))
		o.Deleted = append(o.Deleted, n)
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (o *Objects) Keys() []string {
	return sortedKeys(o.Objects)
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
