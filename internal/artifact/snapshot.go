package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// UnknownSize marks an entry whose tier did not report a size.
const UnknownSize int64 = -1

// Entry is one file in a tier.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Snapshot is the set of files present in a tier at one point in time.
// A Snapshot is never modified after construction.
type Snapshot struct {
	entries map[string]Entry
}

// NewSnapshot builds a snapshot from entries. Later duplicates win.
func NewSnapshot(entries ...Entry) Snapshot {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return Snapshot{entries: m}
}

// ScanDir snapshots the files directly inside dir. Symlinks count as the
// file they point to; dangling links and directories are left out. A missing
// directory yields an empty snapshot.
func ScanDir(dir string) (Snapshot, error) {
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return NewSnapshot(), nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scanning %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		var fi os.FileInfo
		switch {
		case de.Type().IsRegular():
			fi, err = de.Info()
		case de.Type()&os.ModeSymlink != 0:
			fi, err = os.Stat(filepath.Join(dir, de.Name()))
		default:
			continue
		}
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return NewSnapshot(entries...), nil
}

// Len returns the number of files.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Has reports whether name is present.
func (s Snapshot) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Get returns the entry for name.
func (s Snapshot) Get(name string) (Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Names returns all filenames in sorted order.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s.entries))
	for n := range s.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns all entries sorted by name.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, n := range s.Names() {
		out = append(out, s.entries[n])
	}
	return out
}

// Difference returns the sorted names present in s but not in other.
func (s Snapshot) Difference(other Snapshot) []string {
	var out []string
	for _, n := range s.Names() {
		if !other.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Filter returns a new snapshot holding the entries keep accepts.
func (s Snapshot) Filter(keep func(Entry) bool) Snapshot {
	var kept []Entry
	for _, e := range s.entries {
		if keep(e) {
			kept = append(kept, e)
		}
	}
	return NewSnapshot(kept...)
}
