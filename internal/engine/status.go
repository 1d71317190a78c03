package engine

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/vup-linux/vup-release/internal/artifact"
	"github.com/vup-linux/vup-release/internal/version"
)

// Package states reported by StatusEngine.
const (
	StateCurrent    = "current"
	StateSuperseded = "superseded"
	StateUnsigned   = "unsigned"
	StateStaleSig   = "stale-signature"
)

// StatusEngine reports the state of the local tier without changing it.
type StatusEngine struct {
	Dir        string
	Comparator version.Comparator
}

// PackageStatus describes one package in the local tier.
type PackageStatus struct {
	Package    artifact.Identity
	Size       int64
	Signatures []string
	State      string
}

// StatusReport is the read-only view of the local tier.
type StatusReport struct {
	Packages    []PackageStatus
	Unparseable []FileError
	Orphans     []string
	Other       []string // housekeeping and unrelated files
}

// Status scans the directory and classifies every file. It reports what a
// prune would do without doing it.
func (e *StatusEngine) Status(ctx context.Context) (*StatusReport, error) {
	snap, err := artifact.ScanDir(e.Dir)
	if err != nil {
		return nil, err
	}

	pruner := &PruneEngine{Dir: e.Dir, Comparator: e.Comparator, Log: zerolog.Nop()}
	plan := pruner.Plan(ctx, snap)
	sigs := &SignatureEngine{Dir: e.Dir}

	superseded := make(map[string]bool, len(plan.Remove))
	for _, r := range plan.Remove {
		superseded[r.Package.Filename()] = true
	}
	stale := make(map[string]bool)
	for _, name := range sigs.Stale(snap) {
		parent, _ := artifact.SidecarParent(name)
		stale[parent] = true
	}

	report := &StatusReport{Unparseable: plan.Skipped, Orphans: sigs.Orphans(snap)}

	ids := append([]artifact.Identity(nil), plan.Keep...)
	for _, r := range plan.Remove {
		ids = append(ids, r.Package)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Filename() < ids[j].Filename() })

	known := make(map[string]bool)
	for _, id := range ids {
		name := id.Filename()
		ps := PackageStatus{Package: id, Size: artifact.UnknownSize}
		if ent, ok := snap.Get(name); ok {
			ps.Size = ent.Size
		}
		for _, sc := range artifact.SidecarNames(name) {
			if snap.Has(sc) {
				ps.Signatures = append(ps.Signatures, sc)
				known[sc] = true
			}
		}
		switch {
		case superseded[name]:
			ps.State = StateSuperseded
		case stale[name]:
			ps.State = StateStaleSig
		case len(ps.Signatures) == 0:
			ps.State = StateUnsigned
		default:
			ps.State = StateCurrent
		}
		known[name] = true
		report.Packages = append(report.Packages, ps)
	}

	for _, fe := range report.Unparseable {
		known[fe.Path] = true
	}
	for _, o := range report.Orphans {
		known[o] = true
	}
	for _, name := range snap.Names() {
		if !known[name] {
			report.Other = append(report.Other, name)
		}
	}
	return report, nil
}
