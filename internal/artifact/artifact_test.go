package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Identity
	}{
		{"foo-bar-1.2.3_4.x86_64.xbps", Identity{Name: "foo-bar", Version: "1.2.3", Revision: 4, Arch: "x86_64"}},
		{"lib-foo-1.2.0_1.x86_64.xbps", Identity{Name: "lib-foo", Version: "1.2.0", Revision: 1, Arch: "x86_64"}},
		{"pkg-1.0_1.noarch.xbps", Identity{Name: "pkg", Version: "1.0", Revision: 1, Arch: "noarch"}},
		{"pkg-1.0.x86_64.xbps", Identity{Name: "pkg", Version: "1.0", Revision: 0, Arch: "x86_64"}},
		{"pkg-1.0_rc.x86_64.xbps", Identity{Name: "pkg", Version: "1.0", Revision: 0, Arch: "x86_64"}},
		{"python3-2to3-3.12.1_2.aarch64-musl.xbps", Identity{Name: "python3-2to3", Version: "3.12.1", Revision: 2, Arch: "aarch64-musl"}},
		{"font-0xproto-2.201_1.x86_64.xbps", Identity{Name: "font-0xproto", Version: "2.201", Revision: 1, Arch: "x86_64"}},
	}
	for _, tt := range tests {
		path := filepath.Join("dist", tt.in)
		got, err := Parse(path)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		tt.want.Path = path
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseUnparseable(t *testing.T) {
	for _, in := range []string{"repodata", "x86_64-repodata", "README.md", "foo-bar.x86_64.xbps", ".xbps", "-1.0_1.x86_64.xbps"} {
		_, err := Parse(in)
		if err == nil {
			t.Errorf("Parse(%q): expected error", in)
			continue
		}
		if !errors.Is(err, ErrUnparseable) {
			t.Errorf("Parse(%q): error %v does not wrap ErrUnparseable", in, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Name != filepath.Base(in) {
			t.Errorf("Parse(%q): error %v lacks filename", in, err)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	ids := []Identity{
		{Name: "foo-bar", Version: "1.2.3", Revision: 4, Arch: "x86_64"},
		{Name: "a", Version: "0", Revision: 0, Arch: "noarch"},
		{Name: "lib-x-y", Version: "2024.01.05", Revision: 12, Arch: "aarch64"},
		{Name: "go", Version: "1.22.0rc1", Revision: 1, Arch: "x86_64-musl"},
	}
	for _, id := range ids {
		name := Format(id, PackageExt)
		got, err := Parse(name)
		if err != nil {
			t.Errorf("Parse(Format(%+v)) = %v", id, err)
			continue
		}
		got.Path = ""
		if got != id {
			t.Errorf("round trip %q = %+v, want %+v", name, got, id)
		}
	}
}

func TestIdentityHelpers(t *testing.T) {
	a, _ := Parse("/dist/foo-1.0_2.x86_64.xbps")
	b, _ := Parse("/dist/foo-1.1_1.x86_64.xbps")
	c, _ := Parse("/dist/foo-1.1_1.aarch64.xbps")
	if !a.SamePackage(b) {
		t.Error("same name and arch should be the same package")
	}
	if a.SamePackage(c) {
		t.Error("different arch should not be the same package")
	}
	if a.PkgVer() != "foo-1.0_2" {
		t.Errorf("PkgVer = %q", a.PkgVer())
	}
	if a.Filename() != "foo-1.0_2.x86_64.xbps" {
		t.Errorf("Filename = %q", a.Filename())
	}
}

func TestSidecars(t *testing.T) {
	if got := SidecarNames("p.xbps"); !reflect.DeepEqual(got, []string{"p.xbps.sig", "p.xbps.sig2"}) {
		t.Errorf("SidecarNames = %v", got)
	}
	tests := []struct {
		in     string
		parent string
		ok     bool
	}{
		{"p.xbps.sig", "p.xbps", true},
		{"p.xbps.sig2", "p.xbps", true},
		{"p.xbps", "", false},
		{".sig", "", false},
	}
	for _, tt := range tests {
		parent, ok := SidecarParent(tt.in)
		if parent != tt.parent || ok != tt.ok {
			t.Errorf("SidecarParent(%q) = %q, %v", tt.in, parent, ok)
		}
	}
}

func TestIsHousekeeping(t *testing.T) {
	for _, n := range []string{"repodata", "repodata.sig", "x86_64-repodata", "x86_64-stagedata-repodata.sig2", "x86_64-repodata.tmp"} {
		if !IsHousekeeping(n) {
			t.Errorf("IsHousekeeping(%q) = false", n)
		}
	}
	for _, n := range []string{"foo-1.0_1.x86_64.xbps", "repodatafoo.sig", "pkg.xbps.sig"} {
		if IsHousekeeping(n) {
			t.Errorf("IsHousekeeping(%q) = true", n)
		}
	}
}

func TestGroupByName(t *testing.T) {
	var ids []Identity
	for _, n := range []string{"b-1.0_1.x86_64.xbps", "a-1.0_1.x86_64.xbps", "b-2.0_1.x86_64.xbps"} {
		id, err := Parse(n)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	g := GroupByName(ids)
	if !reflect.DeepEqual(g.Names(), []string{"a", "b"}) {
		t.Errorf("Names = %v", g.Names())
	}
	if len(g["b"]) != 2 || g["b"][0].Version != "1.0" {
		t.Errorf("group b = %+v", g["b"])
	}
}

func TestSnapshotDifference(t *testing.T) {
	local := NewSnapshot(Entry{Name: "A"}, Entry{Name: "B"})
	remote := NewSnapshot(Entry{Name: "A"}, Entry{Name: "C"})
	if got := remote.Difference(local); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("remote - local = %v", got)
	}
	if got := local.Difference(remote); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("local - remote = %v", got)
	}
	if got := local.Difference(local); len(got) != 0 {
		t.Errorf("local - local = %v", got)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.xbps"), []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.xbps.sig"), []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	snap, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if !reflect.DeepEqual(snap.Names(), []string{"a.xbps.sig", "b.xbps"}) {
		t.Errorf("Names = %v", snap.Names())
	}
	e, ok := snap.Get("b.xbps")
	if !ok || e.Size != 5 {
		t.Errorf("Get(b.xbps) = %+v, %v", e, ok)
	}
	if time.Since(e.ModTime) > time.Hour {
		t.Errorf("unexpected mtime %v", e.ModTime)
	}
}

func TestScanDirSymlinks(t *testing.T) {
	dir := t.TempDir()
	store := t.TempDir()
	target := filepath.Join(store, "real.xbps")
	if err := os.WriteFile(target, []byte("123"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "linked.xbps")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(store, "gone.xbps"), filepath.Join(dir, "dangling.xbps")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(store, filepath.Join(dir, "store")); err != nil {
		t.Fatal(err)
	}

	snap, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if !reflect.DeepEqual(snap.Names(), []string{"linked.xbps"}) {
		t.Errorf("Names = %v, want only the live file link", snap.Names())
	}
	if e, _ := snap.Get("linked.xbps"); e.Size != 3 {
		t.Errorf("linked size = %d, want the target's size", e.Size)
	}
}

func TestScanDirMissing(t *testing.T) {
	snap, err := ScanDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if snap.Len() != 0 {
		t.Errorf("Len = %d, want 0", snap.Len())
	}
}

func TestSnapshotFilter(t *testing.T) {
	snap := NewSnapshot(Entry{Name: "a.xbps"}, Entry{Name: "a.xbps.sig"})
	pkgs := snap.Filter(func(e Entry) bool { return IsPackage(e.Name) })
	if !reflect.DeepEqual(pkgs.Names(), []string{"a.xbps"}) {
		t.Errorf("Filter = %v", pkgs.Names())
	}
	if snap.Len() != 2 {
		t.Error("Filter must not modify the receiver")
	}
}
