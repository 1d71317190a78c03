// Package artifact derives package identities from filenames and captures
// immutable snapshots of a tier's file set.
package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vup-linux/vup-release/internal/version"
)

// PackageExt is the extension of a binary package.
const PackageExt = ".xbps"

// ErrUnparseable marks a filename that does not follow
// <name>-<version>[_<revision>].<arch>.<ext>.
var ErrUnparseable = errors.New("unparseable package filename")

// ParseError reports the filename that could not be parsed.
type ParseError struct {
	Name   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot derive package identity from %q: %s", e.Name, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrUnparseable
}

// Identity is the parsed form of a package filename.
type Identity struct {
	Name     string
	Version  string
	Revision int
	Arch     string
	Path     string
}

// Key returns the orderable version of the package.
func (id Identity) Key() version.Key {
	return version.Key{Version: id.Version, Revision: id.Revision}
}

// PkgVer renders "name-version_revision".
func (id Identity) PkgVer() string {
	return id.Name + "-" + id.Key().String()
}

// Filename is the base name of Path.
func (id Identity) Filename() string {
	return filepath.Base(id.Path)
}

// SamePackage reports whether both identities name the same package built for
// the same architecture.
func (id Identity) SamePackage(other Identity) bool {
	return id.Name == other.Name && id.Arch == other.Arch
}

// Parse derives an Identity from path. The name ends at the last hyphen that
// is immediately followed by a digit, so "lib-foo-1.2.0_1.x86_64.xbps" parses
// to name "lib-foo", version "1.2.0", revision 1, arch "x86_64".
func Parse(path string) (Identity, error) {
	base := filepath.Base(path)

	ext := strings.LastIndexByte(base, '.')
	if ext <= 0 {
		return Identity{}, &ParseError{Name: base, Reason: "missing extension"}
	}
	stem := base[:ext]

	dot := strings.LastIndexByte(stem, '.')
	if dot <= 0 || dot == len(stem)-1 {
		return Identity{}, &ParseError{Name: base, Reason: "missing architecture"}
	}
	arch := stem[dot+1:]
	pkgver := stem[:dot]

	split := -1
	for i := len(pkgver) - 2; i > 0; i-- {
		if pkgver[i] == '-' && isDigit(pkgver[i+1]) {
			split = i
			break
		}
	}
	if split < 0 {
		return Identity{}, &ParseError{Name: base, Reason: "no version boundary"}
	}

	key := version.ParseKey(pkgver[split+1:])
	return Identity{
		Name:     pkgver[:split],
		Version:  key.Version,
		Revision: key.Revision,
		Arch:     arch,
		Path:     path,
	}, nil
}

// Format renders the filename for id with the given extension (including its
// leading dot). Parse(Format(id, ext)) recovers id's name, version, revision
// and arch.
func Format(id Identity, ext string) string {
	return id.Name + "-" + id.Version + "_" + strconv.Itoa(id.Revision) + "." + id.Arch + ext
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
