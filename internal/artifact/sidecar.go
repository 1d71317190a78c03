package artifact

import "strings"

// SidecarSuffixes are appended verbatim to a package filename to name its
// detached signatures.
var SidecarSuffixes = []string{".sig", ".sig2"}

// IsPackage reports whether name is a binary package.
func IsPackage(name string) bool {
	return strings.HasSuffix(name, PackageExt)
}

// SidecarNames returns the signature filenames owned by the package name.
func SidecarNames(name string) []string {
	names := make([]string, len(SidecarSuffixes))
	for i, s := range SidecarSuffixes {
		names[i] = name + s
	}
	return names
}

// SidecarParent returns the filename a signature belongs to.
func SidecarParent(name string) (string, bool) {
	for _, s := range SidecarSuffixes {
		if parent, ok := strings.CutSuffix(name, s); ok && parent != "" {
			return parent, true
		}
	}
	return "", false
}

// IsHousekeeping reports whether name is repository index metadata that the
// signature passes must never touch (e.g. "x86_64-repodata").
func IsHousekeeping(name string) bool {
	switch {
	case name == "repodata", strings.HasPrefix(name, "repodata."):
		return true
	case strings.HasSuffix(name, "-repodata"), strings.Contains(name, "-repodata."):
		return true
	}
	return false
}
