package semver

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
	xsemver "golang.org/x/mod/semver"
)

// Version is reproto's (major, minor, patch, pre, build) tuple. It
// wraps blang/semver/v4.Version, which already implements the
// standard semver total order used throughout the resolver.
type Version struct {
	v semver.Version
}

// Parse parses a semantic version string such as "1.2.3-alpha+build".
// A leading "v" is tolerated the way golang.org/x/mod/semver's canonical
// form does, then stripped before delegating to blang/semver.
func Parse(s string) (Version, error) {
	trimmed := s
	if len(trimmed) > 0 && trimmed[0] == 'v' {
		trimmed = trimmed[1:]
	}

	v, err := semver.Parse(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}

	return Version{v: v}, nil
}

// LooksLikeSemver performs the same cheap lexical check the markup
// compiler's ast.SemVer.Capture performs before committing to a full
// parse: golang.org/x/mod/semver validates a canonical "vX.Y.Z..."
// string without allocating a structured Version.
func LooksLikeSemver(s string) bool {
	if len(s) == 0 {
		return false
	}

	if s[0] != 'v' {
		s = "v" + s
	}

	core, _, _ := strings.Cut(s, "+")

	return xsemver.IsValid(s) && xsemver.Canonical(s) == core
}

func (v Version) Major() uint64 { return v.v.Major }
func (v Version) Minor() uint64 { return v.v.Minor }
func (v Version) Patch() uint64 { return v.v.Patch }

func (v Version) String() string {
	return v.v.String()
}

// Compare returns -1, 0 or 1 following the standard semver total order.
func (v Version) Compare(other Version) int {
	return v.v.Compare(other.v)
}

// GT reports whether v is strictly greater than other.
func (v Version) GT(other Version) bool {
	return v.v.GT(other.v)
}

// LT reports whether v is strictly less than other.
func (v Version) LT(other Version) bool {
	return v.v.LT(other.v)
}

// EQ reports version equality under the standard semver rules
// (pre-release differences matter, build metadata does not).
func (v Version) EQ(other Version) bool {
	return v.v.EQ(other.v)
}
