// Package semver implements reproto's Package name and Version
// requirement types: a thin wrapper around blang/semver/v4's Version
// comparison plus a hand-rolled caret/tilde/range/wildcard requirement
// grammar in the style of the requirement parser in
// AlexanderEkdahl/rope's version package.
package semver

import (
	"fmt"
	"strings"
)

// Package is a non-empty ordered sequence of identifier parts, e.g.
// io.reproto.common. Equality is part-wise.
type Package struct {
	Parts []string
}

// NewPackage splits a dotted package name into its parts.
func NewPackage(dotted string) (Package, error) {
	if dotted == "" {
		return Package{}, fmt.Errorf("package name must not be empty")
	}

	parts := strings.Split(dotted, ".")
	for _, p := range parts {
		if !isIdentifier(p) {
			return Package{}, fmt.Errorf("invalid package name part %q", p)
		}
	}

	return Package{Parts: parts}, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// String renders the package name in dotted form.
func (p Package) String() string {
	return strings.Join(p.Parts, ".")
}

// Equal reports whether two package names have identical parts.
func (p Package) Equal(other Package) bool {
	if len(p.Parts) != len(other.Parts) {
		return false
	}

	for i := range p.Parts {
		if p.Parts[i] != other.Parts[i] {
			return false
		}
	}

	return true
}

// Last returns the final part of the package name, used as the
// default use-alias when none is given.
func (p Package) Last() string {
	if len(p.Parts) == 0 {
		return ""
	}

	return p.Parts[len(p.Parts)-1]
}
