package env

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/reprotoc/reproto/semver"
)

// PackagePath enumerates the versions available for a package and
// opens its source files at a given version. FSPackagePath is the
// only implementation this module ships (the indexed/remote case is
// an external collaborator's concern per spec.md §6/§8); external code
// can satisfy the same interface against a repository index.
type PackagePath interface {
	Versions(pkg semver.Package) ([]semver.Version, error)
	Files(pkg semver.Package, version semver.Version) ([]string, error)
}

// FSPackagePath resolves packages laid out on disk as
// <root>/<a>/<b>/<c>.reproto for package a.b.c, with an optional
// "-<version>" suffix on the leaf file stem for versioned layouts,
// exactly as spec.md §6 describes. Grounded on the teacher's
// parser.ParseProject directory walk.
type FSPackagePath struct {
	Roots []string
}

// NewFSPackagePath builds a PackagePath searching the given root
// directories in order.
func NewFSPackagePath(roots ...string) *FSPackagePath {
	return &FSPackagePath{Roots: roots}
}

// Versions returns every version available for pkg across all roots,
// derived from "-<version>" leaf suffixes; a leaf with no suffix is
// treated as the unversioned "0.0.0" placeholder.
func (p *FSPackagePath) Versions(pkg semver.Package) ([]semver.Version, error) {
	var versions []semver.Version

	seen := map[string]bool{}

	for _, root := range p.Roots {
		matches, err := findPackageFiles(root, pkg)
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			if seen[m.version.String()] {
				continue
			}

			seen[m.version.String()] = true
			versions = append(versions, m.version)
		}
	}

	return versions, nil
}

// Files returns the paths of the files implementing pkg at version,
// each joined under the root it was found in (absolute only when that
// root is).
func (p *FSPackagePath) Files(pkg semver.Package, version semver.Version) ([]string, error) {
	var out []string

	for _, root := range p.Roots {
		matches, err := findPackageFiles(root, pkg)
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			if m.version.EQ(version) {
				out = append(out, m.path)
			}
		}
	}

	return out, nil
}

type fileMatch struct {
	path    string
	version semver.Version
}

// findPackageFiles walks root looking for a "<a>/<b>/<c>[-<version>].reproto"
// path whose a.b.c matches pkg.
func findPackageFiles(root string, pkg semver.Package) ([]fileMatch, error) {
	want := strings.Join(pkg.Parts, string(filepath.Separator))

	var matches []fileMatch

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != ".reproto" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		dir := filepath.Dir(rel)
		stem := strings.TrimSuffix(filepath.Base(rel), ".reproto")

		parts, version, ok := splitVersionedStem(stem)
		if !ok {
			return nil
		}

		candidate := filepath.Join(dir, parts)
		if filepath.Clean(candidate) != filepath.Clean(want) {
			return nil
		}

		matches = append(matches, fileMatch{path: path, version: version})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

// splitVersionedStem splits a leaf stem like "c-1.2.3" into "c" and
// its version, or returns the unversioned placeholder "0.0.0" when no
// "-<semver>" suffix is present.
func splitVersionedStem(stem string) (name string, version semver.Version, ok bool) {
	idx := strings.LastIndex(stem, "-")
	if idx < 0 {
		v, err := semver.Parse("0.0.0")
		if err != nil {
			return "", semver.Version{}, false
		}

		return stem, v, true
	}

	candidate := stem[idx+1:]
	if !semver.LooksLikeSemver(candidate) {
		v, err := semver.Parse("0.0.0")
		if err != nil {
			return "", semver.Version{}, false
		}

		return stem, v, true
	}

	v, err := semver.Parse(candidate)
	if err != nil {
		return "", semver.Version{}, false
	}

	return stem[:idx], v, true
}
