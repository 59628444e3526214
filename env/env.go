// Package env holds the package environment built from a manifest and
// a set of parsed files: the mapping from fully qualified package name
// to its parsed file set, use-alias bindings, and the name-resolution
// algorithm of spec.md §4.3 steps 3-5. Generalizes golangee/tadl's
// parser.ParseProject/mergeProjectModules from "one project, one
// module namespace" to "many packages, each pinned to a selected
// version".
package env

import (
	"fmt"

	"github.com/reprotoc/reproto/ast"
	"github.com/reprotoc/reproto/diag"
	"github.com/reprotoc/reproto/semver"
)

// PackageVersion is a concrete (Package, Version) pair: the key
// identifying one loaded file set.
type PackageVersion struct {
	Package semver.Package
	Version semver.Version
}

// pkgEntry is the file set and declaration index loaded for one
// package. useAliases is one table per package rather than per file:
// reproto files within a package don't rebind the same alias
// differently in practice, so the table is built from every file's
// use list as the package loads.
type pkgEntry struct {
	version    semver.Version
	files      []*ast.File
	decls      map[string]*ast.Declaration // top-level name -> declaration
	declOrigin map[string]*ast.File
	useAliases map[string]aliasTarget
}

type aliasTarget struct {
	pkg     semver.Package
	version semver.Version
}

// Environment is the single aggregate the compiler builds for one
// compilation: package name -> loaded package. It is write-once per
// package (Load rejects a second Load of the same package) and becomes
// read-only once IR building begins, per spec §5's single-writer policy.
type Environment struct {
	packages map[string]*pkgEntry
}

// New returns an empty Environment.
func New() *Environment {
	return &Environment{packages: map[string]*pkgEntry{}}
}

// Load inserts a package at a selected version with its already-parsed
// files, performing step 3's duplicate-declaration rejection and step
// 4's use-alias binding inline.
func (e *Environment) Load(pkg semver.Package, version semver.Version, files ...*ast.File) error {
	key := pkg.String()
	if _, exists := e.packages[key]; exists {
		return fmt.Errorf("package %s already loaded", key)
	}

	entry := &pkgEntry{
		version:    version,
		files:      files,
		decls:      map[string]*ast.Declaration{},
		declOrigin: map[string]*ast.File{},
		useAliases: map[string]aliasTarget{},
	}

	for _, f := range files {
		for _, d := range f.Decls {
			name := d.Name()
			if _, exists := entry.decls[name]; exists {
				return diag.New(diag.DuplicateDeclaration, d.Span(f.Source),
					fmt.Sprintf("declaration %q is already defined in package %s", name, key))
			}

			entry.decls[name] = d
			entry.declOrigin[name] = f
		}

		for _, u := range f.Uses {
			alias := aliasFor(u)

			usedPkg, err := semver.NewPackage(joinParts(u.Package.Parts))
			if err != nil {
				return diag.New(diag.UnknownPackage, u.Span(f.Source), err.Error())
			}

			entry.useAliases[alias] = aliasTarget{pkg: usedPkg}
		}
	}

	e.packages[key] = entry

	return nil
}

// BindAlias records the concrete version resolved for a use-alias
// inside pkg, completing spec §4.3 step 4 once the resolver has picked
// a version for the aliased package.
func (e *Environment) BindAlias(pkg semver.Package, alias string, version semver.Version) {
	entry, ok := e.packages[pkg.String()]
	if !ok {
		return
	}

	target := entry.useAliases[alias]
	target.version = version
	entry.useAliases[alias] = target
}

// Resolve looks up a use-alias inside fromPkg and returns the package
// and version it was bound to, per spec §4.3 step 5.
func (e *Environment) Resolve(fromPkg semver.Package, useAlias string) (semver.Package, semver.Version, bool) {
	entry, ok := e.packages[fromPkg.String()]
	if !ok {
		return semver.Package{}, semver.Version{}, false
	}

	target, ok := entry.useAliases[useAlias]
	if !ok {
		return semver.Package{}, semver.Version{}, false
	}

	return target.pkg, target.version, true
}

// Declarations returns the top-level declarations of a loaded package
// keyed by name, or nil if the package was never loaded.
func (e *Environment) Declarations(pkg semver.Package) map[string]*ast.Declaration {
	entry, ok := e.packages[pkg.String()]
	if !ok {
		return nil
	}

	return entry.decls
}

// DeclOrigin returns the file a top-level declaration was parsed
// from, needed to recover its token.Span (ast.Declaration.Span takes
// the owning source explicitly rather than storing it).
func (e *Environment) DeclOrigin(pkg semver.Package, name string) (*ast.File, bool) {
	entry, ok := e.packages[pkg.String()]
	if !ok {
		return nil, false
	}

	f, ok := entry.declOrigin[name]

	return f, ok
}

// Files returns the parsed files loaded for pkg.
func (e *Environment) Files(pkg semver.Package) []*ast.File {
	entry, ok := e.packages[pkg.String()]
	if !ok {
		return nil
	}

	return entry.files
}

// Version returns the version pkg was loaded at.
func (e *Environment) Version(pkg semver.Package) (semver.Version, bool) {
	entry, ok := e.packages[pkg.String()]
	if !ok {
		return semver.Version{}, false
	}

	return entry.version, true
}

// Packages returns every package name currently loaded.
func (e *Environment) Packages() []semver.Package {
	out := make([]semver.Package, 0, len(e.packages))

	for key := range e.packages {
		pkg, err := semver.NewPackage(key)
		if err != nil {
			continue
		}

		out = append(out, pkg)
	}

	return out
}

func aliasFor(u *ast.UseDecl) string {
	if u.Alias != nil {
		return *u.Alias
	}

	if len(u.Package.Parts) == 0 {
		return ""
	}

	return u.Package.Parts[len(u.Package.Parts)-1]
}

func joinParts(parts []string) string {
	out := ""

	for i, p := range parts {
		if i > 0 {
			out += "."
		}

		out += p
	}

	return out
}
