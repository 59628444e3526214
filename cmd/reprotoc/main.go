// Command reprotoc is a thin illustrative driver over the core
// pipeline: manifest -> environment -> version resolution -> IR ->
// (optionally) semantic-compatibility checking. It is not the
// module's deliverable surface; back-ends and a package repository
// client are external collaborators (§6/§8 of the module's
// specification) this binary never implements.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/reprotoc/reproto/ast"
	"github.com/reprotoc/reproto/diag"
	"github.com/reprotoc/reproto/env"
	"github.com/reprotoc/reproto/ir"
	"github.com/reprotoc/reproto/manifest"
	"github.com/reprotoc/reproto/parser"
	"github.com/reprotoc/reproto/resolve"
	"github.com/reprotoc/reproto/semck"
	"github.com/reprotoc/reproto/semver"
	"github.com/reprotoc/reproto/source"
)

const defaultHelp = `reprotoc is a driver for the reproto schema compiler front-end

Usage:

  reprotoc <command> [options]

The commands are:

  build    load a manifest, resolve versions, and build IR for every package
  check    compare two built packages and report compatibility violations
`

// Exit codes, per §6: 0 success, 1 user error, 2 I/O, 3 internal bug.
const (
	exitOK       = 0
	exitUser     = 1
	exitIO       = 2
	exitInternal = 3
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	switch arg {
	case "", "help", "--help", "-h":
		fmt.Print(defaultHelp)
		return exitOK
	case "build":
		return runBuild(args[1:])
	case "check":
		return runCheck(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "reprotoc: unknown command %q\n", arg)
		return exitUser
	}
}

func runBuild(args []string) int {
	flagSet := pflag.NewFlagSet("build", pflag.ContinueOnError)
	manifestPath := flagSet.String("manifest", "reproto.manifest", "path to the package manifest")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc build:", err)
		return exitUser
	}

	m, code, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc build:", err)
		return code
	}

	e, _, code, err := buildEnvironment(m)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc build:", err)
		return code
	}

	for _, pkg := range e.Packages() {
		if _, errs := ir.Build(e, pkg); len(errs) != 0 {
			for _, d := range errs {
				fmt.Fprintln(os.Stderr, diag.Explain(d))
			}

			return exitCodeFor(errs)
		}
	}

	fmt.Printf("reprotoc: built %d package(s)\n", len(e.Packages()))

	return exitOK
}

func runCheck(args []string) int {
	flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
	oldManifestPath := flagSet.String("old-manifest", "", "manifest describing the prior package version")
	newManifestPath := flagSet.String("new-manifest", "", "manifest describing the candidate package version")
	pkgName := flagSet.String("package", "", "dotted package name to compare")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc check:", err)
		return exitUser
	}

	if *oldManifestPath == "" || *newManifestPath == "" || *pkgName == "" {
		fmt.Fprintln(os.Stderr, "reprotoc check: --old-manifest, --new-manifest, and --package are required")
		return exitUser
	}

	pkg, err := semver.NewPackage(*pkgName)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc check:", err)
		return exitUser
	}

	oldPkg, code, err := buildOne(*oldManifestPath, pkg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc check:", err)
		return code
	}

	newPkg, code, err := buildOne(*newManifestPath, pkg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "reprotoc check:", err)
		return code
	}

	report := semck.Compare(oldPkg, newPkg)
	for _, v := range report.Violations {
		fmt.Printf("%s: %s\n", v.Rule, v.Message)
	}

	if !report.Compatible() {
		return exitUser
	}

	fmt.Println("reprotoc: compatible")

	return exitOK
}

func buildOne(manifestPath string, pkg semver.Package) (*ir.Package, int, error) {
	m, code, err := loadManifest(manifestPath)
	if err != nil {
		return nil, code, err
	}

	e, _, code, err := buildEnvironment(m)
	if err != nil {
		return nil, code, err
	}

	built, errs := ir.Build(e, pkg)
	if len(errs) != 0 {
		return nil, exitCodeFor(errs), fmt.Errorf("%s: %s", manifestPath, diag.Explain(errs[0]))
	}

	return built, exitOK, nil
}

// exitCodeFor classifies a batch of builder diagnostics: any diag.Bug
// indicates an internal invariant broke rather than a user mistake.
func exitCodeFor(errs []*diag.Error) int {
	for _, e := range errs {
		if e.Kind == diag.Bug {
			return exitInternal
		}
	}

	return exitUser
}

func loadManifest(path string) (*manifest.Manifest, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, exitIO, err
	}
	defer f.Close()

	m, err := manifest.Load(f)
	if err != nil {
		return nil, exitUser, err
	}

	return m, exitOK, nil
}

// buildEnvironment resolves every package.packages requirement against
// the manifest's search paths, loads the selected versions into a
// fresh Environment, and binds every use-alias, per spec §4.3.
func buildEnvironment(m *manifest.Manifest) (*env.Environment, map[string]semver.Version, int, error) {
	paths := env.NewFSPackagePath(m.Paths...)

	var reqs []resolve.Requirement

	for name, req := range m.Packages {
		pkg, err := semver.NewPackage(name)
		if err != nil {
			return nil, nil, exitUser, err
		}

		reqs = append(reqs, resolve.Requirement{Package: pkg, Req: req})
	}

	selected, errs := resolve.Select(reqs, paths)
	if len(errs) != 0 {
		return nil, nil, exitUser, fmt.Errorf("%s", diag.Explain(errs[0]))
	}

	e := env.New()

	for name, version := range selected {
		pkg, err := semver.NewPackage(name)
		if err != nil {
			return nil, nil, exitUser, err
		}

		files, err := paths.Files(pkg, version)
		if err != nil {
			return nil, nil, exitIO, err
		}

		astFiles, ferrs := parseAll(files)
		if len(ferrs) != 0 {
			return nil, nil, exitUser, ferrs[0]
		}

		if err := e.Load(pkg, version, astFiles...); err != nil {
			return nil, nil, exitUser, err
		}
	}

	for name := range selected {
		pkg, err := semver.NewPackage(name)
		if err != nil {
			continue
		}

		for _, f := range e.Files(pkg) {
			for _, u := range f.Uses {
				alias := u.Package.Parts[len(u.Package.Parts)-1]
				if u.Alias != nil {
					alias = *u.Alias
				}

				usedPkg, err := semver.NewPackage(joinDotted(u.Package.Parts))
				if err != nil {
					continue
				}

				if v, ok := selected[usedPkg.String()]; ok {
					e.BindAlias(pkg, alias, v)
				}
			}
		}
	}

	return e, selected, exitOK, nil
}

func parseAll(paths []string) ([]*ast.File, []error) {
	var (
		files []*ast.File
		errs  []error
	)

	for _, p := range paths {
		f, err := parser.ParseFile(source.FromFile(p))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}

		files = append(files, f)
	}

	return files, errs
}

func joinDotted(parts []string) string {
	out := ""

	for i, p := range parts {
		if i > 0 {
			out += "."
		}

		out += p
	}

	return out
}
