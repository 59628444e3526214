// Package resolve implements spec.md §4.3 steps 1-2: candidate
// enumeration and non-backtracking highest-version selection across a
// package graph. Grounded on AlexanderEkdahl/rope's mvs.go reduce()
// shape ("walk dependencies, then reduce to the greatest version per
// name"), narrowed from rope's full transitive Minimal Version
// Selection down to spec's single-pass "pick highest version
// satisfying the direct requirement" — the resolver never re-resolves
// transitively, so a conflict is reported rather than backtracked.
package resolve

import (
	"sort"

	"github.com/reprotoc/reproto/diag"
	"github.com/reprotoc/reproto/env"
	"github.com/reprotoc/reproto/semver"
	"github.com/reprotoc/reproto/token"
)

// Requirement is one direct dependency constraint to resolve.
type Requirement struct {
	Package semver.Package
	Req     semver.Requirement
}

// Select chooses the highest version satisfying each requirement's
// constraint, querying paths for the versions available per package.
// If two requirements on the same package select different versions,
// that is a VersionConflict naming both witnesses; if no available
// version satisfies a requirement, that is an UnsatisfiedVersion.
func Select(reqs []Requirement, paths env.PackagePath) (map[string]semver.Version, []*diag.Error) {
	selected := map[string]semver.Version{}
	selectedBy := map[string]Requirement{}

	var errs []*diag.Error

	// Stable order: sort by package name so repeated runs over the same
	// input produce the same diagnostic order.
	sorted := make([]Requirement, len(reqs))
	copy(sorted, reqs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Package.String() < sorted[j].Package.String()
	})

	for _, r := range sorted {
		available, err := paths.Versions(r.Package)
		if err != nil {
			errs = append(errs, diag.New(diag.Io, token.Span{}, err.Error()))
			continue
		}

		best, ok := highestSatisfying(available, r.Req)
		if !ok {
			errs = append(errs, diag.New(diag.UnsatisfiedVersion, token.Span{},
				"no available version of "+r.Package.String()+" satisfies "+r.Req.String()))
			continue
		}

		key := r.Package.String()

		if prev, exists := selected[key]; exists && !prev.EQ(best) {
			prevReq := selectedBy[key]
			errs = append(errs, diag.New(diag.VersionConflict, token.Span{},
				"conflicting version requirements for "+key+": "+prevReq.Req.String()+" selected "+prev.String()+
					", but "+r.Req.String()+" selected "+best.String()))

			continue
		}

		selected[key] = best
		selectedBy[key] = r
	}

	return selected, errs
}

// highestSatisfying returns the greatest version in available that
// satisfies req.
func highestSatisfying(available []semver.Version, req semver.Requirement) (semver.Version, bool) {
	var (
		best  semver.Version
		found bool
	)

	for _, v := range available {
		if !req.Satisfies(v) {
			continue
		}

		if !found || v.GT(best) {
			best = v
			found = true
		}
	}

	return best, found
}
