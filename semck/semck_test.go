package semck

import (
	"testing"

	"github.com/reprotoc/reproto/ast"
	"github.com/reprotoc/reproto/env"
	"github.com/reprotoc/reproto/ir"
	"github.com/reprotoc/reproto/semver"
	"github.com/reprotoc/reproto/source"
)

func build(t *testing.T, text string) *ir.Package {
	t.Helper()

	e := env.New()
	pkg, err := semver.NewPackage("a")
	if err != nil {
		t.Fatalf("NewPackage: %v", err)
	}

	ver, err := semver.Parse("1.0.0")
	if err != nil {
		t.Fatalf("Parse version: %v", err)
	}

	f, err := ast.Parse(source.FromBytes("a.reproto", []byte(text)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if err := e.Load(pkg, ver, f); err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, errs := ir.Build(e, pkg)
	if len(errs) != 0 {
		t.Fatalf("Build: %v", errs)
	}

	return p
}

func hasRule(r *Report, rule string) bool {
	for _, v := range r.Violations {
		if v.Rule == rule {
			return true
		}
	}

	return false
}

func TestCompareCompatibleAdditions(t *testing.T) {
	old := build(t, `type T { a: string; }`)
	newer := build(t, `type T { a: string; b?: string; } type U {}`)

	r := Compare(old, newer)
	if !r.Compatible() {
		t.Fatalf("expected compatible, got violations: %+v", r.Violations)
	}

	if len(r.Added) != 1 || r.Added[0].DeclarationKey != "U" {
		t.Fatalf("expected U added, got %+v", r.Added)
	}

	if len(r.Modified) != 1 || r.Modified[0].DeclarationKey != "T" {
		t.Fatalf("expected T modified, got %+v", r.Modified)
	}
}

func TestCompareFieldRemoved(t *testing.T) {
	old := build(t, `type T { a: string; b: string; }`)
	newer := build(t, `type T { a: string; }`)

	r := Compare(old, newer)
	if r.Compatible() {
		t.Fatalf("expected incompatible")
	}

	if !hasRule(r, "field-removed") {
		t.Fatalf("expected field-removed violation, got %+v", r.Violations)
	}
}

func TestCompareFieldTypeChanged(t *testing.T) {
	old := build(t, `type T { a: string; }`)
	newer := build(t, `type T { a: unsigned; }`)

	r := Compare(old, newer)
	if !hasRule(r, "field-type-change") {
		t.Fatalf("expected field-type-change violation, got %+v", r.Violations)
	}
}

func TestCompareOptionalBecomesRequired(t *testing.T) {
	old := build(t, `type T { a?: string; }`)
	newer := build(t, `type T { a: string; }`)

	r := Compare(old, newer)
	if !hasRule(r, "field-optional-to-required") {
		t.Fatalf("expected field-optional-to-required violation, got %+v", r.Violations)
	}
}

func TestCompareRequiredBecomesOptionalIsCompatible(t *testing.T) {
	old := build(t, `type T { a: string; }`)
	newer := build(t, `type T { a?: string; }`)

	r := Compare(old, newer)
	if !r.Compatible() {
		t.Fatalf("expected compatible, got %+v", r.Violations)
	}
}

func TestCompareEnumVariantRemoved(t *testing.T) {
	old := build(t, `enum E as string { A as "a"; B as "b"; }`)
	newer := build(t, `enum E as string { A as "a"; }`)

	r := Compare(old, newer)
	if !hasRule(r, "enum-variant-removed") {
		t.Fatalf("expected enum-variant-removed violation, got %+v", r.Violations)
	}
}

func TestCompareEnumOrdinalChanged(t *testing.T) {
	old := build(t, `enum E as string { A as "a"; }`)
	newer := build(t, `enum E as string { A as "z"; }`)

	r := Compare(old, newer)
	if !hasRule(r, "enum-ordinal-change") {
		t.Fatalf("expected enum-ordinal-change violation, got %+v", r.Violations)
	}
}

func TestCompareEnumVariantAddedIsCompatible(t *testing.T) {
	old := build(t, `enum E as string { A as "a"; }`)
	newer := build(t, `enum E as string { A as "a"; B as "b"; }`)

	r := Compare(old, newer)
	if !r.Compatible() {
		t.Fatalf("expected compatible, got %+v", r.Violations)
	}
}

func TestCompareSubTypeRemoved(t *testing.T) {
	old := build(t, `interface Animal { name: string; type Dog as "dog" {} type Cat as "cat" {} }`)
	newer := build(t, `interface Animal { name: string; type Dog as "dog" {} }`)

	r := Compare(old, newer)
	if !hasRule(r, "sub-type-removed") {
		t.Fatalf("expected sub-type-removed violation, got %+v", r.Violations)
	}
}

func TestCompareSubTypeDiscriminatorChanged(t *testing.T) {
	old := build(t, `interface Animal { type Dog as "dog" {} }`)
	newer := build(t, `interface Animal { type Dog as "doggo" {} }`)

	r := Compare(old, newer)
	if !hasRule(r, "sub-type-discriminator-change") {
		t.Fatalf("expected sub-type-discriminator-change violation, got %+v", r.Violations)
	}
}

func TestCompareEndpointRemoved(t *testing.T) {
	old := build(t, `service S { greet(string) -> string; }`)
	newer := build(t, `service S {}`)

	r := Compare(old, newer)
	if !hasRule(r, "endpoint-removed") {
		t.Fatalf("expected endpoint-removed violation, got %+v", r.Violations)
	}
}

func TestCompareEndpointChannelChanged(t *testing.T) {
	old := build(t, `service S { greet(string) -> string; }`)
	newer := build(t, `service S { greet(unsigned) -> string; }`)

	r := Compare(old, newer)
	if !hasRule(r, "endpoint-channel-change") {
		t.Fatalf("expected endpoint-channel-change violation, got %+v", r.Violations)
	}
}

func TestCompareDeclarationRemoved(t *testing.T) {
	old := build(t, `type T {} type U {}`)
	newer := build(t, `type T {}`)

	r := Compare(old, newer)
	if r.Compatible() {
		t.Fatalf("expected incompatible: removing a declaration is breaking")
	}

	if !hasRule(r, "declaration-removed") {
		t.Fatalf("expected declaration-removed violation, got %+v", r.Violations)
	}

	if len(r.Removed) != 1 || r.Removed[0].DeclarationKey != "U" {
		t.Fatalf("expected U removed, got %+v", r.Removed)
	}
}

func TestCompareDeclarationKindChanged(t *testing.T) {
	old := build(t, `type T {}`)
	newer := build(t, `enum T as string { A as "a"; }`)

	r := Compare(old, newer)
	if !hasRule(r, "declaration-kind-change") {
		t.Fatalf("expected declaration-kind-change violation, got %+v", r.Violations)
	}
}
