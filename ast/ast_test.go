package ast

import (
	"testing"

	"github.com/reprotoc/reproto/source"
)

func parseString(t *testing.T, text string) *File {
	t.Helper()

	f, err := Parse(source.FromBytes("test.reproto", []byte(text)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	return f
}

func TestParseSimpleType(t *testing.T) {
	f := parseString(t, `type T { a: string; b: signed(32); }`)

	if len(f.Decls) != 1 || f.Decls[0].Type == nil {
		t.Fatalf("expected one Type decl, got %+v", f.Decls)
	}

	members := f.Decls[0].Type.Members
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	if members[0].Field == nil || members[0].Field.Name != "a" {
		t.Fatalf("member 0 = %+v", members[0])
	}

	if members[1].Field.Type.Primitive == nil || members[1].Field.Type.Primitive.Name != "signed" {
		t.Fatalf("member 1 type = %+v", members[1].Field.Type)
	}
}

func TestParseUseImport(t *testing.T) {
	f := parseString(t, `use io.reproto.common@^1.2.3 as common; type T {}`)

	if len(f.Uses) != 1 {
		t.Fatalf("expected one use decl, got %d", len(f.Uses))
	}

	u := f.Uses[0]
	if len(u.Package.Parts) != 3 || u.Package.Parts[2] != "common" {
		t.Fatalf("package parts = %v", u.Package.Parts)
	}

	if u.VersionReq == nil || *u.VersionReq != "^1.2.3" {
		t.Fatalf("version req = %v", u.VersionReq)
	}

	if u.Alias == nil || *u.Alias != "common" {
		t.Fatalf("alias = %v", u.Alias)
	}
}

func TestParseEnum(t *testing.T) {
	f := parseString(t, `enum E as string { A as "foo"; B as "bar"; }`)

	if len(f.Decls) != 1 || f.Decls[0].Enum == nil {
		t.Fatalf("expected one Enum decl")
	}

	e := f.Decls[0].Enum
	if e.OrdinalType == nil || *e.OrdinalType != "string" {
		t.Fatalf("ordinal type = %v", e.OrdinalType)
	}

	if len(e.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(e.Variants))
	}

	if e.Variants[0].Name != "A" || e.Variants[0].Ordinal == nil || e.Variants[0].Ordinal.Str == nil || *e.Variants[0].Ordinal.Str != "foo" {
		t.Fatalf("variant 0 = %+v", e.Variants[0])
	}
}

func TestParseInterfaceWithSubType(t *testing.T) {
	f := parseString(t, `interface Animal { name: string; type Dog { breed: string; } }`)

	if len(f.Decls) != 1 || f.Decls[0].Interface == nil {
		t.Fatalf("expected one Interface decl")
	}

	members := f.Decls[0].Interface.Members
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	if members[1].Inner == nil || members[1].Inner.Type == nil || members[1].Inner.Type.Name != "Dog" {
		t.Fatalf("member 1 = %+v", members[1])
	}
}

func TestParseService(t *testing.T) {
	f := parseString(t, `service Greeter { sayHello(string) -> string; }`)

	if len(f.Decls) != 1 || f.Decls[0].Service == nil {
		t.Fatalf("expected one Service decl")
	}

	eps := f.Decls[0].Service.Endpoints
	if len(eps) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(eps))
	}

	ep := eps[0]
	if ep.Name != "sayHello" {
		t.Fatalf("endpoint name = %q", ep.Name)
	}

	if ep.Request == nil || ep.Request.Type.Primitive == nil || ep.Request.Type.Primitive.Name != "string" {
		t.Fatalf("request = %+v", ep.Request)
	}

	if ep.Response == nil || ep.Response.Type.Primitive == nil || ep.Response.Type.Primitive.Name != "string" {
		t.Fatalf("response = %+v", ep.Response)
	}
}

func TestParseFieldAlias(t *testing.T) {
	f := parseString(t, `type T { a: string as "x"; }`)

	field := f.Decls[0].Type.Members[0].Field
	if field.Alias == nil || field.Alias.Text() != "x" {
		t.Fatalf("alias = %+v", field.Alias)
	}
}

func TestParseModuleDoc(t *testing.T) {
	f := parseString(t, "//! package summary\ntype T {}")

	if f.ModuleDoc == nil || *f.ModuleDoc != "package summary" {
		t.Fatalf("module doc = %v", f.ModuleDoc)
	}
}

func TestParseArrayAndMapTypes(t *testing.T) {
	f := parseString(t, `type T { xs: [string]; m: {string: signed}; }`)

	members := f.Decls[0].Type.Members
	if members[0].Field.Type.Array == nil {
		t.Fatalf("expected array type, got %+v", members[0].Field.Type)
	}

	if members[1].Field.Type.Map == nil {
		t.Fatalf("expected map type, got %+v", members[1].Field.Type)
	}
}

func TestParseCodeBlock(t *testing.T) {
	f := parseString(t, `type T { java {{ public int x; }} }`)

	member := f.Decls[0].Type.Members[0]
	if member.Code == nil || member.Code.Context != "java" {
		t.Fatalf("expected code member, got %+v", member)
	}
}
