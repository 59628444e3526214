// Package ast defines reproto's immutable syntax tree and the
// participle grammar that produces it, generalizing the struct-tag
// grammar technique of golangee/tadl's ast package to reproto's
// declaration/member/type-expression/value surface.
package ast

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/reprotoc/reproto/source"
	"github.com/reprotoc/reproto/token"
)

// File is the parse result of a single .reproto source: an optional
// module-level doc comment, its use imports, file-level options and
// top-level declarations, in that order.
type File struct {
	Pos, EndPos lexer.Position
	Source      *source.Source

	ModuleDoc *string        `@ModuleDoc?`
	Uses      []*UseDecl     `@@*`
	Options   []*FileOption  `@@*`
	Decls     []*Declaration `@@*`
}

func (f *File) Span() token.Span { return spanIn(f.Source, f.Pos, f.EndPos) }

// PackagePath is a dotted package reference, e.g. io.reproto.common.
type PackagePath struct {
	Pos, EndPos lexer.Position
	Parts       []string `@Ident ("." @Ident)*`
}

// UseDecl imports another package, optionally pinned to a version
// requirement and bound to a local alias.
type UseDecl struct {
	Pos, EndPos lexer.Position

	Package    PackagePath `"use" @@`
	VersionReq *string     `(@VersionReq)?`
	Alias      *string     `("as" @Ident)? ";"`
}

func (u *UseDecl) Span(src *source.Source) token.Span { return spanIn(src, u.Pos, u.EndPos) }

// FileOption is an `option name = value;` declaration, used both at file scope
// (field_naming, endpoint_naming) and inside an OptionDecl member.
type FileOption struct {
	Pos, EndPos lexer.Position

	Name  string `"option" @Ident "="`
	Value *Value `@@ ";"`
}

func (o *FileOption) Span(src *source.Source) token.Span { return spanIn(src, o.Pos, o.EndPos) }

// Declaration is the tagged variant of spec.md §3's AST Declaration:
// exactly one of Type, Tuple, Interface, Enum or Service is non-nil.
type Declaration struct {
	Pos, EndPos lexer.Position

	Doc []string `@DocLine*`

	Type      *TypeDecl      `(   @@`
	Tuple     *TupleDecl     ` | @@`
	Interface *InterfaceDecl ` | @@`
	Enum      *EnumDecl      ` | @@`
	Service   *ServiceDecl   ` | @@ )`
}

func (d *Declaration) Span(src *source.Source) token.Span { return spanIn(src, d.Pos, d.EndPos) }

// Name returns the declaration's identifier regardless of variant.
func (d *Declaration) Name() string {
	switch {
	case d.Type != nil:
		return d.Type.Name
	case d.Tuple != nil:
		return d.Tuple.Name
	case d.Interface != nil:
		return d.Interface.Name
	case d.Enum != nil:
		return d.Enum.Name
	case d.Service != nil:
		return d.Service.Name
	default:
		return ""
	}
}

// DiscriminatorAlias returns the `as "literal"` clause on a Type or
// Tuple declaration nested as an interface sub-type, or nil if absent
// or not applicable to this variant.
func (d *Declaration) DiscriminatorAlias() *AliasValue {
	switch {
	case d.Type != nil:
		return d.Type.Alias
	case d.Tuple != nil:
		return d.Tuple.Alias
	default:
		return nil
	}
}

// Members returns the member list common to Type, Tuple and Interface
// declarations, or nil for Enum/Service.
func (d *Declaration) Members() []*Member {
	switch {
	case d.Type != nil:
		return d.Type.Members
	case d.Tuple != nil:
		return d.Tuple.Members
	case d.Interface != nil:
		return d.Interface.Members
	default:
		return nil
	}
}

// TypeDecl is a record-like declaration: a named field set. Alias is
// only meaningful when the declaration nests inside an interface as a
// sub-type (`as "literal"` fixes that sub-type's discriminator value);
// it is ignored everywhere else.
type TypeDecl struct {
	Pos, EndPos lexer.Position

	Name    string      `"type" @TypeIdent`
	Alias   *AliasValue `("as" @@)?`
	Members []*Member   `"{" @@* "}"`
}

// TupleDecl is positionally-ordered, otherwise identical to TypeDecl.
type TupleDecl struct {
	Pos, EndPos lexer.Position

	Name    string      `"tuple" @TypeIdent`
	Alias   *AliasValue `("as" @@)?`
	Members []*Member   `"{" @@* "}"`
}

// InterfaceDecl carries base members plus nested sub-type declarations
// (captured generically as InnerDecl members, per spec §9's "nested
// declarations flattened at IR time").
type InterfaceDecl struct {
	Pos, EndPos lexer.Position

	Name    string    `"interface" @TypeIdent`
	Members []*Member `"{" @@* "}"`
}

// EnumDecl declares a closed set of variants, with an optional ordinal
// wire type fixed via `as <type>`.
type EnumDecl struct {
	Pos, EndPos lexer.Position

	Name        string         `"enum" @TypeIdent`
	OrdinalType *string        `("as" @Ident)?`
	Variants    []*EnumVariant `"{" @@* "}"`
}

// EnumVariant is one member of an EnumDecl, with an optional explicit
// ordinal literal.
type EnumVariant struct {
	Pos, EndPos lexer.Position

	Doc     []string `@DocLine*`
	Name    string   `@TypeIdent`
	Ordinal *Value   `("as" @@)? ";"`
}

func (v *EnumVariant) Span(src *source.Source) token.Span { return spanIn(src, v.Pos, v.EndPos) }

// ServiceDecl declares a named set of RPC endpoints.
type ServiceDecl struct {
	Pos, EndPos lexer.Position

	Name      string             `"service" @TypeIdent`
	Endpoints []*ServiceEndpoint `"{" @@* "}"`
}

// Channel is an endpoint's request or response slot: an optional
// `stream` marker followed by a type expression.
type Channel struct {
	Pos, EndPos lexer.Position

	Streaming bool     `@"stream"?`
	Type      TypeExpr `@@`
}

// ServiceEndpoint is `ident ( Channel? ) ( -> Channel )? ( as alias )?
// ( ; | { options } )`, per spec §4.2.
type ServiceEndpoint struct {
	Pos, EndPos lexer.Position

	Doc      []string      `@DocLine*`
	Name     string        `@Ident`
	Request  *Channel      `"(" @@? ")"`
	Response *Channel      `("->" @@)?`
	Alias    *string       `("as" @Ident)?`
	Options  []*FileOption `( ";" | "{" @@* "}" )`
}

func (e *ServiceEndpoint) Span(src *source.Source) token.Span { return spanIn(src, e.Pos, e.EndPos) }

// AliasValue is the target of a field's `as <ident-or-string>` clause.
type AliasValue struct {
	Pos, EndPos lexer.Position

	Ident *string `(  @Ident`
	Str   *string `  | @String )`
}

// Text returns the alias's literal text regardless of which form matched.
func (a *AliasValue) Text() string {
	if a == nil {
		return ""
	}

	if a.Ident != nil {
		return *a.Ident
	}

	if a.Str != nil {
		return *a.Str
	}

	return ""
}

// FieldMember is a `name: type` member, possibly optional and possibly
// aliased for serialization.
type FieldMember struct {
	Pos, EndPos lexer.Position

	Doc      []string    `@DocLine*`
	Name     string      `@Ident`
	Optional bool        `@"?"?`
	Type     TypeExpr    `":" @@`
	Alias    *AliasValue `("as" @@)? ";"`
}

func (f *FieldMember) Span(src *source.Source) token.Span { return spanIn(src, f.Pos, f.EndPos) }

// CodeMember is a `context {{ ... }}` free-form code block, preserved
// verbatim and consulted only by a matching back-end.
type CodeMember struct {
	Pos, EndPos lexer.Position

	Context string `@Ident`
	Body    string `"{{" @CodeBody "}}"`
}

// Member is the tagged variant of spec.md §3's AST Member: exactly
// one of Field, Option, Code or Inner is non-nil.
type Member struct {
	Pos, EndPos lexer.Position

	Field  *FieldMember `(   @@`
	Option *FileOption  ` | @@`
	Code   *CodeMember  ` | @@`
	Inner  *Declaration ` | @@ )`
}

func (m *Member) Span(src *source.Source) token.Span { return spanIn(src, m.Pos, m.EndPos) }
