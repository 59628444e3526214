package ast

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/reprotoc/reproto/source"
	"github.com/reprotoc/reproto/token"
)

// PrimitiveType is one of the built-in scalar/collection-leaf names.
// signed/unsigned optionally carry a bit width, e.g. signed(32).
type PrimitiveType struct {
	Pos, EndPos lexer.Position

	Name string `@("any" | "float" | "double" | "signed" | "unsigned" | "boolean" | "string" | "bytes" | "datetime")`
	Bits *int   `("(" @Number ")")?`
}

// ArrayType is `[ elem ]`.
type ArrayType struct {
	Pos, EndPos lexer.Position

	Elem *TypeExpr `"[" @@ "]"`
}

// MapType is `{ key : value }`.
type MapType struct {
	Pos, EndPos lexer.Position

	Key   *TypeExpr `"{" @@`
	Value *TypeExpr `":" @@ "}"`
}

// NameType is a reference to a declared type, optionally qualified by
// a use-alias (Prefix) and optionally rooted at the file scope
// (Absolute), with dotted Parts addressing nested declarations.
type NameType struct {
	Pos, EndPos lexer.Position

	Absolute bool     `@"::"?`
	Prefix   *string  `(@Ident "::")?`
	Parts    []string `@TypeIdent ("." @TypeIdent)*`
}

func (n *NameType) Span(src *source.Source) token.Span { return spanIn(src, n.Pos, n.EndPos) }

// TypeExpr is the tagged variant of spec.md §3's type expression:
// exactly one of Primitive, Array, Map or Name is non-nil.
type TypeExpr struct {
	Pos, EndPos lexer.Position

	Primitive *PrimitiveType `(   @@`
	Array     *ArrayType     ` | @@`
	Map       *MapType       ` | @@`
	Name      *NameType      ` | @@ )`
}

func (t *TypeExpr) Span(src *source.Source) token.Span { return spanIn(src, t.Pos, t.EndPos) }
