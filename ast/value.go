package ast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// ArrayValue is a bracketed, comma-separated list of values.
type ArrayValue struct {
	Pos, EndPos lexer.Position

	Items []*Value `"[" (@@ ("," @@)*)? "]"`
}

// FieldInit is one `name: value` pair inside an InstanceValue.
type FieldInit struct {
	Pos, EndPos lexer.Position

	Name  string `@Ident ":"`
	Value *Value `@@`
}

// InstanceValue constructs a declared type by name with field
// initializers, e.g. `Point{x: 1, y: 2}`.
type InstanceValue struct {
	Pos, EndPos lexer.Position

	Name   NameType     `@@`
	Fields []*FieldInit `"{" (@@ ("," @@)*)? "}"`
}

// Value is the tagged variant of spec.md §3's Value: array, instance,
// constant reference (a bare qualified name), string/number/boolean
// literal, or a bare identifier. InstanceValue is tried before
// ConstRef since both start with a NameType; participle's lookahead
// backtracks into ConstRef when no trailing "{" follows.
type Value struct {
	Pos, EndPos lexer.Position

	Array    *ArrayValue    `(   @@`
	Instance *InstanceValue ` | @@`
	ConstRef *NameType      ` | @@`
	Str      *string        ` | @String`
	Num      *string        ` | @Number`
	Bool     *string        ` | @("true" | "false")`
	Bare     *string        ` | @Ident )`
}
