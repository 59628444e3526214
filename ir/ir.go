// Package ir is reproto's intermediate representation: the fully
// linked, invariant-checked form spec.md §3 describes, built in one
// pass from a package's AST files and an env.Environment (spec.md
// §4.4). IR nodes are constructed once by Build and never mutated
// afterward, per spec.md §3's "Lifecycle" invariant.
package ir

import (
	"github.com/reprotoc/reproto/semver"
	"github.com/reprotoc/reproto/token"
)

// DeclKind distinguishes the five declaration shapes spec.md §3 names.
type DeclKind string

const (
	KindType      DeclKind = "type"
	KindTuple     DeclKind = "tuple"
	KindInterface DeclKind = "interface"
	KindEnum      DeclKind = "enum"
	KindService   DeclKind = "service"
)

// TypeRefKind distinguishes a resolved type reference's shape.
type TypeRefKind string

const (
	RefPrimitive TypeRefKind = "primitive"
	RefArray     TypeRefKind = "array"
	RefMap       TypeRefKind = "map"
	RefNamed     TypeRefKind = "named"
)

// TypeRef is a resolved type reference. Named references are indices
// (package, declaration path) into the environment rather than direct
// pointers, per spec.md §9's "cyclic IR references" design note: A can
// reference B which references A without an ownership cycle, and the
// environment stays trivially serializable.
type TypeRef struct {
	Kind TypeRefKind

	Primitive string // set when Kind == RefPrimitive
	Bits      int    // optional signed/unsigned width; 0 = unspecified

	Elem *TypeRef // set when Kind == RefArray

	Key   *TypeRef // set when Kind == RefMap
	Value *TypeRef

	Package  semver.Package // set when Kind == RefNamed
	DeclPath []string       // set when Kind == RefNamed; dotted nested path
}

// Field is a resolved record/tuple/interface field.
type Field struct {
	Name              string
	SerializationName string
	Type              TypeRef
	Required          bool
	Span              token.Span
}

// OrdinalType is the wire type fixing an Enum's variant ordinals.
type OrdinalType string

const (
	OrdinalIdentifier OrdinalType = "" // discriminator is the variant name itself
	OrdinalString     OrdinalType = "string"
	OrdinalUnsigned   OrdinalType = "unsigned"
	OrdinalSigned     OrdinalType = "signed"
)

// EnumVariant is one member of an Enum, with its resolved ordinal
// value: a string, uint64, int64, or (OrdinalIdentifier) the variant's
// own Name, matching whichever OrdinalType the parent Enum declares.
type EnumVariant struct {
	Name    string
	Ordinal interface{}
	Span    token.Span
}

// Enum is the lowered form of an EnumDecl.
type Enum struct {
	OrdinalType OrdinalType
	Variants    []EnumVariant
}

// SubType is one sub-type of an Interface: its own member set already
// merged with the interface's base members, plus its discriminator
// value when `as "literal"` was given.
type SubType struct {
	Name          string
	Discriminator *string
	Members       []*Field
	Span          token.Span
}

// Interface is the lowered form of an InterfaceDecl.
type Interface struct {
	BaseMembers        []*Field
	SubTypes           []*SubType
	DiscriminatorField *string
}

// Channel is a resolved endpoint request/response slot.
type Channel struct {
	Streaming bool
	Type      TypeRef
}

// Endpoint is the lowered form of a ServiceEndpoint.
type Endpoint struct {
	Identifier string
	Alias      *string
	Request    *Channel
	Response   *Channel
	Options    map[string]string
	Span       token.Span
}

// Service is the lowered form of a ServiceDecl.
type Service struct {
	Endpoints []*Endpoint
}

// Declaration is one lowered top-level or flattened-nested
// declaration. Name is fully qualified within the package: nested
// declarations prepend their parent's path, dot-joined, per spec.md
// §9's "nested declarations flattened at IR time".
type Declaration struct {
	Name string
	Kind DeclKind
	Span token.Span

	// Fields holds the member set for Type and Tuple declarations.
	Fields []*Field

	Enum      *Enum
	Interface *Interface
	Service   *Service
}

// Package is the frozen collection spec.md §3 describes: a package
// name, its selected version, and its declarations keyed by fully
// qualified name. Order preserves first-seen insertion order for
// deterministic iteration (diagnostics, semck diffing).
type Package struct {
	Name         semver.Package
	Version      semver.Version
	Declarations map[string]*Declaration
	Order        []string
}

// Lookup returns the declaration at path (a dotted nested path already
// joined, e.g. "Animal.Dog"), or nil if absent.
func (p *Package) Lookup(path string) *Declaration {
	return p.Declarations[path]
}
