package token

// Kind identifies the lexical class of a Token.
type Kind string

const (
	EOF     Kind = "EOF"
	Illegal Kind = "Illegal"

	// Identifiers. TypeIdent starts with an uppercase letter (a
	// declaration or sub-type name); Ident starts lowercase or '_'.
	TypeIdent Kind = "TypeIdent"
	Ident     Kind = "Ident"

	// Literals.
	Number       Kind = "Number"
	String       Kind = "String"
	VersionReq   Kind = "VersionReq"
	DocLine      Kind = "DocLine"
	ModuleDoc    Kind = "ModuleDoc"
	CodeContext  Kind = "CodeContext"
	CodeBody     Kind = "CodeBody"

	// Keywords.
	KwEnum      Kind = "enum"
	KwType      Kind = "type"
	KwInterface Kind = "interface"
	KwTuple     Kind = "tuple"
	KwService   Kind = "service"
	KwUse       Kind = "use"
	KwAs        Kind = "as"
	KwOption    Kind = "option"
	KwReturns   Kind = "returns"
	KwAccepts   Kind = "accepts"
	KwStream    Kind = "stream"
	KwMatch     Kind = "match"

	// Punctuation.
	LBrace    Kind = "{"
	RBrace    Kind = "}"
	LBrack    Kind = "["
	RBrack    Kind = "]"
	LParen    Kind = "("
	RParen    Kind = ")"
	LAngle    Kind = "<"
	RAngle    Kind = ">"
	Colon     Kind = ":"
	Semi      Kind = ";"
	Comma     Kind = ","
	Dot       Kind = "."
	DoubleColon Kind = "::"
	Assign    Kind = "="
	At        Kind = "@"
	Question  Kind = "?"
	Arrow     Kind = "->"
	CodeOpen  Kind = "{{"
	CodeClose Kind = "}}"
)

var keywords = map[string]Kind{
	"enum":      KwEnum,
	"type":      KwType,
	"interface": KwInterface,
	"tuple":     KwTuple,
	"service":   KwService,
	"use":       KwUse,
	"as":        KwAs,
	"option":    KwOption,
	"returns":   KwReturns,
	"accepts":   KwAccepts,
	"stream":    KwStream,
	"match":     KwMatch,
}

// Token is a single lexed unit: its Kind, the Span it occupies, and
// its literal text (decoded for strings, verbatim for identifiers).
type Token struct {
	Kind Kind
	Span Span
	Text string
}
