package ast

import (
	"io"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/reprotoc/reproto/source"
	"github.com/reprotoc/reproto/token"
)

// tokenKinds lists every token.Kind the hand-rolled lexer can produce,
// in a fixed order used to mint participle lexer.TokenType values.
var tokenKinds = []token.Kind{
	token.TypeIdent, token.Ident, token.Number, token.String, token.VersionReq,
	token.DocLine, token.ModuleDoc, token.CodeBody,
	token.KwEnum, token.KwType, token.KwInterface, token.KwTuple, token.KwService,
	token.KwUse, token.KwAs, token.KwOption, token.KwReturns, token.KwAccepts,
	token.KwStream, token.KwMatch,
	token.LBrace, token.RBrace, token.LBrack, token.RBrack, token.LParen, token.RParen,
	token.LAngle, token.RAngle, token.Colon, token.Semi, token.Comma, token.Dot,
	token.DoubleColon, token.Assign, token.At, token.Question, token.Arrow,
	token.CodeOpen, token.CodeClose,
}

var symbolsByKind = func() map[token.Kind]lexer.TokenType {
	m := make(map[token.Kind]lexer.TokenType, len(tokenKinds))
	for i, k := range tokenKinds {
		m[k] = lexer.TokenType(i + 1)
	}

	return m
}()

// definition adapts the hand-rolled token.Lexer to participle's
// lexer.Definition interface, the same seam golangee/tadl's parser
// plugs a stateful.Lexer into via participle.Lexer(...). Here the
// "stateful machine" behind the seam is reproto's own raw-capture-
// aware scanner instead of a regex rule table.
type definition struct{}

// Definition is the participle lexer.Definition for reproto sources.
var Definition lexer.Definition = definition{}

func (definition) Symbols() map[string]lexer.TokenType {
	out := make(map[string]lexer.TokenType, len(symbolsByKind)+1)
	for k, t := range symbolsByKind {
		out[string(k)] = t
	}

	out["EOF"] = lexer.EOF

	return out
}

func (definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	lx, err := token.NewLexer(source.FromBytes(filename, data))
	if err != nil {
		return nil, err
	}

	return &lexAdapter{lx: lx}, nil
}

type lexAdapter struct {
	lx *token.Lexer
}

func (a *lexAdapter) Next() (lexer.Token, error) {
	tok, err := a.lx.Next()
	if err != nil {
		return lexer.Token{}, err
	}

	pos := lexer.Position{
		Filename: tok.Span.Start.File,
		Offset:   tok.Span.Start.Offset,
		Line:     tok.Span.Start.Line,
		Column:   tok.Span.Start.Col,
	}

	if tok.Kind == token.EOF {
		return lexer.Token{Type: lexer.EOF, Pos: pos}, nil
	}

	typ, ok := symbolsByKind[tok.Kind]
	if !ok {
		typ = lexer.EOF
	}

	value := tok.Text
	if value == "" {
		switch tok.Kind {
		case token.String, token.DocLine, token.ModuleDoc, token.CodeBody:
		default:
			// Punctuation tokens carry no text; participle matches grammar
			// literals such as "{" or "::" against the token value.
			value = string(tok.Kind)
		}
	}

	return lexer.Token{Type: typ, Value: value, Pos: pos}, nil
}

func wrapPos(p lexer.Position) token.Pos {
	return token.Pos{File: p.Filename, Line: p.Line, Col: p.Column, Offset: p.Offset}
}

// spanIn builds a token.Span tying a pair of participle positions to
// the source.Source the enclosing File was parsed from.
func spanIn(src *source.Source, begin, end lexer.Position) token.Span {
	return token.NewSpan(src, wrapPos(begin), wrapPos(end))
}
