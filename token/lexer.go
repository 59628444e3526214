package token

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/reprotoc/reproto/source"
)

// runeWithPos is a single buffered rune plus the position it was read at.
type runeWithPos struct {
	r   rune
	pos Pos
}

// Lexer converts a .reproto source into a stream of Tokens. It reads
// one rune at a time from a buffered reader, the same technique the
// markup compiler's lexer uses, adapted to reproto's keyword/punctuation
// set instead of dyml's G1/G2 markup grammar.
type Lexer struct {
	src *source.Source
	r   *bufio.Reader
	buf []runeWithPos // lookahead buffer filled by peekAt; bufPos indexes the next rune to consume
	bufPos int
	pos Pos

	// inCode is true while the lexer is inside a {{ ... }} code block,
	// where everything up to the matching }} is raw text.
	inCode bool
}

// NewLexer creates a Lexer ready to tokenize src.
func NewLexer(src *source.Source) (*Lexer, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}

	l := &Lexer{
		src: src,
		r:   bufio.NewReader(strings.NewReader(string(data))),
	}
	l.pos = Pos{File: src.Name(), Line: 1, Col: 1}

	return l, nil
}

// Next returns the next token in the stream. At end of input it
// returns a Token of Kind EOF and a nil error.
func (l *Lexer) Next() (Token, error) {
	if l.inCode {
		return l.lexCodeBody()
	}

	l.skipTrivia()

	begin := l.currentPos()

	r, ok, err := l.peek()
	if err != nil {
		return Token{}, err
	}

	if !ok {
		return Token{Kind: EOF, Span: l.span(begin)}, nil
	}

	switch {
	case r == '{':
		r2, ok2, _ := l.peekAt(1)
		if ok2 && r2 == '{' {
			l.advance()
			l.advance()
			l.inCode = true

			return Token{Kind: CodeOpen, Span: l.span(begin)}, nil
		}

		l.advance()

		return Token{Kind: LBrace, Span: l.span(begin)}, nil
	case r == '}':
		l.advance()

		return Token{Kind: RBrace, Span: l.span(begin)}, nil
	case r == '[':
		l.advance()

		return Token{Kind: LBrack, Span: l.span(begin)}, nil
	case r == ']':
		l.advance()

		return Token{Kind: RBrack, Span: l.span(begin)}, nil
	case r == '(':
		l.advance()

		return Token{Kind: LParen, Span: l.span(begin)}, nil
	case r == ')':
		l.advance()

		return Token{Kind: RParen, Span: l.span(begin)}, nil
	case r == '<':
		l.advance()

		return Token{Kind: LAngle, Span: l.span(begin)}, nil
	case r == '>':
		l.advance()

		return Token{Kind: RAngle, Span: l.span(begin)}, nil
	case r == ',':
		l.advance()

		return Token{Kind: Comma, Span: l.span(begin)}, nil
	case r == '.':
		l.advance()

		return Token{Kind: Dot, Span: l.span(begin)}, nil
	case r == '=':
		l.advance()

		return Token{Kind: Assign, Span: l.span(begin)}, nil
	case r == '?':
		l.advance()

		return Token{Kind: Question, Span: l.span(begin)}, nil
	case r == ';':
		l.advance()

		return Token{Kind: Semi, Span: l.span(begin)}, nil
	case r == ':':
		l.advance()

		r2, ok2, _ := l.peek()
		if ok2 && r2 == ':' {
			l.advance()

			return Token{Kind: DoubleColon, Span: l.span(begin)}, nil
		}

		return Token{Kind: Colon, Span: l.span(begin)}, nil
	case r == '-':
		return l.lexMinus(begin)
	case r == '@':
		l.advance()

		return l.lexVersionReq(begin)
	case r == '"':
		return l.lexString(begin, '"')
	case r == '`':
		return l.lexString(begin, '`')
	case r == '/':
		return l.lexSlash(begin)
	case unicode.IsDigit(r):
		return l.lexNumber(begin)
	case isIdentStart(r):
		return l.lexIdentOrKeyword(begin)
	default:
		l.advance()

		return Token{}, l.errorf(begin, "unexpected character %q", r)
	}
}

func (l *Lexer) lexMinus(begin Pos) (Token, error) {
	l.advance()

	r, ok, _ := l.peek()
	if ok && r == '>' {
		l.advance()

		return Token{Kind: Arrow, Span: l.span(begin)}, nil
	}

	if ok && unicode.IsDigit(r) {
		tok, err := l.lexNumber(begin)
		if err != nil {
			return Token{}, err
		}

		tok.Text = "-" + tok.Text

		return tok, nil
	}

	return Token{}, l.errorf(begin, "unexpected character '-'")
}

func (l *Lexer) lexSlash(begin Pos) (Token, error) {
	l.advance()

	r, ok, _ := l.peek()
	if !ok {
		return Token{}, l.errorf(begin, "unexpected end of input after '/'")
	}

	switch r {
	case '/':
		l.advance()

		return l.lexLineComment(begin)
	case '*':
		l.advance()

		return Token{}, l.lexBlockComment(begin)
	default:
		return Token{}, l.errorf(begin, "unexpected character '/'")
	}
}

// lexLineComment consumes `// text`, `/// doc text` and `//! module doc text`.
// Plain `//` comments are elided by returning the next real token instead.
func (l *Lexer) lexLineComment(begin Pos) (Token, error) {
	kind := Kind("")

	if r, ok, _ := l.peek(); ok && r == '/' {
		l.advance()
		kind = DocLine
	} else if r, ok, _ := l.peek(); ok && r == '!' {
		l.advance()
		kind = ModuleDoc
	}

	var sb strings.Builder

	for {
		r, ok, err := l.peek()
		if err != nil {
			return Token{}, err
		}

		if !ok || r == '\n' {
			break
		}

		sb.WriteRune(r)
		l.advance()
	}

	text := strings.TrimPrefix(sb.String(), " ")

	if kind == "" {
		// Plain comment: elided. Recurse for the next meaningful token.
		return l.Next()
	}

	return Token{Kind: kind, Span: l.span(begin), Text: text}, nil
}

func (l *Lexer) lexBlockComment(begin Pos) error {
	for {
		r, ok, err := l.peek()
		if err != nil {
			return err
		}

		if !ok {
			return l.errorf(begin, "unterminated block comment")
		}

		l.advance()

		if r == '*' {
			r2, ok2, _ := l.peek()
			if ok2 && r2 == '/' {
				l.advance()

				return nil
			}
		}
	}
}

// lexVersionReq scans the text following '@' as a single requirement
// literal: a run of characters from the version-requirement charset
// (digits, letters, and `. - _ + ! * ^ ~ < > = ,`). Structural
// validation of the requirement grammar is deferred to package semver.
func (l *Lexer) lexVersionReq(begin Pos) (Token, error) {
	var sb strings.Builder

	for {
		r, ok, err := l.peek()
		if err != nil {
			return Token{}, err
		}

		if !ok || !isVersionReqChar(r) {
			break
		}

		sb.WriteRune(r)
		l.advance()
	}

	if sb.Len() == 0 {
		return Token{}, l.errorf(begin, "expected version requirement after '@'")
	}

	return Token{Kind: VersionReq, Span: l.span(begin), Text: sb.String()}, nil
}

func isVersionReqChar(r rune) bool {
	switch r {
	case '.', '-', '_', '+', '!', '*', '^', '~', '<', '>', '=', ',':
		return true
	}

	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexString(begin Pos, delim rune) (Token, error) {
	l.advance() // opening delimiter

	var sb strings.Builder

	for {
		r, ok, err := l.peek()
		if err != nil {
			return Token{}, err
		}

		if !ok {
			return Token{}, l.errorf(begin, "unterminated string literal")
		}

		if r == delim {
			l.advance()

			break
		}

		if r == '\\' {
			l.advance()

			esc, ok2, err2 := l.peek()
			if err2 != nil {
				return Token{}, err2
			}

			if !ok2 {
				return Token{}, l.errorf(begin, "unterminated string literal")
			}

			decoded, err3 := l.decodeEscape(begin, esc)
			if err3 != nil {
				return Token{}, err3
			}

			sb.WriteRune(decoded)

			continue
		}

		sb.WriteRune(r)
		l.advance()
	}

	return Token{Kind: String, Span: l.span(begin), Text: sb.String()}, nil
}

func (l *Lexer) decodeEscape(begin Pos, esc rune) (rune, error) {
	switch esc {
	case 'n':
		l.advance()

		return '\n', nil
	case 'r':
		l.advance()

		return '\r', nil
	case 't':
		l.advance()

		return '\t', nil
	case '\\':
		l.advance()

		return '\\', nil
	case '"':
		l.advance()

		return '"', nil
	case '`':
		l.advance()

		return '`', nil
	case 'u':
		l.advance()

		var code rune

		for i := 0; i < 4; i++ {
			r, ok, err := l.peek()
			if err != nil {
				return 0, err
			}

			if !ok || !isHexDigit(r) {
				return 0, l.errorf(begin, "invalid \\u escape")
			}

			code = code*16 + hexVal(r)
			l.advance()
		}

		return code, nil
	default:
		return 0, l.errorf(begin, "invalid escape sequence '\\%c'", esc)
	}
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(r rune) rune {
	switch {
	case r >= '0' && r <= '9':
		return r - '0'
	case r >= 'a' && r <= 'f':
		return r - 'a' + 10
	default:
		return r - 'A' + 10
	}
}

func (l *Lexer) lexNumber(begin Pos) (Token, error) {
	var sb strings.Builder

	if r, ok, _ := l.peek(); ok && r == '-' {
		sb.WriteRune(r)
		l.advance()
	}

	for {
		r, ok, err := l.peek()
		if err != nil {
			return Token{}, err
		}

		if !ok || !unicode.IsDigit(r) {
			break
		}

		sb.WriteRune(r)
		l.advance()
	}

	if r, ok, _ := l.peek(); ok && r == '.' {
		if r2, ok2, _ := l.peekAt(1); ok2 && unicode.IsDigit(r2) {
			sb.WriteRune('.')
			l.advance()

			for {
				r, ok, err := l.peek()
				if err != nil {
					return Token{}, err
				}

				if !ok || !unicode.IsDigit(r) {
					break
				}

				sb.WriteRune(r)
				l.advance()
			}
		}
	}

	return Token{Kind: Number, Span: l.span(begin), Text: sb.String()}, nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *Lexer) lexIdentOrKeyword(begin Pos) (Token, error) {
	var sb strings.Builder

	for {
		r, ok, err := l.peek()
		if err != nil {
			return Token{}, err
		}

		if !ok || !isIdentPart(r) {
			break
		}

		sb.WriteRune(r)
		l.advance()
	}

	text := sb.String()

	if kw, ok := keywords[text]; ok {
		return Token{Kind: kw, Span: l.span(begin), Text: text}, nil
	}

	kind := Ident
	if r := []rune(text)[0]; unicode.IsUpper(r) {
		kind = TypeIdent
	}

	return Token{Kind: kind, Span: l.span(begin), Text: text}, nil
}

// lexCodeBody consumes raw text up to (but not including) the closing
// "}}" of a code block, mirroring the teacher's WantG1AttributeCharData
// raw-capture sub-mode.
func (l *Lexer) lexCodeBody() (Token, error) {
	begin := l.currentPos()

	var sb strings.Builder

	for {
		r, ok, err := l.peek()
		if err != nil {
			return Token{}, err
		}

		if !ok {
			return Token{}, l.errorf(begin, "unterminated code block")
		}

		if r == '}' {
			if r2, ok2, _ := l.peekAt(1); ok2 && r2 == '}' {
				if sb.Len() == 0 {
					l.advance()
					l.advance()
					l.inCode = false

					return Token{Kind: CodeClose, Span: l.span(begin)}, nil
				}

				return Token{Kind: CodeBody, Span: l.span(begin), Text: sb.String()}, nil
			}
		}

		sb.WriteRune(r)
		l.advance()
	}
}

func (l *Lexer) skipTrivia() {
	for {
		r, ok, _ := l.peek()
		if !ok {
			return
		}

		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			l.advance()

			continue
		}

		return
	}
}

// peekAt returns the rune at the given forward offset (0 = next rune to
// be consumed) without advancing the lexer.
func (l *Lexer) peekAt(offset int) (rune, bool, error) {
	for len(l.buf)-l.bufPos <= offset {
		r, size, err := l.r.ReadRune()
		if err != nil {
			if err == io.EOF {
				return 0, false, nil
			}

			return 0, false, fmt.Errorf("read rune: %w", err)
		}

		if r == unicode.ReplacementChar && size == 1 {
			return 0, false, l.errorf(l.pos, "invalid UTF-8 sequence")
		}

		l.buf = append(l.buf, runeWithPos{r: r, pos: l.pos})
		l.advancePosFor(r)
	}

	return l.buf[l.bufPos+offset].r, true, nil
}

func (l *Lexer) peek() (rune, bool, error) {
	return l.peekAt(0)
}

// advance consumes the rune previously returned by peek/peekAt(0).
func (l *Lexer) advance() {
	l.bufPos++
}

// advancePosFor tracks the *next* read position as runes are pulled
// from the underlying reader; peek()/advance() themselves only move
// bufPos, since position tracking happens once per rune at read time.
func (l *Lexer) advancePosFor(r rune) {
	if r == '\n' {
		l.pos.Line++
		l.pos.Col = 1
	} else {
		l.pos.Col++
	}

	l.pos.Offset += utf8.RuneLen(r)
}

func (l *Lexer) span(begin Pos) Span {
	return NewSpan(l.src, begin, l.currentPos())
}

// currentPos resolves the position of the rune about to be consumed,
// falling back to the stream's current tail position at EOF.
func (l *Lexer) currentPos() Pos {
	if l.bufPos < len(l.buf) {
		return l.buf[l.bufPos].pos
	}

	return l.pos
}

func (l *Lexer) errorf(begin Pos, format string, args ...interface{}) error {
	return &LexError{Span: NewSpan(l.src, begin, l.currentPos()), Message: fmt.Sprintf(format, args...)}
}

// LexError is returned for any condition the lexer detects: an
// unterminated string, an unterminated code block, an invalid escape,
// or non-UTF-8 input. It carries the byte span at which detection
// occurred.
type LexError struct {
	Span    Span
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
}
