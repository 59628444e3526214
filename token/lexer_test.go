package token

import (
	"testing"

	"github.com/reprotoc/reproto/source"
)

func allTokens(t *testing.T, text string) ([]Token, error) {
	t.Helper()

	l, err := NewLexer(source.FromBytes("test.reproto", []byte(text)))
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}

	var toks []Token

	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}

		if tok.Kind == EOF {
			return toks, nil
		}

		toks = append(toks, tok)
	}
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}

	return out
}

func TestLexerKeywordsAndIdents(t *testing.T) {
	toks, err := allTokens(t, "type Foo { bar: string; }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Kind{KwType, TypeIdent, LBrace, Ident, Colon, Ident, Semi, RBrace}

	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain", `"hello"`, "hello"},
		{"newline", `"a\nb"`, "a\nb"},
		{"quote", `"a\"b"`, `a"b`},
		{"unicode", "\"\\u0041\"", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := allTokens(t, tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(toks) != 1 || toks[0].Kind != String {
				t.Fatalf("expected single String token, got %v", toks)
			}

			if toks[0].Text != tt.want {
				t.Fatalf("got %q, want %q", toks[0].Text, tt.want)
			}
		})
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	_, err := allTokens(t, `"abc`)
	if err == nil {
		t.Fatalf("expected error for unterminated string")
	}
}

func TestLexerVersionRequirement(t *testing.T) {
	toks, err := allTokens(t, "use foo@^1.2.3;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Kind{KwUse, Ident, VersionReq, Semi}
	got := kinds(toks)

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if toks[2].Text != "^1.2.3" {
		t.Fatalf("version requirement text = %q", toks[2].Text)
	}
}

func TestLexerDocComments(t *testing.T) {
	toks, err := allTokens(t, "//! module doc\n/// field doc\ntype T {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Kind != ModuleDoc || toks[0].Text != "module doc" {
		t.Fatalf("got %+v", toks[0])
	}

	if toks[1].Kind != DocLine || toks[1].Text != "field doc" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexerCodeBlock(t *testing.T) {
	toks, err := allTokens(t, `java {{ public int x; }}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Kind{Ident, CodeOpen, CodeBody, CodeClose}
	got := kinds(toks)

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexerPlainCommentsElided(t *testing.T) {
	toks, err := allTokens(t, "type T {} // trailing comment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Kind{KwType, TypeIdent, LBrace, RBrace}
	got := kinds(toks)

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"123", "123"},
		{"-5", "-5"},
		{"3.14", "3.14"},
	}

	for _, tt := range tests {
		toks, err := allTokens(t, tt.text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(toks) != 1 || toks[0].Kind != Number || toks[0].Text != tt.want {
			t.Fatalf("text=%q got %+v", tt.text, toks)
		}
	}
}

func TestLexerSpanOffsets(t *testing.T) {
	toks, err := allTokens(t, "type T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if toks[0].Span.Start.Offset != 0 {
		t.Fatalf("expected start offset 0, got %d", toks[0].Span.Start.Offset)
	}

	if toks[0].Span.End.Offset != 4 {
		t.Fatalf("expected end offset 4, got %d", toks[0].Span.End.Offset)
	}
}
