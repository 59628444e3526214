package manifest

import (
	"strings"
	"testing"
)

func TestLoadBasic(t *testing.T) {
	doc := `
language: java
paths: [a/b, c/d]
output: gen
packages:
  io.reproto.common: ^1.2.3
  io.reproto.other: 1.*
repository:
  index: https://example.com/index
  objects: https://example.com/objects
`

	m, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m.Language != LangJava {
		t.Fatalf("language = %q", m.Language)
	}

	if len(m.Paths) != 2 || m.Paths[0] != "a/b" || m.Paths[1] != "c/d" {
		t.Fatalf("paths = %v", m.Paths)
	}

	if m.Output != "gen" {
		t.Fatalf("output = %q", m.Output)
	}

	if len(m.Packages) != 2 {
		t.Fatalf("packages = %v", m.Packages)
	}

	if _, ok := m.Packages["io.reproto.common"]; !ok {
		t.Fatalf("missing package io.reproto.common")
	}

	if m.Repository.Index != "https://example.com/index" {
		t.Fatalf("repository index = %q", m.Repository.Index)
	}
}

func TestLoadUnknownLanguage(t *testing.T) {
	_, err := Load(strings.NewReader("language: cobol\n"))
	if err == nil {
		t.Fatalf("expected error for unknown language")
	}
}

func TestLoadMalformedLine(t *testing.T) {
	_, err := Load(strings.NewReader("not-a-kv-line\n"))
	if err == nil {
		t.Fatalf("expected error for malformed line")
	}
}

func TestLoadBadPackageRequirement(t *testing.T) {
	doc := "packages:\n  io.reproto.common: not-a-requirement\n"

	_, err := Load(strings.NewReader(doc))
	if err == nil {
		t.Fatalf("expected error for bad requirement")
	}
}
