// Package manifest loads reproto's package manifest: the set of
// recognized options listed in spec.md §6 (language, search paths,
// output directory, package requirements, optional repository
// endpoints). No example repo in the pack owns a config format this
// close to reproto's own manifest shape, so the loader is hand-rolled
// in the low-ceremony, no-external-serializer style the teacher itself
// favors: scan `key: value` lines with bufio.Scanner.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/reprotoc/reproto/semver"
)

// Language selects the back-end a Manifest targets.
type Language string

const (
	LangDoc    Language = "doc"
	LangJava   Language = "java"
	LangJS     Language = "js"
	LangJSON   Language = "json"
	LangPython Language = "python"
	LangRust   Language = "rust"
)

var knownLanguages = map[Language]bool{
	LangDoc: true, LangJava: true, LangJS: true,
	LangJSON: true, LangPython: true, LangRust: true,
}

// Repository holds optional remote storage endpoints, consumed only
// by an external collaborator (spec §6's HTTP package repository
// client is out of scope for this core).
type Repository struct {
	Index   string
	Objects string
}

// Manifest is the configuration document spec.md §6 describes.
type Manifest struct {
	Language   Language
	Paths      []string
	Output     string
	Packages   map[string]semver.Requirement
	Repository Repository
}

// New returns an empty Manifest with its Packages map initialized.
func New() *Manifest {
	return &Manifest{Packages: map[string]semver.Requirement{}}
}

// Load parses a manifest document from r. The format is a flat set of
// `key: value` lines; `packages` and `repository` are two-level
// sections introduced by a bare `packages:` / `repository:` line
// followed by indented `sub-key: value` lines, mirroring the
// indentation-sensitive but otherwise line-oriented documents spec.md
// §6 sketches.
func Load(r io.Reader) (*Manifest, error) {
	m := New()

	scanner := bufio.NewScanner(r)

	var section string

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		raw := scanner.Text()
		trimmed := strings.TrimRight(raw, " \t")

		if strings.TrimSpace(trimmed) == "" || strings.HasPrefix(strings.TrimSpace(trimmed), "#") {
			continue
		}

		indented := strings.HasPrefix(raw, "  ") || strings.HasPrefix(raw, "\t")

		key, value, ok := splitKV(trimmed)
		if !ok {
			return nil, fmt.Errorf("manifest line %d: malformed entry %q", lineNo, raw)
		}

		if !indented {
			section = ""
		}

		switch {
		case !indented && value == "" && (key == "packages" || key == "repository"):
			section = key
		case section == "packages" && indented:
			req, err := semver.ParseRequirement(value)
			if err != nil {
				return nil, fmt.Errorf("manifest line %d: package %q: %w", lineNo, key, err)
			}

			m.Packages[key] = req
		case section == "repository" && indented:
			switch key {
			case "index":
				m.Repository.Index = value
			case "objects":
				m.Repository.Objects = value
			default:
				return nil, fmt.Errorf("manifest line %d: unknown repository key %q", lineNo, key)
			}
		case key == "language":
			lang := Language(value)
			if !knownLanguages[lang] {
				return nil, fmt.Errorf("manifest line %d: unknown language %q", lineNo, value)
			}

			m.Language = lang
		case key == "paths":
			m.Paths = splitList(value)
		case key == "output":
			m.Output = value
		default:
			return nil, fmt.Errorf("manifest line %d: unknown key %q", lineNo, key)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

func splitKV(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)

	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return "", "", false
	}

	key = strings.TrimSpace(trimmed[:idx])
	value = strings.TrimSpace(trimmed[idx+1:])

	if key == "" {
		return "", "", false
	}

	return key, value, true
}

func splitList(value string) []string {
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")

	var out []string

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}
