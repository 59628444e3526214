// Copyright 2021 Torben Schinke
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package token

import (
	"strconv"

	"github.com/reprotoc/reproto/source"
)

// Node is implemented by every AST and IR node and grants access to
// the Span it occupies in its source.
type Node interface {
	Span() Span
}

// A Pos describes a resolved position within a file: the byte offset
// plus the one-based line/column it corresponds to.
type Pos struct {
	// File is the display name of the owning source.
	File string
	// Line is the one-based line number.
	Line int
	// Col is the one-based column number.
	Col int
	// Offset is the zero-based byte offset from the start of the source.
	Offset int
}

// String returns the content in the "file:line:col" format.
func (p Pos) String() string {
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// A Span is the triple (source-object, start-offset, end-offset) that
// every AST and IR node carries. The invariant 0 <= Start.Offset <=
// End.Offset <= len(source) is established by the lexer and preserved
// by every later stage, since nodes are never mutated after construction.
type Span struct {
	Source *source.Source
	Start  Pos
	End    Pos
}

func (s Span) String() string {
	return s.Start.String()
}

// NewSpan builds a Span from a begin/end pair of positions on the same source.
func NewSpan(src *source.Source, begin, end Pos) Span {
	return Span{Source: src, Start: begin, End: end}
}

type defaultNode struct {
	span Span
}

func (d defaultNode) Span() Span {
	return d.span
}

// NewNode wraps a Span as a Node, used where a standalone node is
// needed for a diagnostic that does not correspond to a grammar rule.
func NewNode(span Span) Node {
	return defaultNode{span}
}
