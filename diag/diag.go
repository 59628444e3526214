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

// Package diag implements the compiler's single error-model sum type
// and its human-readable diagnostic renderer: a Kind taxonomy paired
// with a PosError-style span-labeled message and a caret-underline
// explainer.
package diag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reprotoc/reproto/token"
)

// Kind enumerates the error taxonomy surfaced by the front-end.
type Kind string

const (
	Io                   Kind = "Io"
	LexError             Kind = "LexError"
	ParseError           Kind = "ParseError"
	DuplicateDeclaration Kind = "DuplicateDeclaration"
	UnknownName          Kind = "UnknownName"
	UnknownPackage       Kind = "UnknownPackage"
	UnsatisfiedVersion   Kind = "UnsatisfiedVersion"
	VersionConflict      Kind = "VersionConflict"
	ConflictingAlias     Kind = "ConflictingAlias"
	InvalidOrdinal       Kind = "InvalidOrdinal"
	SemckViolation       Kind = "SemckViolation"
	Bug                  Kind = "Bug"
)

// A Label pairs a message with the span it applies to. Diagnostics
// carry zero or more labels in insertion order.
type Label struct {
	Span    token.Span
	Message string
}

// Error is the single sum type for every failure the front-end can
// produce. It always carries a Kind and a primary message; secondary
// labels and a wrapped cause are optional.
type Error struct {
	Kind    Kind
	Message string
	Labels  []Label
	Cause   error
}

// New creates an Error whose first label is (span, message).
func New(kind Kind, span token.Span, message string, extra ...Label) *Error {
	labels := append([]Label{{Span: span, Message: message}}, extra...)

	return &Error{Kind: kind, Message: message, Labels: labels}
}

// Newf is New with fmt.Sprintf-style formatting of the message.
func Newf(kind Kind, span token.Span, format string, args ...interface{}) *Error {
	return New(kind, span, fmt.Sprintf(format, args...))
}

// WithCause attaches a wrapped underlying error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause

	return e
}

// WithLabel appends an additional labeled span and returns the receiver.
func (e *Error) WithLabel(span token.Span, message string) *Error {
	e.Labels = append(e.Labels, Label{Span: span, Message: message})

	return e
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}

	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) firstLabel() Label {
	if len(e.Labels) > 0 {
		return e.Labels[0]
	}

	return Label{}
}

// Explain renders err as a multi-line, human-readable diagnostic: the
// kind and primary message, then each labeled span rendered against
// its source with a caret underline, in insertion order.
func Explain(err error) string {
	var de *Error
	if !errors.As(err, &de) {
		return err.Error()
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "error[%s]: %s\n", de.Kind, de.Message)

	indent := 0

	for _, l := range de.Labels {
		if n := len(strconv.Itoa(l.Span.Start.Line)); n > indent {
			indent = n
		}
	}

	for i, l := range de.Labels {
		if i == 0 || l.Span.Start.File != de.Labels[i-1].Span.Start.File {
			sb.WriteString(l.Span.Start.String())
			sb.WriteString("\n")
		}

		line := sourceLine(l.Span)

		fmt.Fprintf(sb, "%*s |\n", indent, "")
		fmt.Fprintf(sb, "%*d |%s\n", indent, l.Span.Start.Line, line)
		fmt.Fprintf(sb, "%*s |", indent, "")

		width := l.Span.End.Col - l.Span.Start.Col
		if width <= 0 {
			width = 1
		}

		fmt.Fprintf(sb, "%*s%s %s\n", l.Span.Start.Col-1, "", strings.Repeat("^", width), l.Message)
	}

	return sb.String()
}

func sourceLine(span token.Span) string {
	if span.Source == nil {
		return ""
	}

	data, err := span.Source.Bytes()
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	idx := span.Start.Line - 1

	if idx < 0 || idx >= len(lines) {
		return ""
	}

	return lines[idx]
}
