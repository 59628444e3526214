// Package semck compares two linked IR snapshots of the same package
// and reports whether the newer one is a backward-compatible evolution
// of the older one: every declaration is classified as added, removed,
// or modified, and modified declarations are run through a binding
// rule table (field removal/addition, type changes, enum ordinal and
// variant changes, interface sub-type and discriminator changes,
// service endpoint changes).
package semck

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/reprotoc/reproto/ir"
	"github.com/reprotoc/reproto/token"
)

// ignoreSpans excludes token.Span (which carries a *source.Source) from
// structural diffing: spans record where a declaration was written, not
// what it means, and source.Source holds unexported fields cmp can't walk.
var ignoreSpans = cmpopts.IgnoreTypes(token.Span{})

// Classification is the kind of change a declaration underwent
// between two IR snapshots of the same package.
type Classification string

const (
	Added    Classification = "added"
	Removed  Classification = "removed"
	Modified Classification = "modified"
)

// Change records one declaration's classification.
type Change struct {
	Name           Classification
	DeclarationKey string
}

// Violation is one binding-compatibility rule failure, per spec §4.5:
// a rule id, a message, and a copy of the offending declaration from
// each snapshot, whose Span field locates it (a zero Declaration on the
// side where it doesn't exist, e.g. NewSpan for a removal).
type Violation struct {
	Rule    string
	Message string
	OldSpan ir.Declaration
	NewSpan ir.Declaration
}

// Report is the checker's full output: the classified diff plus the
// violation list. Compatible iff Violations is empty, per spec §4.5.
type Report struct {
	Added      []Change
	Removed    []Change
	Modified   []Change
	Violations []Violation
}

// Compatible reports whether new is a backward-compatible evolution of old.
func (r *Report) Compatible() bool {
	return len(r.Violations) == 0
}

// Compare enumerates old and new's declarations by fully qualified
// name, classifies each as added/removed/modified, and runs the rule
// table of spec §4.5 over every matched (modified-candidate) pair.
func Compare(old, new *ir.Package) *Report {
	r := &Report{}

	for _, name := range old.Order {
		oldDecl := old.Declarations[name]

		newDecl, ok := new.Declarations[name]
		if !ok {
			r.Removed = append(r.Removed, Change{Name: Removed, DeclarationKey: name})
			r.Violations = append(r.Violations, Violation{
				Rule:    "declaration-removed",
				Message: fmt.Sprintf("declaration %q was removed", name),
				OldSpan: *oldDecl,
			})

			continue
		}

		if oldDecl.Kind != newDecl.Kind {
			r.Modified = append(r.Modified, Change{Name: Modified, DeclarationKey: name})
			r.Violations = append(r.Violations, Violation{
				Rule:    "declaration-kind-change",
				Message: fmt.Sprintf("%s changed kind from %s to %s", name, oldDecl.Kind, newDecl.Kind),
				OldSpan: *oldDecl,
				NewSpan: *newDecl,
			})

			continue
		}

		violations := compareDeclaration(name, oldDecl, newDecl)
		if len(violations) > 0 || !cmp.Equal(oldDecl, newDecl, ignoreSpans) {
			r.Modified = append(r.Modified, Change{Name: Modified, DeclarationKey: name})
		}

		r.Violations = append(r.Violations, violations...)
	}

	for _, name := range new.Order {
		if _, ok := old.Declarations[name]; !ok {
			r.Added = append(r.Added, Change{Name: Added, DeclarationKey: name})
		}
	}

	return r
}

func compareDeclaration(name string, o, n *ir.Declaration) []Violation {
	switch o.Kind {
	case ir.KindType, ir.KindTuple:
		return compareFields(name, o.Fields, n.Fields, *o, *n)
	case ir.KindInterface:
		return compareInterfaces(name, o.Interface, n.Interface, *o, *n)
	case ir.KindEnum:
		return compareEnums(name, o.Enum, n.Enum, *o, *n)
	case ir.KindService:
		return compareServices(name, o.Service, n.Service, *o, *n)
	default:
		return nil
	}
}

func fieldsByName(fields []*ir.Field) map[string]*ir.Field {
	m := make(map[string]*ir.Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}

	return m
}

func compareFields(scope string, oldFields, newFields []*ir.Field, oldDecl, newDecl ir.Declaration) []Violation {
	var out []Violation

	oldByName := fieldsByName(oldFields)
	newByName := fieldsByName(newFields)

	for name, of := range oldByName {
		nf, ok := newByName[name]
		if !ok {
			rule := "field-removed"
			out = append(out, Violation{
				Rule:    rule,
				Message: fmt.Sprintf("%s: field %q was removed", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})

			continue
		}

		if !cmp.Equal(of.Type, nf.Type) {
			out = append(out, Violation{
				Rule:    "field-type-change",
				Message: fmt.Sprintf("%s: field %q changed type", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}

		if of.SerializationName != nf.SerializationName {
			out = append(out, Violation{
				Rule:    "field-serialization-name-change",
				Message: fmt.Sprintf("%s: field %q changed serialization identifier from %q to %q", scope, name, of.SerializationName, nf.SerializationName),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}

		if of.Required && !nf.Required {
			// compatible: required -> optional
		} else if !of.Required && nf.Required {
			out = append(out, Violation{
				Rule:    "field-optional-to-required",
				Message: fmt.Sprintf("%s: field %q toggled optional to required", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}
	}

	for name, nf := range newByName {
		if _, ok := oldByName[name]; ok {
			continue
		}

		if nf.Required {
			out = append(out, Violation{
				Rule:    "field-added-required",
				Message: fmt.Sprintf("%s: required field %q was added", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}
		// adding an optional field is compatible: no violation.
	}

	return out
}

func compareEnums(scope string, o, n *ir.Enum, oldDecl, newDecl ir.Declaration) []Violation {
	var out []Violation

	oldByName := map[string]ir.EnumVariant{}
	for _, v := range o.Variants {
		oldByName[v.Name] = v
	}

	newByName := map[string]ir.EnumVariant{}
	for _, v := range n.Variants {
		newByName[v.Name] = v
	}

	for name, ov := range oldByName {
		nv, ok := newByName[name]
		if !ok {
			out = append(out, Violation{
				Rule:    "enum-variant-removed",
				Message: fmt.Sprintf("%s: variant %q was removed or renamed", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})

			continue
		}

		if !cmp.Equal(ov.Ordinal, nv.Ordinal) {
			out = append(out, Violation{
				Rule:    "enum-ordinal-change",
				Message: fmt.Sprintf("%s: variant %q changed ordinal", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}
	}

	// Adding a variant is compatible: no violation for names only in newByName.

	return out
}

func compareInterfaces(scope string, o, n *ir.Interface, oldDecl, newDecl ir.Declaration) []Violation {
	var out []Violation

	out = append(out, compareFields(scope, o.BaseMembers, n.BaseMembers, oldDecl, newDecl)...)

	oldByName := map[string]*ir.SubType{}
	for _, s := range o.SubTypes {
		oldByName[s.Name] = s
	}

	newByName := map[string]*ir.SubType{}
	for _, s := range n.SubTypes {
		newByName[s.Name] = s
	}

	for name, os := range oldByName {
		ns, ok := newByName[name]
		if !ok {
			out = append(out, Violation{
				Rule:    "sub-type-removed",
				Message: fmt.Sprintf("%s: sub-type %q was removed", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})

			continue
		}

		if !equalDiscriminator(os.Discriminator, ns.Discriminator) {
			out = append(out, Violation{
				Rule:    "sub-type-discriminator-change",
				Message: fmt.Sprintf("%s: sub-type %q changed discriminator value", scope, name),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}

		out = append(out, compareFields(scope+"."+name, os.Members, ns.Members, oldDecl, newDecl)...)
	}

	return out
}

func equalDiscriminator(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func compareServices(scope string, o, n *ir.Service, oldDecl, newDecl ir.Declaration) []Violation {
	var out []Violation

	oldByKey := map[string]*ir.Endpoint{}
	for _, ep := range o.Endpoints {
		oldByKey[endpointKey(ep)] = ep
	}

	newByKey := map[string]*ir.Endpoint{}
	for _, ep := range n.Endpoints {
		newByKey[endpointKey(ep)] = ep
	}

	for key, oep := range oldByKey {
		nep, ok := newByKey[key]
		if !ok {
			out = append(out, Violation{
				Rule:    "endpoint-removed",
				Message: fmt.Sprintf("%s: endpoint %q was removed or renamed", scope, key),
				OldSpan: oldDecl, NewSpan: newDecl,
			})

			continue
		}

		if !channelEqual(oep.Request, nep.Request) || !channelEqual(oep.Response, nep.Response) {
			out = append(out, Violation{
				Rule:    "endpoint-channel-change",
				Message: fmt.Sprintf("%s: endpoint %q changed request or response shape", scope, key),
				OldSpan: oldDecl, NewSpan: newDecl,
			})
		}
	}

	return out
}

func endpointKey(ep *ir.Endpoint) string {
	alias := ""
	if ep.Alias != nil {
		alias = *ep.Alias
	}

	return ep.Identifier + "\x00" + alias
}

func channelEqual(a, b *ir.Channel) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Streaming == b.Streaming && cmp.Equal(a.Type, b.Type)
}
