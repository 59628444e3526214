package ir

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/reprotoc/reproto/ast"
	"github.com/reprotoc/reproto/diag"
	"github.com/reprotoc/reproto/env"
	"github.com/reprotoc/reproto/semver"
	"github.com/reprotoc/reproto/source"
	"github.com/reprotoc/reproto/token"
)

type builder struct {
	env         *env.Environment
	pkg         semver.Package
	fieldNaming Naming
	epNaming    Naming
	result      *Package
	errs        []*diag.Error
}

// Build lowers every top-level declaration of pkg (as loaded into e)
// into its IR form: inlining nested declarations, resolving type
// references against the environment, applying field naming, and
// validating local well-formedness (spec.md §4.4). The endpoint_naming
// option is read, but no endpoint identifier is derived from it; the
// lowered Endpoint keeps its declared name. Builder errors
// are collected best-effort; a non-empty error slice means the package
// failed to build, but Build still returns whatever could be lowered.
func Build(e *env.Environment, pkg semver.Package) (*Package, []*diag.Error) {
	version, ok := e.Version(pkg)
	if !ok {
		return nil, []*diag.Error{diag.New(diag.Bug, token.Span{}, "package "+pkg.String()+" was never loaded")}
	}

	b := &builder{
		env:         e,
		pkg:         pkg,
		fieldNaming: LowerCamel,
		epNaming:    LowerCamel,
		result: &Package{
			Name:         pkg,
			Version:      version,
			Declarations: map[string]*Declaration{},
		},
	}

	files := e.Files(pkg)
	for _, f := range files {
		for _, opt := range f.Options {
			b.applyFileOption(opt)
		}
	}

	decls := e.Declarations(pkg)

	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		decl := decls[name]

		f, ok := b.env.DeclOrigin(pkg, name)
		if !ok {
			continue
		}

		b.buildDeclaration(decl, name, f.Source)
	}

	return b.result, b.errs
}

func (b *builder) applyFileOption(opt *ast.FileOption) {
	if opt.Value == nil || opt.Value.Bare == nil {
		return
	}

	naming, ok := parseNaming(*opt.Value.Bare)
	if !ok {
		return
	}

	switch opt.Name {
	case "field_naming":
		b.fieldNaming = naming
	case "endpoint_naming":
		b.epNaming = naming
	}
}

func parseNaming(s string) (Naming, bool) {
	switch Naming(s) {
	case LowerCamel, UpperCamel, LowerSnake, UpperSnake:
		return Naming(s), true
	default:
		return "", false
	}
}

func (b *builder) addErr(err *diag.Error) {
	b.errs = append(b.errs, err)
}

// register inserts decl under fqName, rejecting a fully qualified name
// already bound. A nested declaration whose short name repeats that of
// a declaration at another nesting level has a distinct fully qualified
// name and is not rejected.
func (b *builder) register(fqName string, decl *Declaration) bool {
	if _, exists := b.result.Declarations[fqName]; exists {
		b.addErr(diag.New(diag.DuplicateDeclaration, decl.Span,
			fmt.Sprintf("declaration %q is already defined in package %s", fqName, b.pkg)))

		return false
	}

	b.result.Declarations[fqName] = decl
	b.result.Order = append(b.result.Order, fqName)

	return true
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

func (b *builder) buildDeclaration(d *ast.Declaration, fqName string, src *source.Source) {
	switch {
	case d.Type != nil:
		b.buildRecord(d, fqName, src, KindType)
	case d.Tuple != nil:
		b.buildRecord(d, fqName, src, KindTuple)
	case d.Interface != nil:
		b.buildInterface(d, fqName, src)
	case d.Enum != nil:
		b.buildEnum(d, fqName, src)
	case d.Service != nil:
		b.buildService(d, fqName, src)
	}
}

func (b *builder) buildRecord(d *ast.Declaration, fqName string, src *source.Source, kind DeclKind) {
	fields, inner := b.splitMembers(d.Members())

	lowered := b.buildFields(fields, fqName, src)

	decl := &Declaration{
		Name:   fqName,
		Kind:   kind,
		Span:   d.Span(src),
		Fields: lowered,
	}

	if !b.register(fqName, decl) {
		return
	}

	for _, in := range inner {
		b.buildDeclaration(in, joinPath(fqName, in.Name()), src)
	}
}

// splitMembers separates a member list into its Field members and its
// nested (InnerDecl) declarations; Option and Code members carry no
// IR-level shape per spec.md §3 and are not lowered further here.
func (b *builder) splitMembers(members []*ast.Member) ([]*ast.FieldMember, []*ast.Declaration) {
	var (
		fields []*ast.FieldMember
		inner  []*ast.Declaration
	)

	for _, m := range members {
		switch {
		case m.Field != nil:
			fields = append(fields, m.Field)
		case m.Inner != nil:
			inner = append(inner, m.Inner)
		}
	}

	return fields, inner
}

func (b *builder) buildFields(fields []*ast.FieldMember, scopeName string, src *source.Source) []*Field {
	var out []*Field

	seen := map[string]*Field{}

	for _, fm := range fields {
		typ, err := b.resolveType(src, &fm.Type)
		if err != nil {
			b.addErr(err)
			continue
		}

		serName := fm.Alias.Text()
		if serName == "" {
			serName = Apply(b.fieldNaming, fm.Name)
		}

		lowered := &Field{
			Name:              fm.Name,
			SerializationName: serName,
			Type:              typ,
			Required:          !fm.Optional,
			Span:              fm.Span(src),
		}

		if prev, exists := seen[serName]; exists {
			b.addErr(diag.New(diag.ConflictingAlias, lowered.Span,
				fmt.Sprintf("field %q and %q in %s both serialize as %q", prev.Name, fm.Name, scopeName, serName),
				diag.Label{Span: prev.Span, Message: "first used here"}))

			continue
		}

		seen[serName] = lowered
		out = append(out, lowered)
	}

	return out
}

func (b *builder) buildInterface(d *ast.Declaration, fqName string, src *source.Source) {
	idecl := d.Interface
	fields, inner := b.splitMembers(idecl.Members)

	base := b.buildFields(fields, fqName, src)

	var (
		subTypes           []*SubType
		discriminatorField *string
	)

	for _, in := range inner {
		ownFields, nestedInner := b.splitMembers(in.Members())
		own := b.buildFields(ownFields, joinPath(fqName, in.Name()), src)

		merged := make([]*Field, 0, len(base)+len(own))
		merged = append(merged, base...)
		merged = append(merged, own...)

		var disc *string
		if alias := in.DiscriminatorAlias(); alias != nil {
			text := alias.Text()
			disc = &text
		}

		sub := &SubType{
			Name:          in.Name(),
			Discriminator: disc,
			Members:       merged,
			Span:          in.Span(src),
		}

		subTypes = append(subTypes, sub)

		subFQ := joinPath(fqName, in.Name())

		subDecl := &Declaration{
			Name:   subFQ,
			Kind:   KindType,
			Span:   in.Span(src),
			Fields: merged,
		}

		if b.register(subFQ, subDecl) {
			for _, nested := range nestedInner {
				b.buildDeclaration(nested, joinPath(subFQ, nested.Name()), src)
			}
		}
	}

	decl := &Declaration{
		Name: fqName,
		Kind: KindInterface,
		Span: d.Span(src),
		Interface: &Interface{
			BaseMembers:        base,
			SubTypes:           subTypes,
			DiscriminatorField: discriminatorField,
		},
	}

	b.register(fqName, decl)
}

func (b *builder) buildEnum(d *ast.Declaration, fqName string, src *source.Source) {
	ed := d.Enum

	ordinalType := OrdinalIdentifier
	if ed.OrdinalType != nil {
		ordinalType = OrdinalType(*ed.OrdinalType)
	}

	var variants []EnumVariant

	seenOrdinals := map[interface{}]bool{}

	for i, v := range ed.Variants {
		ordinal, err := b.enumOrdinal(v, i, ordinalType, src)
		if err != nil {
			b.addErr(err)
			continue
		}

		if seenOrdinals[ordinal] {
			b.addErr(diag.New(diag.InvalidOrdinal, v.Span(src),
				fmt.Sprintf("duplicate ordinal %v for variant %q in enum %s", ordinal, v.Name, fqName)))

			continue
		}

		seenOrdinals[ordinal] = true

		variants = append(variants, EnumVariant{Name: v.Name, Ordinal: ordinal, Span: v.Span(src)})
	}

	decl := &Declaration{
		Name: fqName,
		Kind: KindEnum,
		Span: d.Span(src),
		Enum: &Enum{OrdinalType: ordinalType, Variants: variants},
	}

	b.register(fqName, decl)
}

func (b *builder) enumOrdinal(v *ast.EnumVariant, index int, ordinalType OrdinalType, src *source.Source) (interface{}, *diag.Error) {
	if v.Ordinal == nil {
		switch ordinalType {
		case OrdinalUnsigned:
			return uint64(index), nil
		case OrdinalSigned:
			return int64(index), nil
		default:
			return v.Name, nil
		}
	}

	switch ordinalType {
	case OrdinalString:
		if v.Ordinal.Str == nil {
			return nil, diag.New(diag.InvalidOrdinal, v.Span(src),
				fmt.Sprintf("variant %q must have a string ordinal", v.Name))
		}

		return *v.Ordinal.Str, nil
	case OrdinalUnsigned:
		if v.Ordinal.Num == nil {
			return nil, diag.New(diag.InvalidOrdinal, v.Span(src),
				fmt.Sprintf("variant %q must have a numeric ordinal", v.Name))
		}

		n, err := strconv.ParseUint(*v.Ordinal.Num, 10, 64)
		if err != nil {
			return nil, diag.New(diag.InvalidOrdinal, v.Span(src), err.Error())
		}

		return n, nil
	case OrdinalSigned:
		if v.Ordinal.Num == nil {
			return nil, diag.New(diag.InvalidOrdinal, v.Span(src),
				fmt.Sprintf("variant %q must have a numeric ordinal", v.Name))
		}

		n, err := strconv.ParseInt(*v.Ordinal.Num, 10, 64)
		if err != nil {
			return nil, diag.New(diag.InvalidOrdinal, v.Span(src), err.Error())
		}

		return n, nil
	default: // identifier discriminator
		if v.Ordinal.Str != nil {
			return *v.Ordinal.Str, nil
		}

		if v.Ordinal.Bare != nil {
			return *v.Ordinal.Bare, nil
		}

		return v.Name, nil
	}
}

func (b *builder) buildService(d *ast.Declaration, fqName string, src *source.Source) {
	sd := d.Service

	var endpoints []*Endpoint

	seen := map[string]bool{}

	for _, ep := range sd.Endpoints {
		alias := ""
		if ep.Alias != nil {
			alias = *ep.Alias
		}

		key := ep.Name + "\x00" + alias
		if seen[key] {
			b.addErr(diag.New(diag.DuplicateDeclaration, ep.Span(src),
				fmt.Sprintf("endpoint %q (alias %q) already declared in service %s", ep.Name, alias, fqName)))

			continue
		}

		seen[key] = true

		lowered := &Endpoint{
			Identifier: ep.Name,
			Alias:      ep.Alias,
			Options:    map[string]string{},
			Span:       ep.Span(src),
		}

		if ep.Request != nil {
			typ, err := b.resolveType(src, &ep.Request.Type)
			if err != nil {
				b.addErr(err)
			} else {
				lowered.Request = &Channel{Streaming: ep.Request.Streaming, Type: typ}
			}
		}

		if ep.Response != nil {
			typ, err := b.resolveType(src, &ep.Response.Type)
			if err != nil {
				b.addErr(err)
			} else {
				lowered.Response = &Channel{Streaming: ep.Response.Streaming, Type: typ}
			}
		}

		for _, opt := range ep.Options {
			if opt.Value != nil && opt.Value.Bare != nil {
				lowered.Options[opt.Name] = *opt.Value.Bare
			} else if opt.Value != nil && opt.Value.Str != nil {
				lowered.Options[opt.Name] = *opt.Value.Str
			}
		}

		endpoints = append(endpoints, lowered)
	}

	decl := &Declaration{
		Name:    fqName,
		Kind:    KindService,
		Span:    d.Span(src),
		Service: &Service{Endpoints: endpoints},
	}

	b.register(fqName, decl)
}

func (b *builder) resolveType(src *source.Source, t *ast.TypeExpr) (TypeRef, *diag.Error) {
	switch {
	case t.Primitive != nil:
		bits := 0
		if t.Primitive.Bits != nil {
			bits = *t.Primitive.Bits
		}

		return TypeRef{Kind: RefPrimitive, Primitive: t.Primitive.Name, Bits: bits}, nil
	case t.Array != nil:
		elem, err := b.resolveType(src, t.Array.Elem)
		if err != nil {
			return TypeRef{}, err
		}

		return TypeRef{Kind: RefArray, Elem: &elem}, nil
	case t.Map != nil:
		key, err := b.resolveType(src, t.Map.Key)
		if err != nil {
			return TypeRef{}, err
		}

		value, err := b.resolveType(src, t.Map.Value)
		if err != nil {
			return TypeRef{}, err
		}

		return TypeRef{Kind: RefMap, Key: &key, Value: &value}, nil
	case t.Name != nil:
		return b.resolveName(src, t.Name)
	default:
		return TypeRef{}, diag.New(diag.Bug, t.Span(src), "empty type expression")
	}
}

func (b *builder) resolveName(src *source.Source, n *ast.NameType) (TypeRef, *diag.Error) {
	targetPkg := b.pkg

	if n.Prefix != nil {
		aliasPkg, _, ok := b.env.Resolve(b.pkg, *n.Prefix)
		if !ok {
			return TypeRef{}, diag.New(diag.UnknownName, n.Span(src),
				fmt.Sprintf("unknown use-alias %q", *n.Prefix))
		}

		targetPkg = aliasPkg
	}

	decls := b.env.Declarations(targetPkg)
	if decls == nil {
		return TypeRef{}, diag.New(diag.UnknownPackage, n.Span(src),
			fmt.Sprintf("package %q is not loaded", targetPkg))
	}

	if len(n.Parts) == 0 {
		return TypeRef{}, diag.New(diag.UnknownName, n.Span(src), "empty type name")
	}

	cur, ok := decls[n.Parts[0]]
	if !ok {
		return TypeRef{}, diag.New(diag.UnknownName, n.Span(src),
			fmt.Sprintf("unknown declaration %q in package %s", n.Parts[0], targetPkg))
	}

	for _, part := range n.Parts[1:] {
		next := findNestedDecl(cur, part)
		if next == nil {
			return TypeRef{}, diag.New(diag.UnknownName, n.Span(src),
				fmt.Sprintf("unknown nested declaration %q in %s", part, cur.Name()))
		}

		cur = next
	}

	declPath := make([]string, len(n.Parts))
	copy(declPath, n.Parts)

	return TypeRef{Kind: RefNamed, Package: targetPkg, DeclPath: declPath}, nil
}

func findNestedDecl(parent *ast.Declaration, name string) *ast.Declaration {
	for _, m := range parent.Members() {
		if m.Inner != nil && m.Inner.Name() == name {
			return m.Inner
		}
	}

	return nil
}
