package convert

import (
	"sort"
	"strings"

	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/scope"
	"sv2v/internal/traverse"
)

// stateKind is the per-symbol status tracked during elaboration; an
// identState pairs it with the data each status carries.
type stateKind uint8

const (
	// stateAvailable marks a candidate exposed by wildcard imports.
	stateAvailable stateKind = iota
	// stateImported marks a symbol bound to a specific root package.
	stateImported
	// stateDeclared marks a locally defined symbol.
	stateDeclared
)

type identState struct {
	kind  stateKind
	pkgs  []string // candidate root packages, sorted (Available)
	pkg   string   // root package (Imported)
	atTop bool     // declared in the top frame (Declared)
}

// mangledName flattens a package member into the single Verilog
// namespace. Root-package symbols keep their names.
func mangledName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "_" + name
}

type packageEntry struct {
	name     string
	items    []ast.PackageItem
	resolved bool
	exports  map[string]string // symbol -> root package
	body     []ast.PackageItem
}

type classEntry struct {
	params []ast.Decl
	items  []ast.PackageItem
}

type elaborator struct {
	packages  map[string]*packageEntry
	classes   map[string]*classEntry
	pkgOrder  []string // named packages in file order
	synOrder  []string // synthetic packages in creation order
	rootItems []ast.PackageItem
	rootBody  []ast.PackageItem
	visiting  []string
}

// Elaborate resolves package import/export graphs, specializes
// parameterized classes into synthetic packages, flattens package-scoped
// identifiers by mangling, and injects needed items into the parts that
// reference them.
func Elaborate(descs []ast.Description) ([]ast.Description, error) {
	el := &elaborator{
		packages: make(map[string]*packageEntry),
		classes:  make(map[string]*classEntry),
	}
	el.collect(descs)

	// lazy resolution with an eager sweep so unreferenced packages still
	// elaborate (and still fail on their own errors)
	for _, name := range el.pkgOrder {
		if _, err := el.findPackage(name); err != nil {
			return nil, err
		}
	}

	var err error
	_, el.rootBody, err = el.processItems("", "", el.rootItems)
	if err != nil {
		return nil, err
	}

	parts := make(map[int]*ast.Part)
	for i, desc := range descs {
		part, ok := desc.(*ast.Part)
		if !ok {
			continue
		}
		processed, err := el.processPart(part)
		if err != nil {
			return nil, err
		}
		parts[i] = processed
	}

	return el.assemble(descs, parts)
}

// collect registers packages and classes and gathers stray top-level
// items into the synthetic root package.
func (el *elaborator) collect(descs []ast.Description) {
	for _, desc := range descs {
		switch desc := desc.(type) {
		case *ast.PackageDecl:
			if _, ok := el.packages[desc.Name]; !ok {
				el.packages[desc.Name] = &packageEntry{name: desc.Name, items: desc.Items}
				el.pkgOrder = append(el.pkgOrder, desc.Name)
			}
		case *ast.ClassDecl:
			if _, ok := el.classes[desc.Name]; !ok {
				el.classes[desc.Name] = &classEntry{params: desc.Params, items: desc.Items}
			}
		case *ast.TopItem:
			el.rootItems = append(el.rootItems, desc.Item)
		}
	}
}

// findPackage elaborates a package on first reference, caching the
// result. Reentry through the visiting stack is a dependency loop.
func (el *elaborator) findPackage(name string) (*packageEntry, error) {
	entry, ok := el.packages[name]
	if !ok {
		return nil, diag.New(diag.ElabMissingPackage, "could not find package %s", name)
	}
	if entry.resolved {
		return entry, nil
	}
	for _, visiting := range el.visiting {
		if visiting == name {
			cycle := append(append([]string{}, el.visiting...), name)
			return nil, diag.New(diag.ElabDependencyLoop,
				"package dependency loop: %s", strings.Join(cycle, " -> "))
		}
	}
	el.visiting = append(el.visiting, name)
	exports, body, err := el.processItems(name, name, entry.items)
	el.visiting = el.visiting[:len(el.visiting)-1]
	if err != nil {
		return nil, err
	}
	entry.resolved = true
	entry.exports = exports
	entry.body = body
	return entry, nil
}

// itemsCtx is the state of one processItems invocation; elaboration is
// reentrant through imports, so nothing per-run lives on the elaborator.
type itemsCtx struct {
	el      *elaborator
	top     string // enclosing top-level name, for messages
	pkg     string // owning package name; "" at module or root scope
	sc      *scope.Scopes[identState]
	exports []*ast.Export
	err     error
}

func (ctx *itemsCtx) fail(d *diag.Diagnostic) {
	if ctx.err == nil {
		ctx.err = d
	}
}

// processItems reorders, scopes, renames, and rewrites the items of one
// package, the root package, or (through processPart) a part.
func (el *elaborator) processItems(top, pkg string, items []ast.PackageItem) (map[string]string, []ast.PackageItem, error) {
	ctx := &itemsCtx{el: el, top: top, pkg: pkg, sc: scope.New[identState]()}
	ctx.sc.Enter(pkg)

	reordered := reorderItems(items)
	out, err := scope.WalkItemsOpen(ctx.sc, reordered, ctx.visitor())
	if err == nil {
		err = ctx.err
	}
	if err != nil {
		ctx.sc.Exit()
		return nil, nil, err
	}

	exports, err := ctx.resolveExports()
	ctx.sc.Exit()
	if err != nil {
		return nil, nil, err
	}
	return exports, out, nil
}

func (ctx *itemsCtx) visitor() scope.Visitor[identState] {
	return scope.Visitor[identState]{
		PackageItem: ctx.packageItem,
		Decl:        ctx.decl,
		Expr:        ctx.expr,
		Type:        ctx.typ,
		LHS:         ctx.lhs,
	}
}

func (ctx *itemsCtx) packageItem(sc *scope.Scopes[identState], item ast.PackageItem) (ast.PackageItem, error) {
	switch item := item.(type) {
	case *ast.Import:
		if err := ctx.handleImport(item); err != nil {
			return nil, err
		}
		return &ast.CommentDecl{Comment: item.String()}, nil
	case *ast.Export:
		if ctx.pkg == "" {
			return nil, diag.New(diag.ElabBadExport,
				"export of %s::%s outside of a package (in %s)",
				displayName(item.Package), displayName(item.Ident), displayName(ctx.top))
		}
		ctx.exports = append(ctx.exports, item)
		return &ast.CommentDecl{Comment: item.String()}, nil
	case *ast.Typedef:
		newName, t, err := ctx.declare(item.Name, item.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Typedef{Type: t, Name: newName}, nil
	case *ast.Function:
		newName, _, err := ctx.declare(item.Name, nil)
		if err != nil {
			return nil, err
		}
		out := *item
		out.Name = newName
		return &out, nil
	case *ast.Task:
		newName, _, err := ctx.declare(item.Name, nil)
		if err != nil {
			return nil, err
		}
		out := *item
		out.Name = newName
		return &out, nil
	default:
		return item, nil
	}
}

func (ctx *itemsCtx) decl(sc *scope.Scopes[identState], d ast.Decl) (ast.Decl, error) {
	switch d := d.(type) {
	case *ast.Variable:
		newName, t, err := ctx.declare(d.Name, d.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Variable{Dir: d.Dir, Type: t, Name: newName, Dims: d.Dims, Init: d.Init}, nil
	case *ast.Param:
		newName, t, err := ctx.declare(d.Name, d.Type)
		if err != nil {
			return nil, err
		}
		return &ast.Param{Scope: d.Scope, Type: t, Name: newName, Value: d.Value}, nil
	case *ast.ParamType:
		newName, _, err := ctx.declare(d.Name, nil)
		if err != nil {
			return nil, err
		}
		return &ast.ParamType{Scope: d.Scope, Name: newName, Type: d.Type}, nil
	default:
		return d, nil
	}
}

// declare records a declaration in the current frame, renaming it to
// P_x at package top level. Enumerators inside the declared type are
// declared and renamed alongside their owner.
func (ctx *itemsCtx) declare(name string, t ast.Type) (string, ast.Type, error) {
	newName, err := ctx.declareName(name)
	if err != nil {
		return "", nil, err
	}
	if t != nil {
		t = traverse.Types(t, func(x ast.Type) ast.Type {
			enum, ok := x.(*ast.Enum)
			if !ok {
				return x
			}
			items := make([]ast.EnumItem, len(enum.Items))
			for i, item := range enum.Items {
				itemName, derr := ctx.declareName(item.Name)
				if derr != nil {
					if err == nil {
						err = derr
					}
					itemName = item.Name
				}
				items[i] = ast.EnumItem{Name: itemName, Value: item.Value}
			}
			return &ast.Enum{Base: enum.Base, Items: items, Ranges: enum.Ranges}
		})
		if err != nil {
			return "", nil, err
		}
	}
	return newName, t, nil
}

// declareName implements the declaration side of the identifier state
// machine: a declaration may not collide with an explicit import, and it
// is renamed only at the top level of a named package.
func (ctx *itemsCtx) declareName(name string) (string, error) {
	if prior, ok := ctx.sc.LookupLocal(name); ok && prior.Meta.kind == stateImported {
		return "", diag.New(diag.ElabNameConflict,
			"declaration of %s in %s conflicts with import of %s::%s",
			name, displayName(ctx.top), prior.Meta.pkg, name)
	}
	atTop := ctx.sc.AtTopFrame()
	ctx.sc.Insert(name, identState{kind: stateDeclared, atTop: atTop})
	if ctx.pkg != "" && !ctx.sc.WithinProcedure() && atTop {
		return mangledName(ctx.pkg, name), nil
	}
	return name, nil
}

func (ctx *itemsCtx) handleImport(item *ast.Import) error {
	target, err := ctx.el.findPackage(item.Package)
	if err != nil {
		return err
	}
	if item.Ident == "" {
		// wildcard: expose every export as a candidate
		for _, sym := range sortedKeys(target.exports) {
			root := target.exports[sym]
			prior, ok := ctx.sc.LookupLocal(sym)
			if !ok || prior.Meta.kind == stateAvailable {
				pkgs := insertSorted(prior.Meta.pkgs, root)
				ctx.sc.Insert(sym, identState{kind: stateAvailable, pkgs: pkgs})
			}
			// Imported and Declared entries are left untouched
		}
		return nil
	}

	root, ok := target.exports[item.Ident]
	if !ok {
		return diag.New(diag.ElabMissingSymbol,
			"package %s does not export %s", item.Package, item.Ident)
	}
	if prior, ok := ctx.sc.LookupLocal(item.Ident); ok {
		switch prior.Meta.kind {
		case stateDeclared:
			return diag.New(diag.ElabNameConflict,
				"import of %s::%s conflicts with declaration of %s in %s",
				item.Package, item.Ident, item.Ident, displayName(ctx.top))
		case stateImported:
			if prior.Meta.pkg != root {
				return diag.New(diag.ElabNameConflict,
					"conflicting imports of %s: %s vs %s",
					item.Ident, prior.Meta.pkg, root)
			}
			return nil
		}
	}
	ctx.sc.Insert(item.Ident, identState{kind: stateImported, pkg: root})
	return nil
}

// expr rewrites identifier references using the current scope state.
func (ctx *itemsCtx) expr(sc *scope.Scopes[identState], e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.Ident:
		return &ast.Ident{Name: ctx.resolveIdent(e.Name)}
	case *ast.PSIdent:
		name, err := ctx.el.resolvePSIdent(e.Package, e.Name)
		if err != nil {
			ctx.fail(err.(*diag.Diagnostic))
			return e
		}
		return &ast.Ident{Name: name}
	case *ast.CSIdent:
		name, err := ctx.el.resolveCSIdent(e.Class, e.Bindings, ctx.scopeKeys(e.Bindings), e.Name)
		if err != nil {
			ctx.fail(err.(*diag.Diagnostic))
			return e
		}
		return &ast.Ident{Name: name}
	default:
		return e
	}
}

func (ctx *itemsCtx) lhs(sc *scope.Scopes[identState], l ast.LHS) ast.LHS {
	if ident, ok := l.(*ast.LHSIdent); ok {
		return &ast.LHSIdent{Name: ctx.resolveIdent(ident.Name)}
	}
	return l
}

func (ctx *itemsCtx) typ(sc *scope.Scopes[identState], t ast.Type) ast.Type {
	switch t := t.(type) {
	case *ast.Alias:
		return &ast.Alias{Name: ctx.resolveIdent(t.Name), Ranges: t.Ranges}
	case *ast.PSAlias:
		name, err := ctx.el.resolvePSIdent(t.Package, t.Name)
		if err != nil {
			ctx.fail(err.(*diag.Diagnostic))
			return t
		}
		return &ast.Alias{Name: name, Ranges: t.Ranges}
	case *ast.CSAlias:
		name, err := ctx.el.resolveCSIdent(t.Class, t.Bindings, ctx.scopeKeys(t.Bindings), t.Name)
		if err != nil {
			ctx.fail(err.(*diag.Diagnostic))
			return t
		}
		return &ast.Alias{Name: name, Ranges: t.Ranges}
	case *ast.TypeOf:
		if converted, ok := ExprToType(t.Expr); ok {
			return converted
		}
		return t
	default:
		return t
	}
}

// resolveIdent maps a plain reference through the identifier state
// machine: top-level package declarations mangle, explicit imports bind,
// and a wildcard candidate upgrades to an import on first use.
func (ctx *itemsCtx) resolveIdent(name string) string {
	entry, ok := ctx.sc.Lookup(name)
	if !ok {
		return name
	}
	switch entry.Meta.kind {
	case stateDeclared:
		if entry.Meta.atTop && ctx.pkg != "" {
			return mangledName(ctx.pkg, name)
		}
		return name
	case stateImported:
		return mangledName(entry.Meta.pkg, name)
	default: // stateAvailable
		pkgs := entry.Meta.pkgs
		if len(pkgs) > 1 {
			ctx.fail(diag.New(diag.ElabAmbiguousReference,
				"ambiguous reference to %s in %s; candidates: %s",
				name, displayName(ctx.top), strings.Join(pkgs, ", ")))
			return name
		}
		root := pkgs[0]
		ctx.sc.Replace(name, identState{kind: stateImported, pkg: root})
		return mangledName(root, name)
	}
}

// scopeKeys hashes the access paths of locally resolvable identifiers
// inside class parameter bindings; it separates specializations whose
// bindings name different local definitions while deduplicating ones
// that resolve identically.
func (ctx *itemsCtx) scopeKeys(bindings []ast.ParamBinding) []string {
	keys := make(map[string]bool)
	visit := func(name string) {
		if entry, ok := ctx.sc.Lookup(name); ok {
			keys[entry.ExtraKey] = true
		}
	}
	for _, b := range bindings {
		if b.Value.Expr != nil {
			traverse.IdentsInExpr(b.Value.Expr, visit)
		}
		if b.Value.Type != nil {
			traverse.IdentsInType(b.Value.Type, visit)
		}
	}
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// resolveExports validates the collected export items against the final
// scope and builds the package's export map.
func (ctx *itemsCtx) resolveExports() (map[string]string, error) {
	mapping := ctx.sc.Mapping()
	exports := make(map[string]string)

	// every local declaration is exported under this package's root
	for name, st := range mapping {
		if st.kind == stateDeclared && st.atTop {
			exports[name] = ctx.pkg
		}
	}

	for _, export := range ctx.exports {
		switch {
		case export.Package == "" && export.Ident == "":
			// export *::* — everything imported is re-exported
			for name, st := range mapping {
				if st.kind == stateImported {
					exports[name] = st.pkg
				}
			}
		case export.Ident == "":
			// export p::* — re-export what we imported from p
			target, err := ctx.el.findPackage(export.Package)
			if err != nil {
				return nil, err
			}
			for _, sym := range sortedKeys(target.exports) {
				root := target.exports[sym]
				if st, ok := mapping[sym]; ok && st.kind == stateImported && st.pkg == root {
					exports[sym] = root
				}
				// mismatches drop silently
			}
		default:
			root, err := ctx.el.resolveRootPackage(export.Package, export.Ident)
			if err != nil {
				return nil, err
			}
			st, ok := mapping[export.Ident]
			if !ok || st.kind != stateImported || st.pkg != root {
				return nil, diag.New(diag.ElabMissingSymbol,
					"export of %s::%s, but %s was not imported from %s",
					export.Package, export.Ident, export.Ident, export.Package)
			}
			exports[export.Ident] = root
		}
	}
	return exports, nil
}

// resolveRootPackage follows a symbol through a package's export map to
// the package that actually declares it.
func (el *elaborator) resolveRootPackage(pkg, name string) (string, error) {
	target, err := el.findPackage(pkg)
	if err != nil {
		return "", err
	}
	root, ok := target.exports[name]
	if !ok {
		return "", diag.New(diag.ElabMissingSymbol,
			"package %s does not export %s", pkg, name)
	}
	return root, nil
}

// resolvePSIdent resolves P::x; class names without parameters behave as
// implicit specializations.
func (el *elaborator) resolvePSIdent(pkg, name string) (string, error) {
	if class, ok := el.classes[pkg]; ok {
		if len(class.params) > 0 {
			return "", diag.New(diag.ElabClassNeedsBindings,
				"reference to parameterized class %s requires #() bindings", pkg)
		}
		return el.resolveCSIdent(pkg, nil, nil, name)
	}
	root, err := el.resolveRootPackage(pkg, name)
	if err != nil {
		return "", err
	}
	return mangledName(root, name), nil
}

func displayName(name string) string {
	if name == "" {
		return "*top*"
	}
	return name
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func insertSorted(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	out := append(append([]string{}, list...), s)
	sort.Strings(out)
	return out
}
