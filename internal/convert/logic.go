package convert

import (
	"sv2v/internal/ast"
	"sv2v/internal/diag"
	"sv2v/internal/scope"
)

// ConvertLogic reclassifies every logic declaration as either a
// procedural reg or a continuous wire, based on how the design drives
// it, and repairs the module items that the reclassification breaks:
// continuous assignments to regs and reg expressions bound to instance
// output ports.
func ConvertLogic(descs []ast.Description) ([]ast.Description, error) {
	dirs := collectPortDirs(descs)
	out := make([]ast.Description, len(descs))
	for i, desc := range descs {
		part, ok := desc.(*ast.Part)
		if !ok {
			out[i] = desc
			continue
		}
		converted, err := convertPartLogic(part, dirs)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// collectPortDirs maps each known part to the directions of its ports.
func collectPortDirs(descs []ast.Description) map[string]map[string]ast.Direction {
	dirs := make(map[string]map[string]ast.Direction)
	for _, desc := range descs {
		part, ok := desc.(*ast.Part)
		if !ok {
			continue
		}
		ports := make(map[string]ast.Direction)
		for _, item := range part.Items {
			if v, ok := item.(*ast.Variable); ok && v.Dir != ast.DirNone {
				ports[v.Name] = v.Dir
			}
		}
		dirs[part.Name] = ports
	}
	return dirs
}

func convertPartLogic(part *ast.Part, dirs map[string]map[string]ast.Direction) (*ast.Part, error) {
	written, err := observeWrites(part)
	if err != nil {
		return nil, err
	}
	lc := &logicConverter{written: written, dirs: dirs}
	return lc.rewrite(part)
}

// observeWrites is phase one: record the absolute path of every target of
// a procedural assignment, plus the memory argument of $readmemh and
// $readmemb. Declarations enter the scope so target paths resolve.
func observeWrites(part *ast.Part) (map[string]bool, error) {
	written := make(map[string]bool)
	sc := scope.New[ast.Type]()
	visitor := scope.Visitor[ast.Type]{
		Decl: func(sc *scope.Scopes[ast.Type], d ast.Decl) (ast.Decl, error) {
			insertDecl(sc, d)
			return d, nil
		},
		Stmt: func(sc *scope.Scopes[ast.Type], s ast.Stmt) (ast.Stmt, error) {
			switch s := s.(type) {
			case *ast.Asgn:
				markWritten(sc, s.LHS, written)
			case *ast.For:
				for _, a := range s.Inits {
					markWritten(sc, a.LHS, written)
				}
				for _, a := range s.Steps {
					markWritten(sc, a.LHS, written)
				}
			case *ast.Subroutine:
				if fn, ok := s.Fn.(*ast.Ident); ok &&
					(fn.Name == "$readmemh" || fn.Name == "$readmemb") &&
					len(s.Args) >= 2 {
					if entry, ok := sc.LookupExpr(s.Args[1]); ok {
						written[scope.AccessKey(entry.Accesses)] = true
					}
				}
			}
			return s, nil
		},
	}
	if _, err := scope.WalkPart(sc, part, visitor); err != nil {
		return nil, err
	}
	return written, nil
}

func insertDecl(sc *scope.Scopes[ast.Type], d ast.Decl) {
	switch d := d.(type) {
	case *ast.Variable:
		sc.Insert(d.Name, d.Type)
	case *ast.Param:
		sc.Insert(d.Name, d.Type)
	}
}

// markWritten records every identifier a target drives; concatenated
// targets drive each of their members.
func markWritten(sc *scope.Scopes[ast.Type], lhs ast.LHS, written map[string]bool) {
	if lhs == nil {
		return
	}
	if concat, ok := lhs.(*ast.LHSConcat); ok {
		for _, item := range concat.Items {
			markWritten(sc, item, written)
		}
		return
	}
	if entry, ok := sc.LookupLHS(lhs); ok {
		written[scope.AccessKey(entry.Accesses)] = true
	}
}

type logicConverter struct {
	written map[string]bool
	dirs    map[string]map[string]ast.Direction
	err     error
}

func (lc *logicConverter) fail(d *diag.Diagnostic) {
	if lc.err == nil {
		lc.err = d
	}
}

// rewrite is phase two: convert declarations and repair module items
// using the phase-one observation set.
func (lc *logicConverter) rewrite(part *ast.Part) (*ast.Part, error) {
	sc := scope.New[ast.Type]()
	visitor := scope.Visitor[ast.Type]{
		Decl:       lc.convertDecl,
		ModuleItem: lc.repairModuleItem,
	}
	converted, err := scope.WalkPart(sc, part, visitor)
	if err != nil {
		return nil, err
	}
	if lc.err != nil {
		return nil, lc.err
	}
	return converted, nil
}

func (lc *logicConverter) convertDecl(sc *scope.Scopes[ast.Type], d ast.Decl) (ast.Decl, error) {
	switch d := d.(type) {
	case *ast.Variable:
		vec, ok := d.Type.(*ast.IntegerVector)
		if !ok || vec.Kind != ast.TLogic {
			sc.Insert(d.Name, d.Type)
			return d, nil
		}
		// the insert fixes the absolute path this declaration would have
		// been recorded under during observation
		sc.Insert(d.Name, d.Type)
		entry, _ := sc.LookupLocal(d.Name)
		key := scope.AccessKey(entry.Accesses)

		var newType ast.Type
		dir := d.Dir
		if lc.written[key] || sc.WithinProcedure() {
			newType = &ast.IntegerVector{Kind: ast.TReg, Sign: vec.Sign, Ranges: vec.Ranges}
			if dir == ast.Inout {
				dir = ast.Output
			}
		} else {
			newType = &ast.Net{Kind: ast.TWire, Sign: vec.Sign, Ranges: vec.Ranges}
		}
		sc.Insert(d.Name, newType)
		return &ast.Variable{Dir: dir, Type: newType, Name: d.Name, Dims: d.Dims, Init: d.Init}, nil
	case *ast.Param:
		vec, ok := d.Type.(*ast.IntegerVector)
		if !ok {
			sc.Insert(d.Name, d.Type)
			return d, nil
		}
		ranges := vec.Ranges
		if len(ranges) == 0 {
			zero := ast.Range{L: &ast.Number{Text: "0"}, R: &ast.Number{Text: "0"}}
			ranges = []ast.Range{zero}
		}
		newType := &ast.Implicit{Sign: vec.Sign, Ranges: ranges}
		sc.Insert(d.Name, newType)
		return &ast.Param{Scope: d.Scope, Type: newType, Name: d.Name, Value: d.Value}, nil
	default:
		return d, nil
	}
}

// isReg reports whether a target resolves to a converted reg.
func (lc *logicConverter) isReg(sc *scope.Scopes[ast.Type], lhs ast.LHS) bool {
	entry, ok := sc.LookupLHS(lhs)
	if !ok {
		// unresolved names are assumed to be nets
		return false
	}
	vec, ok := entry.Meta.(*ast.IntegerVector)
	return ok && vec.Kind == ast.TReg
}

func (lc *logicConverter) repairModuleItem(sc *scope.Scopes[ast.Type], mi ast.ModuleItem) (ast.ModuleItem, error) {
	switch mi := mi.(type) {
	case *ast.Assign:
		if !lc.isReg(sc, mi.LHS) {
			return mi, nil
		}
		return lc.repairAssign(sc, mi), nil
	case *ast.Instance:
		return lc.repairInstance(sc, mi), nil
	default:
		return mi, nil
	}
}

// repairAssign turns a continuous assignment to a reg into a fresh wire
// plus a procedural copy.
func (lc *logicConverter) repairAssign(sc *scope.Scopes[ast.Type], mi *ast.Assign) ast.ModuleItem {
	tmp := "sv2v_tmp_" + ast.ShortHash(mi.LHS.String(), mi.Expr.String())
	wireType := lc.wireTypeFor(sc, mi.LHS)
	items := []ast.GenItem{
		&ast.Variable{Type: wireType, Name: tmp},
		&ast.Assign{LHS: &ast.LHSIdent{Name: tmp}, Expr: mi.Expr},
		&ast.AlwaysBlock{Kind: ast.Always, Stmt: &ast.Timing{
			Event: ast.Event{Star: true},
			Stmt:  &ast.Asgn{Blocking: true, LHS: mi.LHS, Expr: &ast.Ident{Name: tmp}},
		}},
	}
	return &ast.Generate{Items: []ast.GenItem{&ast.GenBlock{Items: items}}}
}

// wireTypeFor picks a wire type wide enough for the given target: the
// full declared shape for whole-identifier targets, the selected slice
// for part selects, a single bit otherwise.
func (lc *logicConverter) wireTypeFor(sc *scope.Scopes[ast.Type], lhs ast.LHS) ast.Type {
	switch lhs := lhs.(type) {
	case *ast.LHSIdent:
		if entry, ok := sc.Lookup(lhs.Name); ok {
			if vec, ok := entry.Meta.(*ast.IntegerVector); ok {
				return &ast.Net{Kind: ast.TWire, Sign: vec.Sign, Ranges: vec.Ranges}
			}
		}
		return &ast.Net{Kind: ast.TWire}
	case *ast.LHSRange:
		if lhs.Mode == ast.PartColon {
			return &ast.Net{Kind: ast.TWire, Ranges: []ast.Range{{L: lhs.L, R: lhs.R}}}
		}
		// an indexed part select is R bits wide
		msb := &ast.BinOp{Op: ast.Sub, L: lhs.R, R: &ast.Number{Text: "1"}}
		return &ast.Net{Kind: ast.TWire, Ranges: []ast.Range{{L: msb, R: &ast.Number{Text: "0"}}}}
	default:
		return &ast.Net{Kind: ast.TWire}
	}
}

// repairInstance reroutes reg expressions bound to output ports through
// fresh wires copied back procedurally.
func (lc *logicConverter) repairInstance(sc *scope.Scopes[ast.Type], mi *ast.Instance) ast.ModuleItem {
	portDirs := lc.dirs[mi.Module]
	if portDirs == nil {
		return mi
	}

	var injected []ast.GenItem
	ports := make([]ast.PortBinding, len(mi.Ports))
	copy(ports, mi.Ports)
	for i, p := range ports {
		if p.Name == "" || p.Expr == nil || portDirs[p.Name] != ast.Output {
			continue
		}
		lhs, ok := ast.ExprToLHS(p.Expr)
		if !ok {
			lc.fail(diag.New(diag.ConvBadOutputBind,
				"expression %v bound to output port %s of instance %s is not assignable",
				p.Expr, p.Name, mi.Name))
			return mi
		}
		if !lc.isReg(sc, lhs) {
			continue
		}
		tmp := "sv2v_tmp_" + mi.Name + "_" + p.Name
		injected = append(injected,
			&ast.Variable{Type: lc.wireTypeFor(sc, lhs), Name: tmp},
			&ast.AlwaysBlock{Kind: ast.Always, Stmt: &ast.Timing{
				Event: ast.Event{Star: true},
				Stmt:  &ast.Asgn{Blocking: true, LHS: lhs, Expr: &ast.Ident{Name: tmp}},
			}},
		)
		ports[i] = ast.PortBinding{Name: p.Name, Expr: &ast.Ident{Name: tmp}}
	}
	if len(injected) == 0 {
		return mi
	}

	items := []ast.GenItem{
		&ast.CommentDecl{Comment: "rerouted reg-driven output ports of " + mi.Name},
	}
	items = append(items, injected...)
	items = append(items, &ast.Instance{
		Module: mi.Module,
		Params: mi.Params,
		Name:   mi.Name,
		Ports:  ports,
	})
	return &ast.Generate{Items: []ast.GenItem{&ast.GenBlock{Items: items}}}
}
