package convert

import (
	"sv2v/internal/ast"
	"sv2v/internal/traverse"
)

// assemble builds the output description list: removed packages leave a
// comment plus their flattened items, parts receive copies of the root
// and synthetic package items they depend on, and stray top-level items
// are re-emitted from the processed root package.
func (el *elaborator) assemble(descs []ast.Description, parts map[int]*ast.Part) ([]ast.Description, error) {
	pis := make(map[string]ast.PackageItem)
	for _, item := range el.rootBody {
		for _, name := range declNames(item) {
			if _, ok := pis[name]; !ok {
				pis[name] = item
			}
		}
	}
	for _, syn := range el.synOrder {
		for _, item := range el.packages[syn].body {
			for _, name := range declNames(item) {
				if _, ok := pis[name]; !ok {
					pis[name] = item
				}
			}
		}
	}

	rootKeys := make(map[string]bool, len(el.rootBody))
	for _, item := range el.rootBody {
		rootKeys[item.String()] = true
	}

	// injection first: it decides which root items move into parts
	movedRoot := make(map[string]bool)
	for i := range parts {
		injected := make([]ast.PackageItem, 0)
		parts[i] = injectItems(parts[i], pis, &injected)
		for _, item := range injected {
			if key := item.String(); rootKeys[key] {
				movedRoot[key] = true
			}
		}
	}

	out := make([]ast.Description, 0, len(descs))
	rootEmitted := false
	for i, desc := range descs {
		switch desc := desc.(type) {
		case *ast.PackageDecl:
			out = append(out, &ast.TopItem{Item: &ast.CommentDecl{Comment: "removed package " + desc.Name}})
			for _, item := range el.packages[desc.Name].body {
				out = append(out, &ast.TopItem{Item: item})
			}
		case *ast.ClassDecl:
			out = append(out, &ast.TopItem{Item: &ast.CommentDecl{Comment: "removed class " + desc.Name}})
		case *ast.Part:
			out = append(out, parts[i])
		case *ast.TopItem:
			if rootEmitted {
				continue
			}
			rootEmitted = true
			for _, item := range el.rootBody {
				if movedRoot[item.String()] {
					continue
				}
				out = append(out, &ast.TopItem{Item: item})
			}
		}
	}
	return out, nil
}

// injectItems splices needed package items into a part ahead of their
// first use. The available map is consumed per part; injected items may
// pull in further items of their own.
func injectItems(part *ast.Part, pis map[string]ast.PackageItem, injected *[]ast.PackageItem) *ast.Part {
	avail := make(map[string]ast.PackageItem, len(pis))
	for name, item := range pis {
		avail[name] = item
	}

	declared := make(map[string]bool)
	out := make([]ast.ModuleItem, 0, len(part.Items))
	queue := append([]ast.ModuleItem{}, part.Items...)
	for len(queue) > 0 {
		item := queue[0]
		if dep := firstUnmetDep(item, avail, declared); dep != "" {
			piItem := avail[dep]
			for _, name := range declNames(piItem) {
				delete(avail, name)
			}
			*injected = append(*injected, piItem)
			queue = append([]ast.ModuleItem{piItem.(ast.ModuleItem)}, queue...)
			continue
		}
		for _, name := range moduleItemDeclNames(item) {
			declared[name] = true
		}
		out = append(out, item)
		queue = queue[1:]
	}

	result := *part
	result.Items = out
	return &result
}

func firstUnmetDep(mi ast.ModuleItem, avail map[string]ast.PackageItem, declared map[string]bool) string {
	own := make(map[string]bool)
	for _, name := range moduleItemDeclNames(mi) {
		own[name] = true
	}
	dep := ""
	traverse.IdentsInModuleItem(mi, func(name string) {
		if dep != "" || own[name] || declared[name] {
			return
		}
		if _, ok := avail[name]; ok {
			dep = name
		}
	})
	return dep
}

func moduleItemDeclNames(mi ast.ModuleItem) []string {
	switch mi := mi.(type) {
	case *ast.Genvar:
		return []string{mi.Name}
	case *ast.Instance:
		return []string{mi.Name}
	case ast.PackageItem:
		return declNames(mi)
	}
	return nil
}
