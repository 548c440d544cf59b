package convert

import (
	"sv2v/internal/ast"
	"sv2v/internal/traverse"
)

// declNames lists the identifiers a package item declares, including the
// enumerators buried in its types.
func declNames(pi ast.PackageItem) []string {
	var names []string
	add := func(name string) {
		if name != "" {
			names = append(names, name)
		}
	}
	switch pi := pi.(type) {
	case *ast.Variable:
		add(pi.Name)
		enumItemNames(pi.Type, add)
	case *ast.Param:
		add(pi.Name)
		enumItemNames(pi.Type, add)
	case *ast.ParamType:
		add(pi.Name)
	case *ast.Typedef:
		add(pi.Name)
		enumItemNames(pi.Type, add)
	case *ast.Function:
		add(pi.Name)
	case *ast.Task:
		add(pi.Name)
	}
	return names
}

func enumItemNames(t ast.Type, add func(string)) {
	if t == nil {
		return
	}
	traverse.Types(t, func(x ast.Type) ast.Type {
		if enum, ok := x.(*ast.Enum); ok {
			for _, item := range enum.Items {
				add(item.Name)
			}
		}
		return x
	})
}

// usedNames lists the identifiers a package item references, in
// deterministic traversal order.
func usedNames(pi ast.PackageItem) []string {
	var names []string
	traverse.IdentsInPackageItem(pi, func(name string) {
		names = append(names, name)
	})
	return names
}

// reorderItems permutes a package's items so that every use of a locally
// defined name follows its defining item, duplicating definitions
// forward where needed and suppressing the duplicates when their
// original position comes up. Mutually recursive definitions are emitted
// as encountered once a move would loop.
func reorderItems(items []ast.PackageItem) []ast.PackageItem {
	local := make(map[string]ast.PackageItem)
	for _, it := range items {
		for _, name := range declNames(it) {
			if _, ok := local[name]; !ok {
				local[name] = it
			}
		}
	}

	satisfied := make(map[string]bool)
	seen := make(map[string]bool)
	pending := make(map[string]bool)
	out := make([]ast.PackageItem, 0, len(items))
	queue := append([]ast.PackageItem{}, items...)

	for len(queue) > 0 {
		it := queue[0]
		key := it.String()
		if seen[key] {
			queue = queue[1:]
			continue
		}

		if dep := firstUnsatisfied(it, local, satisfied); dep != "" {
			defItem := local[dep]
			dkey := defItem.String()
			if !seen[dkey] && !pending[dkey] && dkey != key {
				pending[dkey] = true
				queue = append([]ast.PackageItem{defItem}, queue...)
				continue
			}
			// a dependency loop: emit in encounter order
		}

		seen[key] = true
		delete(pending, key)
		for _, name := range declNames(it) {
			satisfied[name] = true
		}
		out = append(out, it)
		queue = queue[1:]
	}
	return out
}

func firstUnsatisfied(it ast.PackageItem, local map[string]ast.PackageItem, satisfied map[string]bool) string {
	own := make(map[string]bool)
	for _, name := range declNames(it) {
		own[name] = true
	}
	for _, used := range usedNames(it) {
		if own[used] || satisfied[used] {
			continue
		}
		if _, ok := local[used]; ok {
			return used
		}
	}
	return ""
}
