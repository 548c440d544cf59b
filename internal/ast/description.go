package ast

import (
	"strings"
)

// Description is one top-level item of a source file.
type Description interface {
	isDescription()
	String() string
}

// PartKw distinguishes modules from interfaces.
type PartKw uint8

const (
	KwModule PartKw = iota
	KwInterface
)

func (k PartKw) String() string {
	if k == KwInterface {
		return "interface"
	}
	return "module"
}

// Part is a module or interface definition.
type Part struct {
	Attrs    []string // raw (* ... *) attribute strings
	Extern   bool
	Kind     PartKw
	Lifetime Lifetime
	Name     string
	Ports    []string
	Items    []ModuleItem
}

// PackageDecl is a package definition.
type PackageDecl struct {
	Lifetime Lifetime
	Name     string
	Items    []PackageItem
}

// ClassDecl is a class definition with parameter ports.
type ClassDecl struct {
	Lifetime Lifetime
	Name     string
	Params   []Decl
	Items    []PackageItem
}

// TopItem is a stray package item at file scope.
type TopItem struct {
	Item PackageItem
}

func (*Part) isDescription()        {}
func (*PackageDecl) isDescription() {}
func (*ClassDecl) isDescription()   {}
func (*TopItem) isDescription()     {}

func (d *Part) String() string {
	var sb strings.Builder
	for _, attr := range d.Attrs {
		sb.WriteString(attr)
		sb.WriteString("\n")
	}
	if d.Extern {
		sb.WriteString("extern ")
	}
	sb.WriteString(d.Kind.String())
	sb.WriteString(" ")
	sb.WriteString(showLifetime(d.Lifetime))
	sb.WriteString(d.Name)
	sb.WriteString("(")
	sb.WriteString(strings.Join(d.Ports, ", "))
	sb.WriteString(");")
	for _, item := range d.Items {
		sb.WriteString("\n")
		sb.WriteString(indent(item.String()))
	}
	sb.WriteString("\nend")
	sb.WriteString(d.Kind.String())
	return sb.String()
}

func (d *PackageDecl) String() string {
	var sb strings.Builder
	sb.WriteString("package ")
	sb.WriteString(showLifetime(d.Lifetime))
	sb.WriteString(d.Name)
	sb.WriteString(";")
	for _, item := range d.Items {
		sb.WriteString("\n")
		sb.WriteString(indent(item.String()))
	}
	sb.WriteString("\nendpackage")
	return sb.String()
}

func (d *ClassDecl) String() string {
	var sb strings.Builder
	sb.WriteString("class ")
	sb.WriteString(showLifetime(d.Lifetime))
	sb.WriteString(d.Name)
	if len(d.Params) > 0 {
		params := make([]string, len(d.Params))
		for i, p := range d.Params {
			params[i] = strings.TrimSuffix(p.String(), ";")
		}
		sb.WriteString(" #(")
		sb.WriteString(strings.Join(params, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(";")
	for _, item := range d.Items {
		sb.WriteString("\n")
		sb.WriteString(indent(item.String()))
	}
	sb.WriteString("\nendclass")
	return sb.String()
}

func (d *TopItem) String() string { return d.Item.String() }
