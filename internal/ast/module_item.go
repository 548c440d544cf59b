package ast

import (
	"strings"
)

// ModuleItem is the family of items legal in a module or interface body.
// Declarations and package items implement it directly.
type ModuleItem interface {
	isModuleItem()
	String() string
}

// Instance instantiates a module or interface.
type Instance struct {
	Module string
	Params []ParamBinding
	Name   string
	Ports  []PortBinding
}

// Genvar declares a generate loop variable.
type Genvar struct {
	Name string
}

// Generate wraps generate-region items.
type Generate struct {
	Items []GenItem
}

// Assign is a continuous assignment.
type Assign struct {
	LHS  LHS
	Expr Expr
}

// AlwaysKw enumerates the always block keywords.
type AlwaysKw uint8

const (
	Always AlwaysKw = iota
	AlwaysComb
	AlwaysFF
	AlwaysLatch
)

func (k AlwaysKw) String() string {
	switch k {
	case AlwaysComb:
		return "always_comb"
	case AlwaysFF:
		return "always_ff"
	case AlwaysLatch:
		return "always_latch"
	}
	return "always"
}

// AlwaysBlock is a procedural always block of any flavor.
type AlwaysBlock struct {
	Kind AlwaysKw
	Stmt Stmt
}

// Initial is an initial block.
type Initial struct {
	Stmt Stmt
}

func (*Instance) isModuleItem()    {}
func (*Genvar) isModuleItem()      {}
func (*Generate) isModuleItem()    {}
func (*Assign) isModuleItem()      {}
func (*AlwaysBlock) isModuleItem() {}
func (*Initial) isModuleItem()     {}

func (*Instance) isGenItem()    {}
func (*Genvar) isGenItem()      {}
func (*Assign) isGenItem()      {}
func (*AlwaysBlock) isGenItem() {}
func (*Initial) isGenItem()     {}

func (mi *Instance) String() string {
	ports := make([]string, len(mi.Ports))
	for i, p := range mi.Ports {
		ports[i] = p.String()
	}
	params := showParamBindings(mi.Params)
	if params != "" {
		params = " " + params
	}
	return mi.Module + params + " " + mi.Name + "(" + strings.Join(ports, ", ") + ");"
}

func (mi *Genvar) String() string { return "genvar " + mi.Name + ";" }

func (mi *Generate) String() string {
	var sb strings.Builder
	sb.WriteString("generate")
	for _, item := range mi.Items {
		sb.WriteString("\n")
		sb.WriteString(indent(item.String()))
	}
	sb.WriteString("\nendgenerate")
	return sb.String()
}

func (mi *Assign) String() string {
	return "assign " + mi.LHS.String() + " = " + mi.Expr.String() + ";"
}

func (mi *AlwaysBlock) String() string {
	return mi.Kind.String() + "\n" + indent(mi.Stmt.String())
}

func (mi *Initial) String() string {
	return "initial\n" + indent(mi.Stmt.String())
}
