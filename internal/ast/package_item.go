package ast

import (
	"strings"
)

// PackageItem is the family of items legal at package or module scope.
// Declaration variants implement it directly; see decl.go.
type PackageItem interface {
	isPackageItem()
	String() string
}

// Function declares a function; ports appear as directed Decls.
type Function struct {
	Lifetime Lifetime
	RetType  Type
	Name     string
	Decls    []Decl
	Stmts    []Stmt
}

// Task declares a task; ports appear as directed Decls.
type Task struct {
	Lifetime Lifetime
	Name     string
	Decls    []Decl
	Stmts    []Stmt
}

// Import is a package import; Ident "" means a wildcard import.
type Import struct {
	Package string
	Ident   string
}

// Export is a package export; an empty Package or Ident means a wildcard
// on that side.
type Export struct {
	Package string
	Ident   string
}

// Typedef declares a named type.
type Typedef struct {
	Type Type
	Name string
}

// Directive is a preprocessor or compiler directive preserved verbatim.
type Directive struct {
	Text string
}

func (*Function) isPackageItem()  {}
func (*Task) isPackageItem()      {}
func (*Import) isPackageItem()    {}
func (*Export) isPackageItem()    {}
func (*Typedef) isPackageItem()   {}
func (*Directive) isPackageItem() {}

func (*Function) isModuleItem()  {}
func (*Task) isModuleItem()      {}
func (*Import) isModuleItem()    {}
func (*Export) isModuleItem()    {}
func (*Typedef) isModuleItem()   {}
func (*Directive) isModuleItem() {}

func (*Function) isGenItem()  {}
func (*Task) isGenItem()      {}
func (*Import) isGenItem()    {}
func (*Export) isGenItem()    {}
func (*Typedef) isGenItem()   {}
func (*Directive) isGenItem() {}

func showLifetime(l Lifetime) string {
	if l == LifetimeNone {
		return ""
	}
	return l.String() + " "
}

func showBody(decls []Decl, stmts []Stmt) string {
	var sb strings.Builder
	for _, d := range decls {
		sb.WriteString("\n")
		sb.WriteString(indent(d.String()))
	}
	for _, s := range stmts {
		sb.WriteString("\n")
		sb.WriteString(indent(s.String()))
	}
	return sb.String()
}

func (pi *Function) String() string {
	ret := ""
	if pi.RetType != nil {
		if t := pi.RetType.String(); t != "" {
			ret = t + " "
		}
	}
	return "function " + showLifetime(pi.Lifetime) + ret + pi.Name + ";" +
		showBody(pi.Decls, pi.Stmts) + "\nendfunction"
}

func (pi *Task) String() string {
	return "task " + showLifetime(pi.Lifetime) + pi.Name + ";" +
		showBody(pi.Decls, pi.Stmts) + "\nendtask"
}

func (pi *Import) String() string {
	ident := pi.Ident
	if ident == "" {
		ident = "*"
	}
	return "import " + pi.Package + "::" + ident + ";"
}

func (pi *Export) String() string {
	pkg := pi.Package
	if pkg == "" {
		pkg = "*"
	}
	ident := pi.Ident
	if ident == "" {
		ident = "*"
	}
	return "export " + pkg + "::" + ident + ";"
}

func (pi *Typedef) String() string {
	return "typedef " + pi.Type.String() + " " + pi.Name + ";"
}

func (pi *Directive) String() string { return pi.Text }
