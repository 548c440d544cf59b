package ast

import (
	"strings"

	"sv2v/internal/diag"
)

// Type is the data type family.
type Type interface {
	isType()
	String() string
}

// IntegerVectorTy enumerates the vector keywords.
type IntegerVectorTy uint8

const (
	TBit IntegerVectorTy = iota
	TLogic
	TReg
)

func (t IntegerVectorTy) String() string {
	switch t {
	case TBit:
		return "bit"
	case TLogic:
		return "logic"
	}
	return "reg"
}

// IntegerAtomTy enumerates the integer atom keywords.
type IntegerAtomTy uint8

const (
	TByte IntegerAtomTy = iota
	TShortint
	TInt
	TLongint
	TInteger
	TTime
)

func (t IntegerAtomTy) String() string {
	switch t {
	case TByte:
		return "byte"
	case TShortint:
		return "shortint"
	case TInt:
		return "int"
	case TLongint:
		return "longint"
	case TInteger:
		return "integer"
	}
	return "time"
}

// NonIntegerTy enumerates the non-integer keywords.
type NonIntegerTy uint8

const (
	TShortreal NonIntegerTy = iota
	TReal
	TRealtime
	TString
	TEvent
)

func (t NonIntegerTy) String() string {
	switch t {
	case TShortreal:
		return "shortreal"
	case TReal:
		return "real"
	case TRealtime:
		return "realtime"
	case TString:
		return "string"
	}
	return "event"
}

// NetTy enumerates net kinds.
type NetTy uint8

const (
	TWire NetTy = iota
	TTri
	TWand
	TWor
	TSupply0
	TSupply1
)

func (t NetTy) String() string {
	switch t {
	case TWire:
		return "wire"
	case TTri:
		return "tri"
	case TWand:
		return "wand"
	case TWor:
		return "wor"
	case TSupply0:
		return "supply0"
	}
	return "supply1"
}

// IntegerVector is a vector type with signing and packed ranges.
type IntegerVector struct {
	Kind   IntegerVectorTy
	Sign   Signing
	Ranges []Range
}

// IntegerAtom is an atom type; atoms never carry packed ranges.
type IntegerAtom struct {
	Kind IntegerAtomTy
	Sign Signing
}

// NonInteger is a real, string, or event type; never ranged.
type NonInteger struct {
	Kind NonIntegerTy
}

// Net is a net type with signing and packed ranges.
type Net struct {
	Kind   NetTy
	Sign   Signing
	Ranges []Range
}

// Implicit is an absent type keyword carrying only signing and ranges.
type Implicit struct {
	Sign   Signing
	Ranges []Range
}

// Alias is a reference to a typedef by plain name.
type Alias struct {
	Name   string
	Ranges []Range
}

// PSAlias is a package-scoped typedef reference P::X.
type PSAlias struct {
	Package string
	Name    string
	Ranges  []Range
}

// CSAlias is a class-scoped typedef reference C#(bindings)::X.
type CSAlias struct {
	Class    string
	Bindings []ParamBinding
	Name     string
	Ranges   []Range
}

// EnumItem is one named enumerator with an optional explicit value.
type EnumItem struct {
	Name  string
	Value Expr
}

// Enum is an enumeration over an optional base type.
type Enum struct {
	Base   Type // nil for an implicit base
	Items  []EnumItem
	Ranges []Range
}

// Field is one member of a struct or union.
type Field struct {
	Type Type
	Name string
}

// Struct is a structure type; Packed carries the packing signedness.
type Struct struct {
	Packed bool
	Sign   Signing
	Fields []Field
	Ranges []Range
}

// Union mirrors Struct for untagged unions.
type Union struct {
	Packed bool
	Sign   Signing
	Fields []Field
	Ranges []Range
}

// InterfaceT is a reference to an interface, optionally via a modport.
type InterfaceT struct {
	Name    string // "" for a generic interface port
	Modport string
	Ranges  []Range
}

// TypeOf is the type(expr) operator.
type TypeOf struct {
	Expr Expr
}

// UnpackedType pairs a type with unpacked dimensions; it only appears
// transiently inside conversions, never in parser output.
type UnpackedType struct {
	Inner    Type
	Unpacked []Range
}

func (*IntegerVector) isType() {}
func (*IntegerAtom) isType()   {}
func (*NonInteger) isType()    {}
func (*Net) isType()           {}
func (*Implicit) isType()      {}
func (*Alias) isType()         {}
func (*PSAlias) isType()       {}
func (*CSAlias) isType()       {}
func (*Enum) isType()          {}
func (*Struct) isType()        {}
func (*Union) isType()         {}
func (*InterfaceT) isType()    {}
func (*TypeOf) isType()        {}
func (*UnpackedType) isType()  {}

func showTypeParts(keyword string, sign Signing, ranges []Range) string {
	var sb strings.Builder
	sb.WriteString(keyword)
	if sign != Unspecified {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(sign.String())
	}
	rs := showRanges(ranges)
	if sb.Len() == 0 {
		rs = strings.TrimPrefix(rs, " ")
	}
	sb.WriteString(rs)
	return sb.String()
}

func (t *IntegerVector) String() string {
	return showTypeParts(t.Kind.String(), t.Sign, t.Ranges)
}

func (t *IntegerAtom) String() string {
	return showTypeParts(t.Kind.String(), t.Sign, nil)
}

func (t *NonInteger) String() string { return t.Kind.String() }

func (t *Net) String() string {
	return showTypeParts(t.Kind.String(), t.Sign, t.Ranges)
}

func (t *Implicit) String() string {
	return showTypeParts("", t.Sign, t.Ranges)
}

func (t *Alias) String() string {
	return showTypeParts(t.Name, Unspecified, t.Ranges)
}

func (t *PSAlias) String() string {
	return showTypeParts(t.Package+"::"+t.Name, Unspecified, t.Ranges)
}

func (t *CSAlias) String() string {
	name := t.Class + showParamBindings(t.Bindings) + "::" + t.Name
	return showTypeParts(name, Unspecified, t.Ranges)
}

func (t *Enum) String() string {
	base := ""
	if t.Base != nil {
		base = t.Base.String() + " "
	}
	items := make([]string, len(t.Items))
	for i, item := range t.Items {
		items[i] = item.Name
		if item.Value != nil {
			items[i] += " = " + item.Value.String()
		}
	}
	return "enum " + base + "{" + strings.Join(items, ", ") + "}" + showRanges(t.Ranges)
}

func showFields(fields []Field) string {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(" ")
		sb.WriteString(f.Type.String())
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		sb.WriteString(";")
	}
	return sb.String()
}

func showPacking(packed bool, sign Signing) string {
	if !packed {
		return ""
	}
	if sign == Unspecified {
		return " packed"
	}
	return " packed " + sign.String()
}

func (t *Struct) String() string {
	return "struct" + showPacking(t.Packed, t.Sign) + " {" + showFields(t.Fields) + " }" + showRanges(t.Ranges)
}

func (t *Union) String() string {
	return "union" + showPacking(t.Packed, t.Sign) + " {" + showFields(t.Fields) + " }" + showRanges(t.Ranges)
}

func (t *InterfaceT) String() string {
	name := t.Name
	if name == "" {
		name = "interface"
	}
	if t.Modport != "" {
		name += "." + t.Modport
	}
	return showTypeParts(name, Unspecified, t.Ranges)
}

func (t *TypeOf) String() string {
	return "type(" + t.Expr.String() + ")"
}

func (t *UnpackedType) String() string {
	return t.Inner.String() + showRanges(t.Unpacked)
}

// TypeRanges destructures a type into a rebuild function and its packed
// ranges. Rebuilding a rangeless type with a non-empty range list panics
// with a structural-error diagnostic; pass boundaries recover it.
func TypeRanges(t Type) (func([]Range) Type, []Range) {
	requireEmpty := func(kind string) func([]Range) Type {
		return func(rs []Range) Type {
			if len(rs) != 0 {
				panic(diag.New(diag.ConvBadRanges,
					"packed ranges applied to %s type %v", kind, t))
			}
			return t
		}
	}
	switch t := t.(type) {
	case *IntegerVector:
		return func(rs []Range) Type {
			return &IntegerVector{Kind: t.Kind, Sign: t.Sign, Ranges: rs}
		}, t.Ranges
	case *IntegerAtom:
		return requireEmpty("integer atom"), nil
	case *NonInteger:
		return requireEmpty("non-integer"), nil
	case *Net:
		return func(rs []Range) Type {
			return &Net{Kind: t.Kind, Sign: t.Sign, Ranges: rs}
		}, t.Ranges
	case *Implicit:
		return func(rs []Range) Type {
			return &Implicit{Sign: t.Sign, Ranges: rs}
		}, t.Ranges
	case *Alias:
		return func(rs []Range) Type {
			return &Alias{Name: t.Name, Ranges: rs}
		}, t.Ranges
	case *PSAlias:
		return func(rs []Range) Type {
			return &PSAlias{Package: t.Package, Name: t.Name, Ranges: rs}
		}, t.Ranges
	case *CSAlias:
		return func(rs []Range) Type {
			return &CSAlias{Class: t.Class, Bindings: t.Bindings, Name: t.Name, Ranges: rs}
		}, t.Ranges
	case *Enum:
		return func(rs []Range) Type {
			return &Enum{Base: t.Base, Items: t.Items, Ranges: rs}
		}, t.Ranges
	case *Struct:
		return func(rs []Range) Type {
			return &Struct{Packed: t.Packed, Sign: t.Sign, Fields: t.Fields, Ranges: rs}
		}, t.Ranges
	case *Union:
		return func(rs []Range) Type {
			return &Union{Packed: t.Packed, Sign: t.Sign, Fields: t.Fields, Ranges: rs}
		}, t.Ranges
	case *InterfaceT:
		return func(rs []Range) Type {
			return &InterfaceT{Name: t.Name, Modport: t.Modport, Ranges: rs}
		}, t.Ranges
	case *TypeOf:
		return requireEmpty("type-of"), nil
	case *UnpackedType:
		inner, innerRanges := TypeRanges(t.Inner)
		return func(rs []Range) Type {
			return &UnpackedType{Inner: inner(rs), Unpacked: t.Unpacked}
		}, innerRanges
	}
	return requireEmpty("unknown"), nil
}

// atomWidth is the fixed bit width of each integer atom; integer is handled
// separately because it appends to user ranges.
func atomWidth(kind IntegerAtomTy) int {
	switch kind {
	case TByte:
		return 8
	case TShortint:
		return 16
	case TLongint, TTime:
		return 64
	default:
		return 32
	}
}

func widthRange(width int) Range {
	return Range{
		L: &Number{Text: itoa(width - 1)},
		R: &Number{Text: "0"},
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [24]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ElaborateAtom lowers an integer atom to an explicitly ranged logic vector:
// byte/shortint/int/longint become fixed-width vectors, signed unless
// explicitly unsigned; integer appends its 32-bit range to the given user
// ranges. time lowers to an unsigned 64-bit vector.
func ElaborateAtom(kind IntegerAtomTy, sign Signing, userRanges []Range) Type {
	if sign == Unspecified {
		if kind == TTime {
			sign = Unsigned
		} else {
			sign = Signed
		}
	}
	var ranges []Range
	if kind == TInteger {
		ranges = append(append([]Range{}, userRanges...), widthRange(32))
	} else {
		ranges = []Range{widthRange(atomWidth(kind))}
	}
	return &IntegerVector{Kind: TLogic, Sign: sign, Ranges: ranges}
}
