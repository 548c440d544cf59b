package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004

	// Preprocessor
	PpInfo            Code = 1500
	PpUnknownMacro    Code = 1501
	PpUnbalancedCond  Code = 1502
	PpMissingInclude  Code = 1503
	PpBadDirective    Code = 1504
	PpRecursiveExpand Code = 1505

	// Syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedDelimiter  Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectSemicolon    Code = 2004
	SynExpectType         Code = 2005
	SynExpectExpression   Code = 2006
	SynUnexpectedTopLevel Code = 2007
	SynBadPortList        Code = 2008
	SynBadGenerate        Code = 2009

	// Package and class elaboration
	ElabInfo               Code = 3000
	ElabNameConflict       Code = 3001
	ElabAmbiguousReference Code = 3002
	ElabMissingPackage     Code = 3003
	ElabMissingSymbol      Code = 3004
	ElabDependencyLoop     Code = 3005
	ElabBadExport          Code = 3006
	ElabMissingClass       Code = 3007
	ElabClassParamMissing  Code = 3008
	ElabClassParamKind     Code = 3009
	ElabClassNeedsBindings Code = 3010
	ElabBadBinding         Code = 3011

	// Conversion passes
	ConvInfo          Code = 4000
	ConvBadOutputBind Code = 4001
	ConvBadRanges     Code = 4002

	// Driver
	DrvInfo       Code = 5000
	DrvNoInput    Code = 5001
	DrvReadFailed Code = 5002
	DrvBadFlag    Code = 5003
)

func (c Code) String() string {
	return fmt.Sprintf("SV%04d", uint16(c))
}
