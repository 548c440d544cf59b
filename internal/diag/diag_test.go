package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticAsError(t *testing.T) {
	var err error = New(ElabNameConflict, "declaration of %s conflicts", "x")
	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatal("diagnostic should unwrap from error")
	}
	if d.Severity != SevError || d.Code != ElabNameConflict {
		t.Errorf("diagnostic = %+v", d)
	}
	msg := err.Error()
	if !strings.Contains(msg, "SV3001") || !strings.Contains(msg, "declaration of x conflicts") {
		t.Errorf("message = %q", msg)
	}
}

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{LexUnknownChar, "SV1001"},
		{SynUnexpectedToken, "SV2001"},
		{ElabDependencyLoop, "SV3005"},
		{ConvBadOutputBind, "SV4001"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSeverityString(t *testing.T) {
	if SevError.String() != "ERROR" || SevWarning.String() != "WARNING" || SevInfo.String() != "INFO" {
		t.Error("severity names changed")
	}
}
