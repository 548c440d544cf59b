package source

import (
	"testing"
)

func TestFileSet_AddAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.sv", []byte("ab\ncd\nef"))

	tests := []struct {
		name string
		off  uint32
		want LineCol
	}{
		{name: "start of file", off: 0, want: LineCol{Line: 1, Col: 1}},
		{name: "middle of first line", off: 1, want: LineCol{Line: 1, Col: 2}},
		{name: "newline belongs to its line", off: 2, want: LineCol{Line: 1, Col: 3}},
		{name: "start of second line", off: 3, want: LineCol{Line: 2, Col: 1}},
		{name: "start of third line", off: 6, want: LineCol{Line: 3, Col: 1}},
		{name: "end of third line", off: 7, want: LineCol{Line: 3, Col: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
			if start != tt.want {
				t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
			}
		})
	}
}

func TestFile_GetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.sv", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFileSet_LatestWins(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("a.sv", []byte("old"))
	id2 := fs.AddVirtual("a.sv", []byte("new"))
	got, ok := fs.GetLatest("a.sv")
	if !ok || got != id2 {
		t.Fatalf("GetLatest = (%v, %v), want (%v, true)", got, ok, id2)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc"))
	if !changed {
		t.Fatal("expected change")
	}
	if string(out) != "a\nb\rc" {
		t.Errorf("normalizeCRLF = %q", out)
	}
}

func TestSpan_Cover(t *testing.T) {
	a := Span{File: 1, Start: 5, End: 10}
	b := Span{File: 1, Start: 2, End: 7}
	got := a.Cover(b)
	want := Span{File: 1, Start: 2, End: 10}
	if got != want {
		t.Errorf("Cover = %+v, want %+v", got, want)
	}

	other := Span{File: 2, Start: 0, End: 100}
	if a.Cover(other) != a {
		t.Error("Cover across files should not extend")
	}
}
