package csvparse

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Table
	}{
		{
			name:  "empty input",
			input: "",
			want:  Table{},
		},
		{
			name:  "header only",
			input: "a,b\n",
			want:  Table{},
		},
		{
			name:  "header only without newline",
			input: "a,b",
			want:  Table{},
		},
		{
			name:  "comma inside quotes",
			input: "a,b\n1,\"x,y\"\n",
			want:  Table{NewRow("a", "1", "b", "x,y")},
		},
		{
			name:  "escaped quote",
			input: "a,b\n1,\"say \"\"hi\"\"\"\n",
			want:  Table{NewRow("a", "1", "b", `say "hi"`)},
		},
		{
			name:  "crlf without trailing newline",
			input: "a,b\r\n1,2\r\n3,4",
			want: Table{
				NewRow("a", "1", "b", "2"),
				NewRow("a", "3", "b", "4"),
			},
		},
		{
			name:  "bare carriage returns",
			input: "a,b\r1,2\r",
			want:  Table{NewRow("a", "1", "b", "2")},
		},
		{
			name:  "blank line skipped",
			input: "a,b\n1,2\n\n3,4\n",
			want: Table{
				NewRow("a", "1", "b", "2"),
				NewRow("a", "3", "b", "4"),
			},
		},
		{
			name:  "whitespace only line skipped after trim",
			input: "a,b\n   \n1,2\n",
			want:  Table{NewRow("a", "1", "b", "2")},
		},
		{
			name:  "empty header cell gets synthetic name",
			input: "a,,c\n1,2,3\n",
			want:  Table{NewRow("a", "1", "col1", "2", "c", "3")},
		},
		{
			name:  "short row padded",
			input: "a,b,c\n1\n",
			want:  Table{NewRow("a", "1", "b", "", "c", "")},
		},
		{
			name:  "long row truncated to header",
			input: "a\n1,2,3\n",
			want:  Table{NewRow("a", "1")},
		},
		{
			name:  "cells trimmed including header",
			input: " a , b \n  1 ,\t2\t\n",
			want:  Table{NewRow("a", "1", "b", "2")},
		},
		{
			name:  "newline inside quotes",
			input: "a,b\n\"line1\nline2\",x\n",
			want:  Table{NewRow("a", "line1\nline2", "b", "x")},
		},
		{
			name:  "row of empty cells is kept",
			input: "a,b\n,\n",
			want:  Table{NewRow("a", "", "b", "")},
		},
		{
			name:  "duplicate header keeps first position and last value",
			input: "a,b,a\n1,2,3\n",
			want:  Table{NewRow("a", "3", "b", "2")},
		},
		{
			name:  "utf8 content",
			input: "titolo,città\nCiao,Roma\n",
			want:  Table{NewRow("titolo", "Ciao", "città", "Roma")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
			if got == nil {
				t.Errorf("Parse(%q) returned nil table", tt.input)
			}
		})
	}
}

func TestParse_ColumnOrder(t *testing.T) {
	got := Parse("z,y,x\n1,2,3\n")
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	want := []string{"z", "y", "x"}
	if diff := cmp.Diff(want, got[0].Keys()); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}
}

// Malformed input must never panic; it degrades to best-effort tokenization.
func TestParse_Permissive(t *testing.T) {
	inputs := []string{
		"\"",
		"a,b\n\"unterminated,1\n2,3",
		"a\n\"\"\"",
		",,,\n,,,",
		"\r\n\r\n",
		"\n",
		"a,b\n1,2,3,4,5\n6\n",
		"\"a\"b\"c\n",
		string([]byte{0xff, 0xfe, ',', '\n', 0x80}),
	}

	for _, in := range inputs {
		got := Parse(in)
		if got == nil {
			t.Errorf("Parse(%q) returned nil", in)
		}
	}
}

func TestParse_UnterminatedQuoteSwallowsRest(t *testing.T) {
	got := Parse("a,b\n\"open,1\n2,3")
	want := Table{NewRow("a", "open,1\n2,3", "b", "")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReader(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  Table
	}{
		{
			name:  "with BOM",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,title\nhome,Home\n")...),
			want:  Table{NewRow("id", "home", "title", "Home")},
		},
		{
			name:  "without BOM",
			input: []byte("id,title\nhome,Home\n"),
			want:  Table{NewRow("id", "home", "title", "Home")},
		},
		{
			name:  "invalid utf8 replaced",
			input: []byte("id\nab\xffc\n"),
			want:  Table{NewRow("id", "ab�c")},
		},
		{
			name:  "empty",
			input: nil,
			want:  Table{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReader(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBOMSkippingReader_PartialBOM(t *testing.T) {
	input := []byte{0xEF, 0xBB, 'a', 'b'}
	text, err := ReadText(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The two stray bytes are not a BOM and are invalid UTF-8 on their own.
	if !strings.HasSuffix(text, "ab") {
		t.Errorf("got %q, want suffix %q", text, "ab")
	}
}

func TestRow_JSONPreservesOrder(t *testing.T) {
	r := NewRow("zeta", "1", "alpha", "2", "mid", `"q"`)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	want := `{"zeta":"1","alpha":"2","mid":"\"q\""}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back Row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if !back.Equal(r) {
		t.Errorf("round trip = %v, want %v", back.Keys(), r.Keys())
	}
}

func TestRow_UnmarshalRejectsNonObject(t *testing.T) {
	var r Row
	if err := json.Unmarshal([]byte(`["a"]`), &r); err == nil {
		t.Error("expected error for array input")
	}
	if err := json.Unmarshal([]byte(`{"a":1}`), &r); err == nil {
		t.Error("expected error for non-string value")
	}
}

func TestRow_Accessors(t *testing.T) {
	r := NewRow("content", "", "content_html", "<p>x</p>", "dangling")

	if got := r.First("content", "content_html"); got != "<p>x</p>" {
		t.Errorf("First = %q, want %q", got, "<p>x</p>")
	}
	if v, ok := r.Lookup("dangling"); !ok || v != "" {
		t.Errorf("Lookup(dangling) = %q, %v; want \"\", true", v, ok)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(missing) reported present")
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}

	var zero Row
	if zero.Get("x") != "" || zero.Len() != 0 {
		t.Error("zero Row should be empty")
	}
}

func TestTable_Helpers(t *testing.T) {
	tbl := Parse("id,type\nhome,page\nnews,post\n")

	if diff := cmp.Diff([]string{"id", "type"}, tbl.Headers()); diff != "" {
		t.Errorf("Headers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"page", "post"}, tbl.Column("type")); diff != "" {
		t.Errorf("Column mismatch (-want +got):\n%s", diff)
	}
	if Table(nil).Headers() != nil {
		t.Error("Headers of empty table should be nil")
	}
}
