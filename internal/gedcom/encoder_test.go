package gedcom

import (
	"errors"
	"strings"
	"testing"
)

func TestEncoderLines(t *testing.T) {
	var b strings.Builder
	enc := NewEncoder(&b)

	enc.Record("I00001", RecordIndi)
	enc.Line(1, "NAME", "John /Smith/")
	enc.Optional(2, "TYPE", "")
	enc.Line(1, "BIRT", "")
	enc.Pointer(1, "FAMS", "F00001")
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "0 @I00001@ INDI\n1 NAME John /Smith/\n1 BIRT\n1 FAMS @F00001@\n"
	if b.String() != want {
		t.Errorf("output = %q, want %q", b.String(), want)
	}
}

func TestEncoderNoteContinuation(t *testing.T) {
	var b strings.Builder
	enc := NewEncoder(&b)
	enc.Note(1, "NOTE", "first\nsecond\n")
	enc.Note(1, "NOTE", "")
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	want := "1 NOTE first\n2 CONT second\n2 CONT\n"
	if b.String() != want {
		t.Errorf("output = %q, want %q", b.String(), want)
	}
}

func TestEncoderFact(t *testing.T) {
	tests := []struct {
		name string
		fact Fact
		want string
	}{
		{"zero", Fact{}, ""},
		{"exact", Fact{Date: "1990-12-25"}, "1 BIRT\n2 DATE 25 DEC 1990\n"},
		{"approx wins", Fact{Date: "1990-12-25", DateApprox: "ABT 1990"}, "1 BIRT\n2 DATE ABT 1990\n"},
		{"place only", Fact{Place: "Boston"}, "1 BIRT\n2 PLAC Boston\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			enc := NewEncoder(&b)
			enc.Fact("BIRT", tt.fact)
			if err := enc.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("output = %q, want %q", b.String(), tt.want)
			}
		})
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncoderStickyError(t *testing.T) {
	enc := NewEncoder(failWriter{})
	// Enough data to overflow the buffer and hit the writer.
	long := strings.Repeat("x", 8192)
	enc.Line(1, "NOTE", long)
	enc.Line(1, "NOTE", long)
	if err := enc.Flush(); err == nil {
		t.Fatal("expected error from failing writer")
	}
}
