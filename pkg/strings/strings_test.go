package strings

import (
	"strings"
	"testing"
)

func TestBuilder(t *testing.T) {
	builder := NewBuilder(32)

	builder.WriteString("hello")
	_ = builder.WriteByte(' ')
	builder.WriteString("world")

	if got := builder.String(); got != "hello world" {
		t.Errorf("expected 'hello world', got '%s'", got)
	}
	if builder.Len() != 11 {
		t.Errorf("expected length 11, got %d", builder.Len())
	}

	builder.Reset()
	if builder.Len() != 0 {
		t.Errorf("expected empty builder after reset, got %d", builder.Len())
	}
}

func TestPooledBuilderStringIsCopied(t *testing.T) {
	b := GetBuilder(Small)
	b.WriteString("first")
	s := b.String()
	PutBuilder(b, Small)

	b2 := GetBuilder(Small)
	b2.WriteString("XXXXX")
	PutBuilder(b2, Small)

	if s != "first" {
		t.Errorf("pooled string was mutated: %q", s)
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", ".", "b"}, "a.b"},
		{[]string{strings.Repeat("x", 2000), "y"}, strings.Repeat("x", 2000) + "y"},
	}

	for _, tt := range tests {
		if got := Concat(tt.parts...); got != tt.want {
			t.Errorf("Concat(%q) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestSprintf(t *testing.T) {
	if got := Sprintf("%s=%d", "rows", 3); got != "rows=3" {
		t.Errorf("expected 'rows=3', got %q", got)
	}
	if got := Sprintf("plain"); got != "plain" {
		t.Errorf("expected 'plain', got %q", got)
	}
}

func TestValueToString(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{42, "42"},
		{int64(-7), "-7"},
		{1.5, "1.5"},
		{true, "true"},
		{[]byte("raw"), "raw"},
		{[]int{1}, "[1]"},
	}

	for _, tt := range tests {
		if got := ValueToString(tt.in); got != tt.want {
			t.Errorf("ValueToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
