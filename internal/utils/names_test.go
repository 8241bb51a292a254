package utils

import "testing"

func TestQualifiedNames(t *testing.T) {
	tests := []struct {
		name          string
		namespace     string
		unqualified   string
		hasNamespaceA bool
	}{
		{"x", "", "x", false},
		{"A::x", "A", "x", true},
		{"A::B::x", "A::B", "x", true},
		{"AB::x", "AB", "x", false},
	}
	for _, tt := range tests {
		if got := Namespace(tt.name); got != tt.namespace {
			t.Errorf("Namespace(%q) = %q, want %q", tt.name, got, tt.namespace)
		}
		if got := Unqualified(tt.name); got != tt.unqualified {
			t.Errorf("Unqualified(%q) = %q, want %q", tt.name, got, tt.unqualified)
		}
		if got := HasNamespace(tt.name, "A"); got != tt.hasNamespaceA {
			t.Errorf("HasNamespace(%q, A) = %v, want %v", tt.name, got, tt.hasNamespaceA)
		}
	}

	if got := Qualify("N", "x"); got != "N::x" {
		t.Errorf("Qualify = %q", got)
	}
	if got := Qualify("", "x"); got != "x" {
		t.Errorf("Qualify with empty namespace = %q", got)
	}
}
