package otp

import (
	"strings"
	"testing"
)

func TestGenerate_Length(t *testing.T) {
	for _, length := range []int{4, 6, 10} {
		code, err := Generate(length)
		if err != nil {
			t.Fatalf("Generate(%d) failed: %v", length, err)
		}
		if len(code) != length {
			t.Errorf("Generate(%d) = %q, want %d digits", length, code, length)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Errorf("Generate(%d) = %q, contains non-digit", length, code)
			}
		}
	}
}

func TestGenerate_InvalidLength(t *testing.T) {
	for _, length := range []int{0, 3, 11, -1} {
		if _, err := Generate(length); err == nil {
			t.Errorf("Generate(%d) expected error", length)
		}
	}
}

func TestHashAndVerify(t *testing.T) {
	code, err := GenerateDefault()
	if err != nil {
		t.Fatalf("GenerateDefault failed: %v", err)
	}

	hash := Hash(code)
	if hash == "" || hash == code {
		t.Fatalf("Hash(%q) = %q, want hex digest", code, hash)
	}

	if err := Verify(hash, code); err != nil {
		t.Errorf("Verify with correct code failed: %v", err)
	}

	if err := Verify(hash, "000000"); err == nil && code != "000000" {
		t.Error("Verify with wrong code expected error")
	}
}

func TestVerify_TrimsWhitespace(t *testing.T) {
	hash := Hash("123456")
	if err := Verify(hash, "  123456  "); err != nil {
		t.Errorf("Verify with padded code failed: %v", err)
	}
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		code   string
		length int
		want   bool
	}{
		{"123456", 6, true},
		{" 123456 ", 6, true},
		{"12345", 6, false},
		{"12345a", 6, false},
		{"", 6, false},
	}

	for _, tt := range tests {
		if got := IsWellFormed(tt.code, tt.length); got != tt.want {
			t.Errorf("IsWellFormed(%q, %d) = %v, want %v", tt.code, tt.length, got, tt.want)
		}
	}
}

func TestHash_Deterministic(t *testing.T) {
	a := Hash("424242")
	b := Hash("424242")
	if a != b {
		t.Error("Hash is not deterministic")
	}
	if strings.ToLower(a) != a {
		t.Error("Hash should be lowercase hex")
	}
}
