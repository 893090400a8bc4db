package phone

import "testing"

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567", "15551234567"},
		{"555.123.4567", "5551234567"},
		{"no digits", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Digits(tt.in); got != tt.want {
			t.Errorf("Digits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+15551234567", "5551234567"},
		{"5551234567", "5551234567"},
		{"1234567", "1234567"},
		{"0098 912 123 4567", "9121234567"},
	}

	for _, tt := range tests {
		if got := Suffix(tt.in); got != tt.want {
			t.Errorf("Suffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"same number different formats", "+1 (555) 123-4567", "5551234567", true},
		{"country code ignored", "+15551234567", "0015551234567", true},
		{"different numbers", "5551234567", "5551234568", false},
		{"both empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.a, tt.b); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("(202) 555-0172", "US")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got != "+12025550172" {
		t.Errorf("Normalize = %q, want +12025550172", got)
	}

	if _, err := Normalize("not a number", "US"); err == nil {
		t.Error("Normalize expected error for garbage input")
	}

	if _, err := Normalize("", "US"); err == nil {
		t.Error("Normalize expected error for empty input")
	}
}

func TestNormalizeOrSuffix_Fallback(t *testing.T) {
	if got := NormalizeOrSuffix("ext 123-4567", "US"); got != "1234567" {
		t.Errorf("NormalizeOrSuffix fallback = %q, want 1234567", got)
	}
}
