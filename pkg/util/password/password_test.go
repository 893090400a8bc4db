package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q, want PHC argon2id format", hash)
	}

	if err := Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify with correct password failed: %v", err)
	}

	if err := Verify(hash, "wrong password"); err != ErrMismatch {
		t.Errorf("Verify with wrong password = %v, want ErrMismatch", err)
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	a, err := Hash("same password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash("same password")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	for _, hash := range []string{"", "not a hash", "$argon2id$v=19$bad"} {
		if err := Verify(hash, "password"); err == nil {
			t.Errorf("Verify(%q) expected error", hash)
		}
	}
}
