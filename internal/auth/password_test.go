package auth

import "testing"

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Alice", "alice", false},
		{"  bob  ", "bob", false},
		{"a.b-c_d", "a.b-c_d", false},
		{"", "", true},
		{".leading", "", true},
		{"trailing.", "", true},
		{"has space", "", true},
		{"waytoolongusernamewaytoolongusername", "", true},
	}

	for _, tc := range cases {
		got, err := NormalizeUsername(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct-horse" {
		t.Fatal("hash must not equal plaintext")
	}
	if !VerifyPassword(hash, "correct-horse") {
		t.Fatal("expected verification to pass")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected verification to fail for wrong password")
	}
	if VerifyPassword("", "anything") {
		t.Fatal("empty hash must never verify")
	}
}

func TestHashPassword_EnforcesLengthRules(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long)); err == nil {
		t.Fatal("expected overlong password to be rejected")
	}
}
