package model

import "testing"

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@X.Com "); got != "user@x.com" {
		t.Fatalf("expected user@x.com, got %q", got)
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last@sub.example.org", "User@X.COM"}
	invalid := []string{"", "plainaddress", "@no-local.com", "user@", "user@host"}

	for _, email := range valid {
		if !ValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
	for _, email := range invalid {
		if ValidEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{"", "", ""},
	}
	for _, tt := range tests {
		u := User{FirstName: tt.first, LastName: tt.last}
		if got := u.FullName(); got != tt.want {
			t.Errorf("FullName(%q, %q) = %q, want %q", tt.first, tt.last, got, tt.want)
		}
	}
}
