package domain

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "John.Doe@Example.com", "x+tag@mail.example.org"}
	invalid := []string{"", "plain", "a@b", "a b@c.de", "@b.co", "a@@b.co", "a@b.", "a@ b.co"}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Fatalf("expected %q to be valid", e)
		}
	}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Fatalf("expected %q to be invalid", e)
		}
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"0612345678", "+33 6 12 34 56 78", "(555) 123-4567", "555.123.4567", "+12345678901234"}
	invalid := []string{"12345", "phone-number", "06+12345678", "++3361234567", "1234567890123456", "+12345678"}
	for _, p := range valid {
		if !ValidPhone(p) {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	for _, p := range invalid {
		if ValidPhone(p) {
			t.Fatalf("expected %q to be invalid", p)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("unexpected normalized email %q", got)
	}
}

func TestAdminAllowlist(t *testing.T) {
	allow := NewAdminAllowlist(DefaultAdminEmails...)
	if !allow.Contains("ADMIN@example.com") {
		t.Fatalf("expected case-insensitive admin match")
	}
	if allow.Contains("user@example.com") {
		t.Fatalf("unexpected admin match")
	}
	if blank := NewAdminAllowlist("", "  "); len(blank.emails) != 0 || blank.Contains("") {
		t.Fatalf("blank entries must be ignored")
	}
	var zero AdminAllowlist
	if zero.Contains("admin@example.com") {
		t.Fatalf("zero allowlist must be empty")
	}
}
