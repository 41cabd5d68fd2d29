package domain

// DefaultAdminEmails is the allowlist used when none is configured.
var DefaultAdminEmails = []string{"admin@example.com", "admin@booking.com"}

// AdminAllowlist grants administrative rights by email, case-insensitively.
type AdminAllowlist struct {
	emails map[string]struct{}
}

// NewAdminAllowlist builds an allowlist from the given addresses. Blank
// entries are ignored.
func NewAdminAllowlist(emails ...string) AdminAllowlist {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if normalized := NormalizeEmail(email); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return AdminAllowlist{emails: set}
}

// Contains reports whether email is an administrator address.
func (a AdminAllowlist) Contains(email string) bool {
	_, ok := a.emails[NormalizeEmail(email)]
	return ok
}
