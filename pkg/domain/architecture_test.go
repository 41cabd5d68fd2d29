package domain

import (
	"testing"

	"bookingcore/testutil"
)

// TestDomainDoesNotImportInternal keeps the domain package free of
// implementation packages and of third-party modules.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "domain must not depend on internal packages")
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImport, "domain is standard library only")
}
