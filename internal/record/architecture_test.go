package record

import (
	"strings"
	"testing"

	"bookingcore/testutil"
)

func TestRecordStoreKnowsNoBusinessRules(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return strings.HasPrefix(path, "bookingcore/internal/")
	}, "record store depends only on pkg/domain")
}
