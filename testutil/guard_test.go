package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"internal", InternalImportForbidden, "bookingcore/internal/core", true},
		{"internal-pkg", InternalImportForbidden, "bookingcore/pkg/domain", false},
		{"third-party", ThirdPartyImport, "github.com/google/uuid", true},
		{"stdlib", ThirdPartyImport, "encoding/json", false},
		{"module", ThirdPartyImport, "bookingcore/pkg/domain", false},
		{"pgx", StorageDriverImport, "github.com/jackc/pgx/v5/stdlib", true},
		{"sqlite", StorageDriverImport, "modernc.org/sqlite", true},
		{"sqlite-lib", StorageDriverImport, "modernc.org/sqlite/lib", true},
		{"lookalike", StorageDriverImport, "modernc.org/sqlitex", false},
		{"uuid", StorageDriverImport, "github.com/google/uuid", false},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Fatalf("%s: predicate(%q)=%v want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package tmp\nimport (\n\t\"fmt\"\n\t\"github.com/google/uuid\"\n)\nvar _ = fmt.Sprint\nvar _ = uuid.NewString\n")
	writeFile(t, dir, "a_test.go", "package tmp\nimport \"github.com/redis/go-redis/v9\"\n")
	writeFile(t, dir, "notes.txt", "import \"github.com/x/y\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "s.go", "package sub\nimport \"github.com/x/y\"\n")

	viols, err := directImportViolations(dir, ThirdPartyImport)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "github.com/google/uuid (in a.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}
	AssertNoDirectImports(t, dir, StorageDriverImport, "test files and subdirectories are ignored")
}

func TestDirectImportViolationsParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.go", "package tmp\nimport (\n")
	if _, err := directImportViolations(dir, ThirdPartyImport); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := directImportViolations(filepath.Join(dir, "missing"), ThirdPartyImport); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestTransitiveDependencyViolations(t *testing.T) {
	orig := goListDeps
	t.Cleanup(func() { goListDeps = orig })

	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\nbookingcore/internal/core\n\nmodernc.org/sqlite\n"), nil
	}
	viols, _, err := transitiveDependencyViolations("./...", StorageDriverImport)
	if err != nil || len(viols) != 1 || viols[0] != "modernc.org/sqlite" {
		t.Fatalf("unexpected result %v %v", viols, err)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations(".", StorageDriverImport); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list failure to surface")
	}
}

func TestFailIf(t *testing.T) {
	rec := &recordingFatal{}
	failIf(rec, "forbidden direct imports", "why", nil)
	if rec.msg != "" {
		t.Fatalf("no violations must not fail")
	}
	failIf(rec, "forbidden direct imports", "why", []string{"a", "b"})
	if !strings.Contains(rec.msg, "(why)") || !strings.HasSuffix(rec.msg, "a\nb") {
		t.Fatalf("unexpected message %q", rec.msg)
	}
}
