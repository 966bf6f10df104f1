package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateSQLMigrationIsValid(t *testing.T) {
	dir := t.TempDir()
	path, err := createAt(dir, "Add Gift Wrap Options!", time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20261019090000_add_gift_wrap_options.sql" {
		t.Fatalf("unexpected file %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration does not validate: %v", err)
	}
}

func TestCreateSQLMigrationStaysAfterNewestVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	if _, err := createAt(dir, "first", now); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := createAt(dir, "second", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(second), "20261019090001_") {
		t.Fatalf("expected version after the newest one, got %s", second)
	}

	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(files) != 2 || files[1].Name != "second" {
		t.Fatalf("unexpected scan %+v", files)
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := createAt(t.TempDir(), " !! ", time.Now()); err == nil {
		t.Fatal("expected error for a name with no usable characters")
	}
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n\n-- +goose Down\nSELECT 1;\n"
	if err := os.WriteFile(filepath.Join(dir, "20261019090000_broken.sql"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "StatementEnd") {
		t.Fatalf("expected unbalanced marker error, got %v", err)
	}
}

func TestScanRejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"20261019090000_a.sql", "20261019090000_b.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := Scan(dir); err == nil {
		t.Fatal("expected duplicate version error")
	}
}
