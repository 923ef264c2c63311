package migration

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestRun_Validation(t *testing.T) {
	if err := Run("", Up); !errors.Is(err, ErrDSNRequired) {
		t.Fatalf("Run() error = %v, want ErrDSNRequired", err)
	}
	if err := Run("postgres://localhost/db", "sideways"); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("Run() error = %v, want ErrInvalidDirection", err)
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	// Arrange
	entries, err := fs.ReadDir(files, "migrations")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	// Act
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}

	// Assert
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Fatalf("migration %s has no down file", v)
		}
	}
}
