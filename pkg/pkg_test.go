package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "dyn" {
		t.Errorf("Expected Name to be %q, got %q", "dyn", Name)
	}
}

func TestVersion(t *testing.T) {
	// The test binary runs in the package directory.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version() != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version())
	}

	if got := SemVer().String(); got != Version() {
		t.Errorf("SemVer() = %q, want %q", got, Version())
	}
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		constraint string
		want       bool
		wantErr    bool
	}{
		{">= 0.1.0", true, false},
		{"^0.1", true, false},
		{"= " + Version(), true, false},
		{">= 99", false, false},
		{"< 0.0.1", false, false},
		{"not a constraint", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			ok, errs, err := Satisfies(tt.constraint)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Satisfies(%q) error = %v, wantErr %v", tt.constraint, err, tt.wantErr)
			}

			if ok != tt.want {
				t.Errorf("Satisfies(%q) = %v, want %v (%v)", tt.constraint, ok, tt.want, errs)
			}

			if !ok && !tt.wantErr && len(errs) == 0 {
				t.Error("expected reasons for an unsatisfied constraint")
			}
		})
	}
}

func TestPrefix(t *testing.T) {
	// Test binaries are named "<pkg>.test", which maps to Name.
	if got := Prefix(); got != Name {
		t.Errorf("Prefix() = %q, want %q", got, Name)
	}
}

func TestUserDir(t *testing.T) {
	base := t.TempDir()

	got := userDir(func() (string, error) { return base, nil }, ".config")
	if want := filepath.Join(base, Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}

	fallback := userDir(func() (string, error) { return "", os.ErrNotExist }, ".cache")
	if filepath.Base(fallback) != Prefix() {
		t.Errorf("fallback userDir() = %q, want suffix %q", fallback, Prefix())
	}

	if !strings.HasSuffix(ConfigDir(), Prefix()) || !strings.HasSuffix(CacheDir(), Prefix()) {
		t.Errorf("ConfigDir=%q CacheDir=%q should end with %q", ConfigDir(), CacheDir(), Prefix())
	}
}
