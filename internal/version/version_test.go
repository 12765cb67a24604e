package version

import (
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func withoutColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestDefaultVersion(t *testing.T) {
	if Version == "" {
		t.Fatal("Version should have a default value")
	}
}

func TestLine(t *testing.T) {
	withoutColor(t)
	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"1.2.3", "", "", "llbridge 1.2.3"},
		{"0.1.0-dev", "abc123", "", "llbridge 0.1.0-dev (abc123)"},
		{"1.0.0+build.7", "1234567890abcdef1234", "2026-01-15", "llbridge 1.0.0+build.7 (1234567890ab) built 2026-01-15"},
		{"nightly", "", "", "llbridge nightly"},
	}
	for _, tt := range tests {
		withVersion(t, tt.version, tt.commit, tt.date)
		if got := Line(); got != tt.want {
			t.Errorf("Line() = %q, want %q", got, tt.want)
		}
	}
}

func TestColoredKeepsText(t *testing.T) {
	withoutColor(t)
	withVersion(t, "2.0.0-alpha", "", "")
	if got := Colored(); got != "2.0.0-alpha" {
		t.Fatalf("Colored() = %q", got)
	}
}
