package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"llbridge/internal/testkit"
)

const testConfig = `[target]
datalayout = "e-m:e-i64:64-n8:16:32:64-S128"

[passes]
pipeline = ["internalize", "globaldce"]

[scan]
cache = "cache"

[types]
Size = "i64"
Node = "{Size, *Node, i8}"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "llbridge.toml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	app.close(&errOut)
	app = appState{}
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := runCLI(t, "--config", cfg, "layout", "Node", "[i16 x 4]")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"8-byte pointers", "little endian", "Node (Struct)", "alloc 24", "*Node", "[i16 x 4] (Array)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTypesCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := runCLI(t, "--config", cfg, "types", "fn( *Node ,Size)->i1")
	if err != nil {
		t.Fatal(err)
	}
	if out != "fn(*Node, Size) -> i1\n" {
		t.Fatalf("output = %q", out)
	}

	out, err = runCLI(t, "--config", cfg, "types")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "{Size, *Node, i8}") || !strings.Contains(out, "Integer") {
		t.Fatalf("listing:\n%s", out)
	}

	if _, err := runCLI(t, "--config", cfg, "types", "Missing"); err == nil {
		t.Fatal("undefined name accepted")
	}
}

func TestSectionsCommandUsesCache(t *testing.T) {
	cfg := writeConfig(t)
	obj := filepath.Join(t.TempDir(), "min.o")
	if err := os.WriteFile(obj, testkit.MinimalELF(), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfg, "sections", "--ui", "off", "--format", "json", obj)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"format": "elf64"`) || strings.Contains(out, `"cached": true`) {
		t.Fatalf("first scan:\n%s", out)
	}
	out, err = runCLI(t, "--config", cfg, "sections", "--ui", "off", "--format", "json", obj)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"cached": true`) {
		t.Fatalf("second scan not cached:\n%s", out)
	}

	out, err = runCLI(t, "--config", cfg, "sections", "--ui", "off", "--format", "table", obj)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".text") || !strings.Contains(out, "0x1000") {
		t.Fatalf("table:\n%s", out)
	}
}

func TestSectionsCommandReportsFailures(t *testing.T) {
	cfg := writeConfig(t)
	junk := filepath.Join(t.TempDir(), "junk.o")
	if err := os.WriteFile(junk, []byte("junk"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, "--config", cfg, "sections", "--ui", "off", "--format", "summary", junk)
	if err == nil || !strings.Contains(err.Error(), "1 of 1 files failed") {
		t.Fatalf("err = %v", err)
	}
}

func TestPassesCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := runCLI(t, "--config", cfg, "passes", "--global", "main", "--global", "helper:external")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"  1 internalize", "  2 globaldce", "changed=true", "  main external"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "helper") {
		t.Fatalf("helper survived globaldce:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"tool": "llbridge"`) {
		t.Fatalf("output = %q", out)
	}
}

func TestReadUIMode(t *testing.T) {
	for _, in := range []string{"", "auto", "ON", " off "} {
		if _, err := readUIMode(in); err != nil {
			t.Errorf("readUIMode(%q): %v", in, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("invalid mode accepted")
	}
	if _, err := readUIMode("sometimes"); err == nil || !strings.Contains(err.Error(), "sections --ui") {
		t.Fatalf("error does not name the flag: %v", err)
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("explicit modes ignored")
	}
	t.Setenv("TERM", "dumb")
	if shouldUseTUI(uiModeAuto) {
		t.Fatal("auto mode picked the progress UI on a dumb terminal")
	}
}
