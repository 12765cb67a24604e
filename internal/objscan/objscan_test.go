package objscan

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"llbridge/internal/config"
	"llbridge/internal/session"
	"llbridge/internal/testkit"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestScanObject(t *testing.T) {
	s, err := session.Open(config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := ScanObject(s, "min.o", testkit.MinimalELF())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("scan leaked: %v", err)
	}
	if res.Format != "elf64" {
		t.Fatalf("format = %q", res.Format)
	}
	// null section plus the three named ones
	if len(res.Sections) != len(testkit.MinimalELFSections)+1 {
		t.Fatalf("sections = %+v", res.Sections)
	}
	text := res.Sections[1]
	if text.Name != ".text" || text.Digest != Digest(sha256.Sum256(testkit.MinimalELFText)) {
		t.Fatalf(".text = %+v", text)
	}
	if bss := res.Sections[2]; bss.Digest != (Digest{}) {
		t.Fatalf(".bss should have a zero digest, got %s", bss.Digest.Short())
	}
	var want uint64
	for _, sec := range testkit.MinimalELFSections {
		want += sec.Size
	}
	if res.TotalSize() != want {
		t.Fatalf("TotalSize = %d, want %d", res.TotalSize(), want)
	}
}

func TestScanObjectRejectsGarbage(t *testing.T) {
	s, err := session.Open(config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ScanObject(s, "junk", []byte("garbage")); err == nil {
		t.Fatal("garbage scanned")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "lib/b.o", nil)
	a := writeFile(t, dir, "lib/a.so", nil)
	writeFile(t, dir, "lib/README", nil)
	plain := writeFile(t, dir, "plain.bin", nil)

	got, err := ExpandPaths([]string{filepath.Join(dir, "lib"), plain})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{a, b, plain}
	if len(got) != len(want) {
		t.Fatalf("ExpandPaths = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ExpandPaths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if _, err := ExpandPaths([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("missing path accepted")
	}
}

func TestScanFilesReportsPerFileErrors(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.o", testkit.MinimalELF()),
		writeFile(t, dir, "junk.o", []byte("junk")),
		filepath.Join(dir, "missing.o"),
		writeFile(t, dir, "c.o", testkit.MinimalELF()),
	}
	var seen atomic.Int32
	results, err := ScanFiles(context.Background(), paths, Options{
		Jobs:   2,
		OnFile: func(*Result) { seen.Add(1) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if int(seen.Load()) != len(paths) {
		t.Fatalf("OnFile called %d times", seen.Load())
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Fatalf("result %d is for %s", i, res.Path)
		}
	}
	if results[0].Err != nil || results[3].Err != nil {
		t.Fatalf("valid objects failed: %v / %v", results[0].Err, results[3].Err)
	}
	if len(Failed(results)) != 2 || Join(results) == nil {
		t.Fatalf("failed = %+v", Failed(results))
	}
}

func TestScanFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.o", testkit.MinimalELF())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScanFiles(ctx, []string{p}, Options{}); err == nil {
		t.Fatal("cancelled scan returned no error")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	p := writeFile(t, dir, "a.o", testkit.MinimalELF())

	first, err := ScanFiles(context.Background(), []string{p}, Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached {
		t.Fatal("first scan came from an empty cache")
	}
	second, err := ScanFiles(context.Background(), []string{p}, Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	got := second[0]
	if !got.Cached || got.Format != first[0].Format || len(got.Sections) != len(first[0].Sections) {
		t.Fatalf("cached result = %+v", got)
	}
	for i := range got.Sections {
		if got.Sections[i] != first[0].Sections[i] {
			t.Fatalf("section %d = %+v, want %+v", i, got.Sections[i], first[0].Sections[i])
		}
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get(got.Digest, p); ok || err != nil {
		t.Fatalf("entry survived DropAll: %v, %v", ok, err)
	}
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	if err := c.Put(&Result{}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(Digest{}, "x"); ok {
		t.Fatal("nil cache hit")
	}
}

func TestOpenUserCacheHonoursXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	c, err := OpenUserCache("llbridge")
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != filepath.Join(base, "llbridge") {
		t.Fatalf("dir = %q", c.Dir())
	}
}
