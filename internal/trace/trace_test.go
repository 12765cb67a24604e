package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "session", "resource", "debug"} {
		l, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if l.String() != name {
			t.Errorf("round trip %q -> %q", name, l.String())
		}
	}
	if _, err := ParseLevel("phase"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if l, err := ParseLevel("DEBUG"); err != nil || l != LevelDebug {
		t.Fatalf("case-insensitive parse: %v %v", l, err)
	}
}

func TestShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeSession, false},
		{LevelError, ScopeSession, false},
		{LevelSession, ScopeFile, true},
		{LevelSession, ScopeResource, false},
		{LevelResource, ScopeResource, true},
		{LevelResource, ScopeCall, false},
		{LevelDebug, ScopeCall, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelResource, FormatText)

	span := Begin(tr, ScopeSession, "session", 0)
	Point(tr, ScopeResource, "create:targetdata", "targetdata@0x1")
	Point(tr, ScopeCall, "TypeKind", "") // filtered at LevelResource
	span.WithExtra("files", "2").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ session") || !strings.Contains(out, "← session (ok) {files=2}") {
		t.Fatalf("missing span lines:\n%s", out)
	}
	if !strings.Contains(out, "• create:targetdata (targetdata@0x1)") {
		t.Fatalf("missing point line:\n%s", out)
	}
	if strings.Contains(out, "TypeKind") {
		t.Fatalf("call-scope event leaked at resource level:\n%s", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeCall, "GetSections", "objectfile@0x2")

	var ev map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if ev["name"] != "GetSections" || ev["scope"] != "call" || ev["kind"] != "point" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestErrorsPassEveryEnabledLevel(t *testing.T) {
	ring := NewRingTracer(8, LevelError)
	Point(ring, ScopeSession, "session", "")
	Error(ring, ScopeFile, "scan:a.o", errors.New("boom"))
	events := ring.Snapshot()
	if len(events) != 1 || events[0].Kind != KindError || events[0].Detail != "boom" {
		t.Fatalf("events = %+v", events)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeCall, name, "")
	}
	got := ring.Snapshot()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"c", "d", "e"} {
		if got[i].Name != want {
			t.Errorf("event %d = %q, want %q", i, got[i].Name, want)
		}
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("LevelOff tracer must be disabled")
	}
	span := Begin(tr, ScopeSession, "x", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatal("span on disabled tracer must be inert")
	}
}

func TestNewBothHasRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelSession, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("got %T, want *MultiTracer", tr)
	}
	Point(tr, ScopeFile, "scan:x.o", "")
	ring, ok := multi.Ring()
	if !ok || len(ring.Snapshot()) != 1 {
		t.Fatal("ring did not receive the event")
	}
	if !strings.Contains(buf.String(), "scan:x.o") {
		t.Fatal("stream did not receive the event")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should give Nop")
	}
	ring := NewRingTracer(4, LevelSession)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated")
	}
	span := Begin(ring, ScopeSession, "root", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("CurrentSpan = %d, want %d", CurrentSpan(ctx), span.ID())
	}
}
