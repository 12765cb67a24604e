package llvm

import (
	"sync"
	"testing"
)

func TestOwnedDisposesOnceAfterLastRelease(t *testing.T) {
	disposed := 0
	a := Acquire(TargetDataRef(0x10), func(td TargetDataRef) {
		if td != 0x10 {
			t.Errorf("dispose got %s", td)
		}
		disposed++
	})
	b := a.Share()
	c := b.Share()
	if a.Refs() != 3 {
		t.Fatalf("refs = %d, want 3", a.Refs())
	}

	a.Release()
	b.Release()
	if disposed != 0 {
		t.Fatalf("disposed with a reference still live")
	}
	if c.Raw() != 0x10 {
		t.Fatal("surviving reference lost the handle")
	}
	c.Release()
	if disposed != 1 {
		t.Fatalf("disposed %d times, want 1", disposed)
	}
}

func TestOwnedReleaseIsIdempotent(t *testing.T) {
	disposed := 0
	a := Acquire(PassManagerRef(1), func(PassManagerRef) { disposed++ })
	b := a.Share()
	a.Release()
	a.Release() // must not steal b's reference
	if disposed != 0 || b.Refs() != 1 {
		t.Fatalf("disposed=%d refs=%d", disposed, b.Refs())
	}
	b.Release()
	b.Release()
	if disposed != 1 {
		t.Fatalf("disposed %d times", disposed)
	}
	if !a.Released() || !b.Released() {
		t.Fatal("references not marked released")
	}
}

func TestOwnedPanics(t *testing.T) {
	cases := map[string]func(){
		"nil handle":  func() { Acquire(ObjectFileRef(0), func(ObjectFileRef) {}) },
		"nil dispose": func() { Acquire(ObjectFileRef(1), nil) },
		"raw after release": func() {
			o := Acquire(ObjectFileRef(1), func(ObjectFileRef) {})
			o.Release()
			o.Raw()
		},
		"share after release": func() {
			o := Acquire(ObjectFileRef(1), func(ObjectFileRef) {})
			o.Release()
			o.Share()
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestOwnedConcurrentRelease(t *testing.T) {
	var mu sync.Mutex
	disposed := 0
	root := Acquire(SectionIteratorRef(7), func(SectionIteratorRef) {
		mu.Lock()
		disposed++
		mu.Unlock()
	})
	refs := make([]*Owned[SectionIteratorRef], 64)
	for i := range refs {
		refs[i] = root.Share()
	}
	root.Release()

	var wg sync.WaitGroup
	for _, r := range refs {
		wg.Add(1)
		go func(r *Owned[SectionIteratorRef]) {
			defer wg.Done()
			r.Release()
		}(r)
	}
	wg.Wait()
	if disposed != 1 {
		t.Fatalf("disposed %d times, want 1", disposed)
	}
}
