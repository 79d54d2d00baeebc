package alloc

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/wippyai/borsh/errors"
)

func TestHeap_Accounting(t *testing.T) {
	h := NewHeap()

	p1, err := h.Alloc(16, 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	p2, err := h.Alloc(4, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if p1 == 0 || p2 == 0 {
		t.Fatalf("got zero handle: %d, %d", p1, p2)
	}
	if p1 == p2 {
		t.Fatalf("handles collide: %d", p1)
	}

	st := h.Stats()
	if st.Live != 2 || st.InUse != 20 || st.Allocs != 2 {
		t.Errorf("stats after alloc = %+v", st)
	}

	h.Free(p2, 4, 1)
	h.Free(p1, 16, 8)

	st = h.Stats()
	if st.Live != 0 || st.InUse != 0 || st.Frees != 2 {
		t.Errorf("stats after free = %+v", st)
	}
	if st.Peak != 20 {
		t.Errorf("peak = %d, want 20", st.Peak)
	}
	if h.Live() != 0 {
		t.Errorf("Live() = %d", h.Live())
	}
}

func TestHeap_Limit(t *testing.T) {
	h := NewHeap(WithLimit(10))

	p, err := h.Alloc(8, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	_, err = h.Alloc(4, 1)
	if err == nil {
		t.Fatal("expected allocation error over limit")
	}
	if !stderrors.Is(err, errors.Sentinel(errors.KindAllocation)) {
		t.Errorf("error kind = %v, want allocation", err)
	}

	h.Free(p, 8, 1)
	if _, err := h.Alloc(10, 1); err != nil {
		t.Errorf("Alloc after free: %v", err)
	}
}

func TestHeap_BadAlignment(t *testing.T) {
	h := NewHeap()
	for _, align := range []uint32{0, 3, 6, 12} {
		if _, err := h.Alloc(1, align); err == nil {
			t.Errorf("align %d: expected error", align)
		}
	}
}

func TestHeap_FreeUnknownIsIgnored(t *testing.T) {
	h := NewHeap()
	p, _ := h.Alloc(4, 4)
	h.Free(p+100, 4, 4)
	if h.Live() != 1 {
		t.Errorf("Live() = %d, want 1", h.Live())
	}
}

func TestHeap_Concurrent(t *testing.T) {
	h := NewHeap()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				p, err := h.Alloc(8, 8)
				if err != nil {
					t.Error(err)
					return
				}
				h.Free(p, 8, 8)
			}
		}()
	}
	wg.Wait()

	st := h.Stats()
	if st.Live != 0 || st.Allocs != 800 || st.Frees != 800 {
		t.Errorf("stats = %+v", st)
	}
}
