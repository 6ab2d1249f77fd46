package handle

import (
	stderrors "errors"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/meridb/otypes/errors"
)

type testResource struct {
	State
	freed int
}

func newTestResource(t *testing.T, r *Registry, kind Kind) *testResource {
	t.Helper()
	res := &testResource{}
	if err := r.Allocate(res, kind, func() { res.freed++ }); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	return res
}

func TestRegistry_AllocateRelease(t *testing.T) {
	reg := NewRegistry(zaptest.NewLogger(t))
	res := newTestResource(t, reg, KindConn)

	if got := res.RefCount(); got != 1 {
		t.Fatalf("expected refcount 1 after allocate, got %d", got)
	}
	if got := res.Kind(); got != KindConn {
		t.Fatalf("expected kind %v, got %v", KindConn, got)
	}
	if got := reg.Live(); got != 1 {
		t.Fatalf("expected 1 live handle, got %d", got)
	}

	if err := reg.Release(res, KindConn, "test"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if res.freed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", res.freed)
	}
	if got := res.Kind(); got != KindInvalid {
		t.Fatalf("expected kind invalid after free, got %v", got)
	}
	if got := reg.Live(); got != 0 {
		t.Fatalf("expected 0 live handles, got %d", got)
	}
}

func TestRegistry_ReleaseTwice(t *testing.T) {
	reg := NewRegistry(nil)
	res := newTestResource(t, reg, KindObjectType)

	if err := reg.Release(res, KindObjectType, "test"); err != nil {
		t.Fatalf("first Release failed: %v", err)
	}
	err := reg.Release(res, KindObjectType, "test")
	if err == nil {
		t.Fatal("second Release should fail")
	}
	if !stderrors.Is(err, &errors.Error{Code: errors.CodeInvalidHandle}) {
		t.Fatalf("expected invalid_handle, got %v", err)
	}
	if res.freed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", res.freed)
	}
}

func TestRegistry_WrongKind(t *testing.T) {
	reg := NewRegistry(nil)
	res := newTestResource(t, reg, KindObjectType)

	if err := reg.AddRef(res, KindObject, "test"); err == nil {
		t.Fatal("AddRef with wrong kind should fail")
	}
	if err := reg.Release(res, KindConn, "test"); err == nil {
		t.Fatal("Release with wrong kind should fail")
	}
	if err := reg.Begin(res, KindObject, "test"); err == nil {
		t.Fatal("Begin with wrong kind should fail")
	}

	// The handle is still intact after the rejected operations.
	if err := reg.Begin(res, KindObjectType, "test"); err != nil {
		t.Fatalf("Begin with correct kind failed: %v", err)
	}
	if got := res.RefCount(); got != 1 {
		t.Fatalf("expected refcount 1, got %d", got)
	}
	if err := reg.Release(res, KindObjectType, "test"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}

func TestRegistry_UseAfterFree(t *testing.T) {
	reg := NewRegistry(nil)
	res := newTestResource(t, reg, KindObject)

	if err := reg.Release(res, KindObject, "test"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	for _, err := range []error{
		reg.AddRef(res, KindObject, "test"),
		reg.Begin(res, KindObject, "test"),
		reg.Release(res, KindObject, "test"),
	} {
		if !stderrors.Is(err, &errors.Error{Code: errors.CodeInvalidHandle}) {
			t.Fatalf("expected invalid_handle on freed handle, got %v", err)
		}
	}
}

func TestRegistry_AddRefKeepsAlive(t *testing.T) {
	reg := NewRegistry(nil)
	res := newTestResource(t, reg, KindConn)

	if err := reg.AddRef(res, KindConn, "test"); err != nil {
		t.Fatalf("AddRef failed: %v", err)
	}
	if err := reg.Release(res, KindConn, "test"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if res.freed != 0 {
		t.Fatal("destructor ran while a reference remained")
	}
	if err := reg.Release(res, KindConn, "test"); err != nil {
		t.Fatalf("final Release failed: %v", err)
	}
	if res.freed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", res.freed)
	}
}

func TestRegistry_AdjustRefAdoption(t *testing.T) {
	reg := NewRegistry(nil)
	res := newTestResource(t, reg, KindObjectType)

	// A child adopting two references, then handing both back.
	reg.AdjustRef(res, 2)
	if got := res.RefCount(); got != 3 {
		t.Fatalf("expected refcount 3, got %d", got)
	}
	reg.AdjustRef(res, -2)
	if res.freed != 0 {
		t.Fatal("destructor ran early")
	}
	reg.AdjustRef(res, -1)
	if res.freed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", res.freed)
	}
}

func TestRegistry_ConcurrentRefCounting(t *testing.T) {
	reg := NewRegistry(nil)
	res := newTestResource(t, reg, KindConn)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if err := reg.AddRef(res, KindConn, "test"); err != nil {
					t.Errorf("AddRef failed: %v", err)
					return
				}
				if err := reg.Release(res, KindConn, "test"); err != nil {
					t.Errorf("Release failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := res.RefCount(); got != 1 {
		t.Fatalf("expected refcount 1 after balanced churn, got %d", got)
	}
	if res.freed != 0 {
		t.Fatal("destructor ran during balanced churn")
	}
	if err := reg.Release(res, KindConn, "test"); err != nil {
		t.Fatalf("final Release failed: %v", err)
	}
	if res.freed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", res.freed)
	}
}

func TestRegistry_ClosedAllocate(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Close()

	res := &testResource{}
	err := reg.Allocate(res, KindConn, nil)
	if !stderrors.Is(err, &errors.Error{Code: errors.CodeAllocation}) {
		t.Fatalf("expected allocation error after Close, got %v", err)
	}
}
