package otypes

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/meridb/otypes/errors"
	"github.com/meridb/otypes/native/nativetest"
)

func TestNewEnvironment_NilClient(t *testing.T) {
	if _, err := NewEnvironment(nil); err == nil {
		t.Fatal("expected error for nil client")
	}
}

func TestEnvironment_CloseRefusesLiveHandles(t *testing.T) {
	env, fake, conn := newTestEnv(t)
	ot := describeScenarioType(t, fake, conn, "SCHEMA.PERSON_T")

	err := env.Close()
	if err == nil {
		t.Fatal("Close must fail while handles are live")
	}
	if !strings.Contains(err.Error(), "still open") {
		t.Fatalf("unexpected close error: %v", err)
	}

	if err := ot.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Conn.Close failed: %v", err)
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close failed after teardown: %v", err)
	}
}

func TestEnvironment_NoAllocationAfterClose(t *testing.T) {
	fake := nativetest.NewFake()
	env, err := NewEnvironment(fake)
	if err != nil {
		t.Fatalf("NewEnvironment failed: %v", err)
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err = env.NewConn(fake.Conn())
	if !stderrors.Is(err, &errors.Error{Code: errors.CodeAllocation}) {
		t.Fatalf("expected allocation error after Close, got %v", err)
	}
}

func TestConn_ReleaseTwice(t *testing.T) {
	_, _, conn := newTestEnv(t)

	if err := conn.Release(); err != nil {
		t.Fatalf("first Release failed: %v", err)
	}
	if err := conn.Release(); !stderrors.Is(err, &errors.Error{Code: errors.CodeInvalidHandle}) {
		t.Fatalf("expected invalid_handle on second release, got %v", err)
	}
}

func TestConn_DescriptorKeepsConnAlive(t *testing.T) {
	_, fake, conn := newTestEnv(t)
	ot := describeScenarioType(t, fake, conn, "SCHEMA.PERSON_T")

	if err := conn.Close(); err != nil {
		t.Fatalf("Conn.Close failed: %v", err)
	}
	// The descriptor still holds the connection.
	if _, err := ot.GetInfo(); err != nil {
		t.Fatalf("descriptor unusable while it holds the connection: %v", err)
	}

	if err := ot.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	// Last descriptor gone, the connection is now freed too.
	if err := conn.AddRef(); !stderrors.Is(err, &errors.Error{Code: errors.CodeInvalidHandle}) {
		t.Fatalf("expected freed connection, got %v", err)
	}
}
