package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := InvalidHandle("ObjectType.GetInfo", "object type")
	want := "[ObjectType.GetInfo] invalid_handle: handle is not a valid object type"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestError_CauseChain(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := External("Conn.DescribeType", "describe type", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to match")
	}
	if got := err.Error(); got != "[Conn.DescribeType] external_service: describe type (caused by: connection reset)" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestError_CodeMatching(t *testing.T) {
	err := ArrayTooSmall("ObjectType.GetAttributes", 3, 2)

	if !stderrors.Is(err, &Error{Code: CodeArraySizeTooSmall}) {
		t.Fatal("expected code match on array_size_too_small")
	}
	if stderrors.Is(err, &Error{Code: CodeInvalidHandle}) {
		t.Fatal("codes should not cross-match")
	}
}

func TestError_DetailFormatting(t *testing.T) {
	err := ArrayTooSmall("op", 5, 3)
	want := "[op] array_size_too_small: destination holds 3 attributes, type has 5"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
