package errcode

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(ShapeMismatch, "got %d, want %d", 3, 4)
	if !strings.Contains(err.Error(), "shape mismatch") {
		t.Errorf("message %q does not name the code", err.Error())
	}
	if !strings.Contains(err.Error(), "got 3, want 4") {
		t.Errorf("message %q does not carry the detail", err.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(Unknown, cause, "outer")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the cause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("message %q does not mention the cause", err.Error())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(SizeMismatch, "a")
	b := New(SizeMismatch, "b")
	c := New(ShapeMismatch, "c")
	if !errors.Is(a, b) {
		t.Error("errors with equal codes should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different codes should not match")
	}
}

func TestCodeOf(t *testing.T) {
	if CodeOf(New(IndexOutOfBounds, "x")) != IndexOutOfBounds {
		t.Error("CodeOf lost the code")
	}
	if CodeOf(fmt.Errorf("plain")) != Unknown {
		t.Error("CodeOf of a foreign error should be Unknown")
	}
	if CodeOf(nil) != Unknown {
		t.Error("CodeOf(nil) should be Unknown")
	}
}
