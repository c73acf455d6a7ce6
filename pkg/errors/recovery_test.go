package errors

import (
	"strings"
	"testing"
)

func TestSafeExecute(t *testing.T) {
	// Successful execution passes the error through unchanged.
	if err := SafeExecute("noop", func() error { return nil }); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}

	sentinel := New("boom")
	if err := SafeExecute("fails", func() error { return sentinel }); !Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}

	// Panics are converted into a PanicError.
	err := SafeExecute("panics", func() error { panic("unexpected precision") })
	if err == nil {
		t.Fatal("expected error from panicking function")
	}
	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if !strings.Contains(panicErr.Error(), "panics") {
		t.Errorf("error should name the operation: %v", panicErr.Error())
	}
}

func TestRecoverKeepsExistingError(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "TestRecoverKeepsExistingError")
		err = New("original")
		panic("after error")
	}
	err := fn()
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), "original") {
		t.Errorf("original error should be preserved: %v", err)
	}
}
