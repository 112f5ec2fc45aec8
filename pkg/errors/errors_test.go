package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeValidation, "quantity must be non-negative")

	if err.Code() != CodeValidation {
		t.Fatalf("unexpected code %q", err.Code())
	}
	if err.Message() != "quantity must be non-negative" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if got := err.Error(); got != "VALIDATION_ERROR: quantity must be non-negative" {
		t.Fatalf("unexpected error string %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeDependency, cause, "load estimate")

	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %q", err.Code())
	}
}

func TestAsUnwrapsThroughFmt(t *testing.T) {
	inner := New(CodeNotFound, "estimate missing")
	outer := fmt.Errorf("handling request: %w", inner)

	typed := As(outer)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected typed error, got %v", typed)
	}

	if As(errors.New("plain")) != nil {
		t.Fatal("plain errors must not convert")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback status %d", meta.HTTPStatus)
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, errors.New("root"), "persist items")
	d := Dump(err)

	if d.Code != CodeDependency {
		t.Fatalf("unexpected code %q", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", d.Chain)
	}
}
