package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotBuilt, "symbol index not built")
		if err.Error() != "[NOT_BUILT] symbol index not built" {
			t.Errorf("expected [NOT_BUILT] symbol index not built, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("disk full")
		err := Wrap(original, CodeStorage, "save symbol index")
		expected := "[STORAGE_ERROR] save symbol index: disk full"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := New(CodeNotFound, "directory not found")
		err = AddContext(err, CtxPath, "/tmp/x")
		err = AddContext(err, CtxOperation, "build")
		expected := "[NOT_FOUND] directory not found {operation=build path=/tmp/x}"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContextPromotesPlainErrors", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxPath, "a.R")
		if !IsCode(err, CodeInternal) {
			t.Errorf("expected CodeInternal, got %s", CodeOf(err))
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		inner := New(CodePermissionDenied, "create storage directory")
		err := fmt.Errorf("build index: %w", inner)
		if !IsCode(err, CodePermissionDenied) {
			t.Error("expected IsCode to see through fmt.Errorf wrapping")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
		if CodeOf(errors.New("plain")) != "" {
			t.Error("expected empty code for plain error")
		}
	})
}
