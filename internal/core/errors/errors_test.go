package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "definition not found")
		if err.Error() != "[NOT_FOUND] definition not found" {
			t.Errorf("expected [NOT_FOUND] definition not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeInvalidInput, "reference without scope")
		if !IsCode(err, CodeInvalidInput) {
			t.Error("expected IsCode to return true for CodeInvalidInput")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeCycle, "re-export cycle")
		if !IsCode(err, CodeCycle) {
			t.Error("expected IsCode to return true for wrapped CodeCycle")
		}
	})

	t.Run("WithContext", func(t *testing.T) {
		err := New(CodeUnresolved, "could not resolve").
			WithContext(CtxPath, "src/main.ts").
			WithContext(CtxSymbol, "helper")
		if !IsCode(err, CodeUnresolved) {
			t.Error("expected CodeUnresolved after WithContext")
		}
		if err.Context[CtxSymbol] != "helper" {
			t.Errorf("expected context symbol helper, got %v", err.Context[CtxSymbol])
		}
	})
}
