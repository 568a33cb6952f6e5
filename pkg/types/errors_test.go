package types_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/calque-lang/calque/pkg/types"
)

func TestErrorFormatting(t *testing.T) {
	err := types.NewError(types.ErrUnknownToken, "unrecognized token", 4).WithToken("@@")
	msg := err.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	if types.CodeOf(err) != types.ErrUnknownToken {
		t.Errorf("CodeOf = %q, want %q", types.CodeOf(err), types.ErrUnknownToken)
	}
}

func TestCodeOfWrappedError(t *testing.T) {
	inner := types.NewError(types.ErrDivisionByZero, "division by zero", -1)
	wrapped := fmt.Errorf("evaluating: %w", inner)
	if types.CodeOf(wrapped) != types.ErrDivisionByZero {
		t.Errorf("CodeOf through wrap = %q", types.CodeOf(wrapped))
	}
	if types.CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf of plain error should be empty")
	}
}

func TestErrorUnwrapCause(t *testing.T) {
	cause := errors.New("boom")
	err := types.NewError(types.ErrConversionFailed, "conversion failed", -1).WithCause(cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}
