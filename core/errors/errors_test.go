package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvalidIdentifierError(t *testing.T) {
	tests := []struct {
		name    string
		err     *InvalidIdentifierError
		wantMsg string
	}{
		{
			name:    "table",
			err:     &InvalidIdentifierError{Kind: "table", Name: "1abc"},
			wantMsg: `invalid table name: "1abc"`,
		},
		{
			name:    "column",
			err:     &InvalidIdentifierError{Kind: "column", Name: "a-b"},
			wantMsg: `invalid column name: "a-b"`,
		},
		{
			name:    "no kind",
			err:     &InvalidIdentifierError{Name: ""},
			wantMsg: `invalid identifier: ""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrInvalidInput) {
				t.Error("InvalidIdentifierError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestEmptyColumnSetError(t *testing.T) {
	err := NewEmptyColumnSet("insert")
	if got := err.Error(); got != "insert requires at least one column" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("EmptyColumnSetError should unwrap to ErrInvalidInput")
	}

	bare := &EmptyColumnSetError{}
	if got := bare.Error(); got != "no columns provided" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBindError(t *testing.T) {
	err := NewBind(2, "unsupported value kind")
	if got := err.Error(); got != "cannot bind parameter 2: unsupported value kind" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("BindError should unwrap to ErrInvalidInput")
	}

	underlying := fmt.Errorf("encode failed")
	wrapped := &BindError{Position: 0, Message: "bad value", Err: underlying}
	if got := wrapped.Unwrap(); got != underlying {
		t.Errorf("Unwrap() = %v, want %v", got, underlying)
	}
}

func TestExecutionError(t *testing.T) {
	driverErr := fmt.Errorf("UNIQUE constraint failed: notebooks.id")
	err := NewExecution("INSERT INTO notebooks (id) VALUES (?)", driverErr)

	if got := err.Error(); got != "statement failed: UNIQUE constraint failed: notebooks.id" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, driverErr) {
		t.Error("ExecutionError should unwrap to the driver error")
	}

	bare := &ExecutionError{Statement: "DELETE FROM t"}
	if !errors.Is(bare, ErrExecution) {
		t.Error("ExecutionError without underlying error should unwrap to ErrExecution")
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("JSON", "unexpected end of input")
	if got := err.Error(); got != "failed to parse JSON: unexpected end of input" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name    string
		err     *NotFoundError
		wantMsg string
	}{
		{
			name:    "with ID",
			err:     &NotFoundError{Resource: "notebook", ID: "42"},
			wantMsg: "notebook not found: 42",
		},
		{
			name:    "without ID",
			err:     &NotFoundError{Resource: "server"},
			wantMsg: "server not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if !errors.Is(tt.err, ErrNotFound) {
				t.Error("NotFoundError should unwrap to ErrNotFound")
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := Wrap(base, "context")
	if wrapped.Error() != "context: base" {
		t.Errorf("Wrap() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "op %s", "x") != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := Wrapf(base, "op %d", 7)
	if wrapped.Error() != "op 7: base" {
		t.Errorf("Wrapf() = %q", wrapped.Error())
	}
}

func TestIsAs(t *testing.T) {
	err := NewInvalidIdentifier("table", "drop table")
	if !Is(err, ErrInvalidInput) {
		t.Error("Is() should match ErrInvalidInput")
	}

	var identErr *InvalidIdentifierError
	if !As(err, &identErr) {
		t.Error("As() should extract *InvalidIdentifierError")
	}
	if identErr.Name != "drop table" {
		t.Errorf("extracted Name = %q", identErr.Name)
	}
}
