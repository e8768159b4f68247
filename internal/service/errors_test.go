package service

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "question",
				Message: "cannot be empty",
			},
			want: "validation error on field question: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
		wantMsg string
	}{
		{
			name:    "nil error",
			err:     nil,
			msg:     "context",
			wantNil: true,
		},
		{
			name:    "wrapped error",
			err:     errors.New("original error"),
			msg:     "context",
			wantNil: false,
			wantMsg: "context: original error",
		},
		{
			name:    "empty message",
			err:     errors.New("original error"),
			msg:     "",
			wantNil: false,
			wantMsg: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Errorf("WrapError() = nil, want error")
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %v, want %v", got.Error(), tt.wantMsg)
			}
			// Verify error wrapping
			if !errors.Is(got, tt.err) {
				t.Errorf("WrapError() should wrap original error")
			}
		})
	}
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	var err error = &ValidationError{Field: "query", Message: "is required"}
	wrapped := WrapError(err, "failed to query")

	if !errors.Is(wrapped, ErrInvalidInput) {
		t.Error("wrapped ValidationError should match ErrInvalidInput")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Error("ValidationError should not match ErrNotFound")
	}

	var ve *ValidationError
	if !errors.As(wrapped, &ve) || ve.Field != "query" {
		t.Errorf("errors.As() = %v, want field query", ve)
	}
}

func TestWrapKind(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name    string
		kind    error
		err     error
		wantNil bool
		wantMsg string
	}{
		{name: "nil error", kind: ErrExternalService, err: nil, wantNil: true},
		{
			name:    "external service",
			kind:    ErrExternalService,
			err:     cause,
			wantMsg: "failed to embed query: external service error: connection refused",
		},
		{
			name:    "unavailable",
			kind:    ErrUnavailable,
			err:     cause,
			wantMsg: "failed to embed query: service unavailable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapKind(tt.kind, tt.err, "failed to embed query")
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapKind() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapKind() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.kind) {
				t.Errorf("WrapKind() should match kind %v", tt.kind)
			}
			if !errors.Is(got, cause) {
				t.Error("WrapKind() should wrap the cause")
			}
		})
	}
}
