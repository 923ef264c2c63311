package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewServer(t *testing.T) {
	// Arrange
	cause := errors.New("connection reset")

	// Act
	err := NewServer(cause)

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.Msg() != "Internal server error" {
		t.Fatalf("msg = %q", gerr.Msg())
	}
	if gerr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status = %d", gerr.StatusCode())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be wrapped")
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeGone, http.StatusGone},
		{CodeTooManyRequest, http.StatusTooManyRequests},
		{Code(99), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			// Act
			err := NewBusiness("x", tt.code)

			// Assert
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if gerr.StatusCode() != tt.want {
				t.Fatalf("status = %d, want %d", gerr.StatusCode(), tt.want)
			}
		})
	}
}

func TestNewInvalidInput_Fields(t *testing.T) {
	// Act
	err := NewInvalidInput(nil, "otp", "otp must be 6 digits")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.Type() != TypeValidation {
		t.Fatalf("type = %s", gerr.Type())
	}
	if gerr.Fields()["otp"] != "otp must be 6 digits" {
		t.Fatalf("fields = %v", gerr.Fields())
	}
}

func TestNewInvalidInput_OddPairs(t *testing.T) {
	// Act
	err := NewInvalidInput(nil, "only-key")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if gerr.Code() != CodeInvalidFormat {
		t.Fatalf("code = %s", gerr.Code())
	}
}

func TestNewBusinessData(t *testing.T) {
	// Act
	err := NewBusinessData("Please wait", CodeTooManyRequest, map[string]int{"waitTime": 42})

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	data, ok := gerr.Data().(map[string]int)
	if !ok || data["waitTime"] != 42 {
		t.Fatalf("data = %#v", gerr.Data())
	}
}
