package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainErrorWrapping(t *testing.T) {
	root := stderrors.New("connection refused")
	err := Unavailable("fetch dataset", root)

	if !stderrors.Is(err, root) {
		t.Fatalf("expected wrapped root error to be reachable")
	}
	if got := err.Error(); got != "UNAVAILABLE: fetch dataset: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
	if len(err.StackTrace()) == 0 {
		t.Fatalf("expected a captured stack")
	}
}

func TestTypeOfAndStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		typ    ErrorType
		status int
	}{
		{"not found", NotFound("asset", nil), ErrTypeNotFound, http.StatusNotFound},
		{"invalid", InvalidInput("csv", nil), ErrTypeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("token", nil), ErrTypeUnauthorized, http.StatusUnauthorized},
		{"unavailable", Unavailable("upstream", nil), ErrTypeUnavailable, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("outer: %w", InvalidInput("csv", nil)), ErrTypeInvalidInput, http.StatusBadRequest},
		{"plain", stderrors.New("boom"), ErrTypeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := TypeOf(tc.err); got != tc.typ {
			t.Fatalf("%s: TypeOf=%s want %s", tc.name, got, tc.typ)
		}
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Fatalf("%s: HTTPStatus=%d want %d", tc.name, got, tc.status)
		}
	}
	if Is(nil, ErrTypeInternal) {
		t.Fatalf("nil error must not match any type")
	}
}
