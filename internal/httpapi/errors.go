package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// WriteDomainError maps err's category onto a status code and error code.
// Internal errors hide their message.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	typ := domainerrors.TypeOf(err)
	msg := err.Error()
	if typ == domainerrors.ErrTypeInternal {
		msg = "internal server error"
	}
	WriteError(w, r, domainerrors.HTTPStatus(err), strings.ToLower(string(typ)), msg)
}
