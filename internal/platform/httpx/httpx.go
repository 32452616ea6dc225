// Package httpx junta los helpers de respuesta JSON que antes estaban duplicados por módulo.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/logger"
)

// maxBodyBytes limita el tamaño de los bodies JSON de entrada.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error     string   `json:"error"`
	Fields    []string `json:"fields,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodifica el body rechazando campos desconocidos.
// Un body vacío se trata como "{}".
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return decodeError(err)
	}
	return nil
}

// decodeError conserva el campo culpable cuando encoding/json lo informa.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Invalid("invalid type", typeErr.Field)
	}
	// encoding/json no tiene un tipo para esto: `json: unknown field "x"`
	if rest, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		if field, uerr := strconv.Unquote(rest); uerr == nil {
			return apperr.Invalid("unknown field", field)
		}
	}
	return apperr.Invalid("invalid json")
}

func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

// WriteError traduce un error de dominio a status + body.
// Los errores inesperados se loguean y se reportan genéricos.
func WriteError(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *apperr.ValidationError
	var rl *apperr.RateLimitError

	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Msg, Fields: verr.Fields})
	case errors.Is(err, apperr.ErrUnauthorized):
		Unauthorized(w)
	case errors.Is(err, apperr.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &rl):
		secs := int(rl.RetryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		WriteJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limited", Retryable: true})
	case errors.Is(err, apperr.ErrUpstreamTimeout):
		logUnexpected(log, "upstream timeout", err)
		WriteJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "upstream timeout", Retryable: true})
	case errors.Is(err, apperr.ErrUpstream):
		logUnexpected(log, "upstream failure", err)
		WriteJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream failure"})
	case errors.Is(err, apperr.ErrConflict):
		WriteJSON(w, http.StatusConflict, errorResponse{Error: "conflict"})
	default:
		logUnexpected(log, "internal error", err)
		WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func logUnexpected(log logger.Logger, msg string, err error) {
	if log == nil {
		return
	}
	log.Error(msg, map[string]any{"err": err})
}
