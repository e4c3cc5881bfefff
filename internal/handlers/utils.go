package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/akolanti/GoIndex/internal/adapter"
	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

// WriteErrorResponse writes the error envelope used by every RPC failure.
func WriteErrorResponse(w http.ResponseWriter, httpCode int, kind string, id string, message string) {
	writeJsonResponse(w, httpCode, api.ErrorEnvelope{Error: api.ErrorBody{Kind: kind, Id: id, Message: message}})
}

func writeIndexError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := adapter.ToErrorBody(err)
	log := logRH.WithTrace(ctx)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "kind", body.Kind, "id", body.Id, "error", err)
	} else {
		log.Debug("request rejected", "kind", body.Kind, "id", body.Id, "error", err)
	}
	writeJsonResponse(w, status, api.ErrorEnvelope{Error: body})
}

// decodeBody reads one JSON value of at most MaxRequestBodyBytes and rejects unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, into interface{}) error {
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the request body", "error", err)
		}
	}(r.Body)

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return indexErrors.InvalidInput(op, "", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return indexErrors.InvalidInput(op, "", "malformed request body: "+err.Error())
	}
	return nil
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}
