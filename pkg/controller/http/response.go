package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
	"github.com/secmon-lab/grc-risk/pkg/utils/errutil"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

// errBadRequest marks malformed requests
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write response", "error", err)
	}
}

// writeError maps err to a status code. Validation failures carry the
// field errors, other errors a single message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if verr, ok := model.AsValidationError(err); ok {
		writeJSON(ctx, w, http.StatusUnprocessableEntity, verr)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		errutil.HandleHTTP(ctx, w, err, status)
		return
	}

	logging.From(ctx).Info("request rejected", "status", status, "error", err.Error())
	writeJSON(ctx, w, status, errorResponse{Error: http.StatusText(status)})
}
