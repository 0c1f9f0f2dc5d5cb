package search

import (
	"errors"
	"net/http"

	"feedsearch/internal/domain/apperr"
	"feedsearch/internal/handler/http/respond"
)

// statusFor maps an apperr.Kind to the HTTP status spec §7 assigns it. Kinds
// that are never supposed to reach this layer (StoreError, DirectoryError)
// fall back to 500, since the orchestrator already recovered them locally —
// seeing one here would itself be a bug.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindCrawlerError, apperr.KindSerializationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondError dispatches err to the client per the apperr.Error taxonomy,
// grounded on the teacher's respond.AppError{UserMsg, Err, Code} dispatch.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		respond.JSON(w, statusFor(appErr.Kind), map[string]string{"error": appErr.UserMsg})
		return
	}
	respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
