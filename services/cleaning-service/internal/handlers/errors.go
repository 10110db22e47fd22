package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/propdesk/backoffice/libs/httpx"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

// writeError maps engine errors to status codes. Anything outside the engine taxonomy is a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		httpx.WriteError(w, http.StatusBadRequest, model.KindValidation.String(), validationMessage(ve))
		return
	}

	var e *model.Error
	if !errors.As(err, &e) {
		logger.ErrorContext(r.Context(), "request failed", "err", err, "path", r.URL.Path)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	switch e.Kind {
	case model.KindValidation:
		httpx.WriteError(w, http.StatusBadRequest, e.Kind.String(), e.Error())
	case model.KindNotFound:
		httpx.WriteError(w, http.StatusNotFound, e.Kind.String(), e.Error())
	case model.KindConflict:
		httpx.WriteError(w, http.StatusConflict, e.Kind.String(), e.Error())
	case model.KindAlreadyBooked:
		httpx.WriteError(w, http.StatusConflict, e.Kind.String(), "this slot was just taken")
	case model.KindExpiredSlot:
		httpx.WriteError(w, http.StatusGone, e.Kind.String(), e.Error())
	case model.KindDaysWithBookings:
		httpx.WriteJSON(w, http.StatusConflict, httpx.ErrorBody{
			Error:   e.Kind.String(),
			Message: e.Error(),
			Days:    e.Days,
		})
	default:
		logger.ErrorContext(r.Context(), "unmapped engine error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func validationMessage(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid request"
	}
	fe := ve[0]
	return "field " + fe.Namespace() + " failed '" + fe.Tag() + "' validation"
}
