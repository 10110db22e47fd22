package handlers

import (
	"log/slog"
	"net/http"

	"github.com/propdesk/backoffice/libs/httpx"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cleaning"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

// TenantHandler serves the booking calendar to residents.
type TenantHandler struct {
	svc    *cleaning.Service
	logger *slog.Logger
}

func NewTenantHandler(svc *cleaning.Service, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{svc: svc, logger: logger}
}

func (h *TenantHandler) forbidden(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden, "forbidden", "not a resident of this building")
}

func (h *TenantHandler) Availability(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	buildingID := r.PathValue("building_id")
	if !p.CanAccess(buildingID) {
		h.forbidden(w)
		return
	}
	month, err := calendar.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeError(w, r, h.logger, model.Validationf("%v", err))
		return
	}

	avail, err := h.svc.DaysWithOpenSlots(r.Context(), buildingID, month)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, avail)
}

func (h *TenantHandler) AvailabilityForDate(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	buildingID := r.PathValue("building_id")
	if !p.CanAccess(buildingID) {
		h.forbidden(w)
		return
	}
	month, err := calendar.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeError(w, r, h.logger, model.Validationf("%v", err))
		return
	}
	date, err := calendar.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, r, h.logger, model.Validationf("%v", err))
		return
	}
	if date.MonthOf() != month {
		writeError(w, r, h.logger, model.Validationf("date %s is not in %s", date, month))
		return
	}

	slots, err := h.svc.OpenSlotsOn(r.Context(), buildingID, date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}

func (h *TenantHandler) Book(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	scheduleID := r.PathValue("id")
	sch, err := h.svc.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !p.CanAccess(sch.BuildingID) {
		h.forbidden(w)
		return
	}

	slot, err := h.svc.BookSlot(r.Context(), scheduleID, r.PathValue("slot_id"), p.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, slot)
}

func (h *TenantHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	scheduleID := r.PathValue("id")
	sch, err := h.svc.GetSchedule(r.Context(), scheduleID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !p.CanAccess(sch.BuildingID) {
		h.forbidden(w)
		return
	}

	slots, err := h.svc.SlotsBookedBy(r.Context(), scheduleID, p.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"schedule_id": scheduleID, "slots": slots})
}
