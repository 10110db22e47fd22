package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/propdesk/backoffice/libs/httpx"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cleaning"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
)

type ScheduleHandler struct {
	svc      *cleaning.Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewScheduleHandler(svc *cleaning.Service, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, logger: logger, validate: validator.New()}
}

type timeRangeRequest struct {
	Start string `json:"start" validate:"required,len=5"`
	End   string `json:"end" validate:"required,len=5"`
}

type createScheduleRequest struct {
	BuildingID   string             `json:"building_id" validate:"required,max=64"`
	Month        string             `json:"month" validate:"required,datetime=2006-01"`
	SelectedDays []int              `json:"selected_days" validate:"max=31,dive,min=1,max=31"`
	TimeRanges   []timeRangeRequest `json:"time_ranges" validate:"required,min=1,max=24,dive"`
	SlotDuration int                `json:"slot_duration" validate:"required,gt=0,lte=1440"`
}

type updateDaysRequest struct {
	SelectedDays []int `json:"selected_days" validate:"max=31,dive,min=1,max=31"`
}

type replaceTimetableRequest struct {
	TimeRanges   []timeRangeRequest `json:"time_ranges" validate:"required,min=1,max=24,dive"`
	SlotDuration int                `json:"slot_duration" validate:"required,gt=0,lte=1440"`
}

type scheduleSummary struct {
	ID           string            `json:"id"`
	BuildingID   string            `json:"building_id"`
	Month        calendar.Month    `json:"month"`
	SelectedDays []int             `json:"selected_days"`
	TimeRanges   []model.TimeRange `json:"time_ranges"`
	SlotDuration int               `json:"slot_duration"`
	SlotCount    int               `json:"slot_count"`
	BookedCount  int               `json:"booked_count"`
}

func summarize(s *model.Schedule) scheduleSummary {
	booked := 0
	for _, slot := range s.Slots {
		if slot.IsBooked() {
			booked++
		}
	}
	return scheduleSummary{
		ID:           s.ID,
		BuildingID:   s.BuildingID,
		Month:        s.Month,
		SelectedDays: s.SelectedDays,
		TimeRanges:   s.TimeRanges,
		SlotDuration: s.SlotDuration,
		SlotCount:    len(s.Slots),
		BookedCount:  booked,
	}
}

func parseRanges(in []timeRangeRequest) ([]model.TimeRange, error) {
	out := make([]model.TimeRange, 0, len(in))
	for _, r := range in {
		start, err := calendar.ParseClock(r.Start)
		if err != nil {
			return nil, model.Validationf("%v", err)
		}
		end, err := calendar.ParseClock(r.End)
		if err != nil {
			return nil, model.Validationf("%v", err)
		}
		out = append(out, model.TimeRange{Start: start, End: end})
	}
	return out, nil
}

func (h *ScheduleHandler) decode(r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		return model.Validationf("%v", err)
	}
	return h.validate.Struct(dst)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())

	var req createScheduleRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.BuildingID = strings.TrimSpace(req.BuildingID)
	if !p.CanManage(req.BuildingID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not a manager of this building")
		return
	}
	month, err := calendar.ParseMonth(req.Month)
	if err != nil {
		writeError(w, r, h.logger, model.Validationf("%v", err))
		return
	}
	ranges, err := parseRanges(req.TimeRanges)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	sch, err := h.svc.CreateSchedule(r.Context(), cleaning.CreateScheduleInput{
		BuildingID:   req.BuildingID,
		Month:        month,
		SelectedDays: req.SelectedDays,
		TimeRanges:   ranges,
		SlotDuration: req.SlotDuration,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, sch)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	buildingID := strings.TrimSpace(r.URL.Query().Get("building_id"))
	if buildingID == "" {
		buildingID = p.BuildingID
	}
	if !p.CanManage(buildingID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not a manager of this building")
		return
	}

	list, err := h.svc.ListSchedules(r.Context(), buildingID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]scheduleSummary, 0, len(list))
	for _, s := range list {
		out = append(out, summarize(s))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"schedules": out})
}

// managed loads the path schedule and checks the caller manages its building.
func (h *ScheduleHandler) managed(w http.ResponseWriter, r *http.Request) (*model.Schedule, bool) {
	p, _ := PrincipalFrom(r.Context())
	sch, err := h.svc.GetSchedule(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil, false
	}
	if !p.CanManage(sch.BuildingID) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not a manager of this building")
		return nil, false
	}
	return sch, true
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	sch, ok := h.managed(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sch)
}

func (h *ScheduleHandler) UpdateDays(w http.ResponseWriter, r *http.Request) {
	sch, ok := h.managed(w, r)
	if !ok {
		return
	}
	var req updateDaysRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	updated, err := h.svc.UpdateSelectedDays(r.Context(), sch.ID, req.SelectedDays)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *ScheduleHandler) ReplaceTimetable(w http.ResponseWriter, r *http.Request) {
	sch, ok := h.managed(w, r)
	if !ok {
		return
	}
	var req replaceTimetableRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	ranges, err := parseRanges(req.TimeRanges)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	updated, err := h.svc.ReplaceTimetable(r.Context(), sch.ID, ranges, req.SlotDuration)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (h *ScheduleHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	sch, ok := h.managed(w, r)
	if !ok {
		return
	}
	view, err := h.svc.MonthView(r.Context(), sch.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *ScheduleHandler) SlotsForDate(w http.ResponseWriter, r *http.Request) {
	sch, ok := h.managed(w, r)
	if !ok {
		return
	}
	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, h.logger, model.Validationf("%v", err))
		return
	}
	slots, err := h.svc.AllSlotsForDate(r.Context(), sch.ID, date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, slots)
}
