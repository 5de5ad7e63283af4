package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"talkmaster/internal/delivery/http/helpers"
	"talkmaster/internal/domain"
)

// ScheduleRequest is the request body for PATCH /api/talks/{talkID}/schedule
// and PUT /api/plannings/{planningID}.
type ScheduleRequest struct {
	RoomID string `json:"room_id"`
	Date   string `json:"date"`  // YYYY-MM-DD
	Time   string `json:"heure"` // HH:MM
}

// Validate implements Validator.
func (s ScheduleRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.RoomID) == "" {
		errs = append(errs, "room_id is required")
	}
	if strings.TrimSpace(s.Date) == "" {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(s.Time) == "" {
		errs = append(errs, "heure is required")
	}
	return errs
}

func (s ScheduleRequest) toDomain() domain.ScheduleRequest {
	return domain.ScheduleRequest{RoomID: s.RoomID, Date: s.Date, Time: s.Time}
}

type PlanningController struct {
	Logger   *slog.Logger
	Service  domain.PlanningService
	Calendar domain.CalendarRenderer
}

func NewPlanningController(logger *slog.Logger, svc domain.PlanningService, calendar domain.CalendarRenderer) *PlanningController {
	return &PlanningController{Logger: logger, Service: svc, Calendar: calendar}
}

// ScheduleTalk godoc
// @Summary Schedule a talk
// @Description Organizers and admins place an ACCEPTED talk in a room at a date and time. Rescheduling a SCHEDULED talk moves its planning. A slot already held by another talk is a conflict.
// @Tags planning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body ScheduleRequest true "Room and slot"
// @Success 200 {object} helpers.APIResponse "data contains the scheduled talk projection"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or invalid_state"
// @Router /api/talks/{talkID}/schedule [patch]
func (c *PlanningController) ScheduleTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ScheduleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	st, err := c.Service.ScheduleTalk(r.Context(), actor, r.PathValue("talkID"), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, st)
}

// ClearSchedule godoc
// @Summary Unschedule a talk
// @Description Removes the planning of a SCHEDULED talk and returns it to ACCEPTED.
// @Tags planning
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the talk projection"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /api/talks/{talkID}/schedule [delete]
func (c *PlanningController) ClearSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	st, err := c.Service.ClearSchedule(r.Context(), actor, r.PathValue("talkID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, st)
}

// UpdatePlanning godoc
// @Summary Move a planning
// @Description Organizers and admins move an existing planning to another room or slot.
// @Tags planning
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planningID path string true "Planning ID (UUID)"
// @Param body body ScheduleRequest true "Room and slot"
// @Success 200 {object} helpers.APIResponse "data contains the scheduled talk projection"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/plannings/{planningID} [put]
func (c *PlanningController) UpdatePlanning(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ScheduleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	st, err := c.Service.UpdatePlanning(r.Context(), actor, r.PathValue("planningID"), req.toDomain())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, st)
}

// ListPlanning godoc
// @Summary Conference planning
// @Description All scheduled talks ordered by start time then room.
// @Tags planning
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains scheduled talk projections"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/plannings [get]
func (c *PlanningController) ListPlanning(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	list, err := c.Service.ListPlanning(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// FilterPlanning godoc
// @Summary Filter the planning
// @Description Filter by day (defaults to today), exact time, room, topic and level.
// @Tags planning
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day, YYYY-MM-DD"
// @Param time query string false "Start time, HH:MM"
// @Param room_id query string false "Room ID (UUID)"
// @Param topic query string false "Topic substring"
// @Param level query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Success 200 {object} helpers.APIResponse "data contains scheduled talk projections"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/plannings/filter [get]
func (c *PlanningController) FilterPlanning(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	query := domain.PlanningQuery{
		Day:    q.Get("date"),
		Time:   q.Get("time"),
		RoomID: q.Get("room_id"),
		Topic:  q.Get("topic"),
		Level:  q.Get("level"),
	}
	if query.RoomID != "" {
		if _, err := uuid.Parse(query.RoomID); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "room_id must be a UUID")
			return
		}
	}
	list, err := c.Service.FilterPlanning(r.Context(), actor, query)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// ExportCalendar godoc
// @Summary Planning as iCalendar
// @Description Public ICS feed of every scheduled talk.
// @Tags planning
// @Produce text/calendar
// @Success 200 {string} string "VCALENDAR document"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/plannings/calendar.ics [get]
func (c *PlanningController) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	entries, err := c.Service.Entries(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	body, err := c.Calendar.Render(entries)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="planning.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
