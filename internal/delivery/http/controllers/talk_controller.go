package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"talkmaster/internal/delivery/http/helpers"
	"talkmaster/internal/domain"
)

// TalkRequest is the request body for POST /api/talks and PUT /api/talks/{talkID}.
type TalkRequest struct {
	Title       string `json:"titre"`
	Topic       string `json:"sujet"`
	Description string `json:"description"`
	Duration    int    `json:"duree"`
	Level       string `json:"niveau"`
}

// Validate implements Validator. Content rules are enforced by the service.
func (t TalkRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(t.Title) == "" {
		errs = append(errs, "titre is required")
	}
	if strings.TrimSpace(t.Level) == "" {
		errs = append(errs, "niveau is required")
	}
	return errs
}

func (t TalkRequest) fields() domain.TalkFields {
	level, ok := domain.ParseLevel(t.Level)
	if !ok {
		level = domain.Level(t.Level)
	}
	return domain.TalkFields{
		Title:       t.Title,
		Topic:       t.Topic,
		Description: t.Description,
		Duration:    t.Duration,
		Level:       level,
	}
}

// SetStatusRequest is the request body for PATCH /api/talks/{talkID}/status.
type SetStatusRequest struct {
	Status string `json:"statut"`
}

// Validate implements Validator.
func (s SetStatusRequest) Validate() []string {
	if strings.TrimSpace(s.Status) == "" {
		return []string{"statut is required"}
	}
	return nil
}

// ListTalksResponse is the data payload for GET /api/talks.
type ListTalksResponse struct {
	Talks      []*domain.Talk         `json:"talks"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type TalkController struct {
	Logger  *slog.Logger
	Service domain.TalkService
}

func NewTalkController(logger *slog.Logger, svc domain.TalkService) *TalkController {
	return &TalkController{Logger: logger, Service: svc}
}

// SubmitTalk godoc
// @Summary Submit a talk
// @Description Speakers submit a proposal. The talk starts in status SUBMITTED and is owned by the caller.
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TalkRequest true "Talk content"
// @Success 201 {object} helpers.APIResponse "data contains the talk"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/talks [post]
func (c *TalkController) SubmitTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req TalkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	talk, err := c.Service.Submit(r.Context(), actor, req.fields())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, talk)
}

// ListTalks godoc
// @Summary List talks
// @Description Organizers and admins list all talks, optionally filtered by status, level and duration range.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Param status query string false "SUBMITTED, ACCEPTED, REFUSED or SCHEDULED"
// @Param level query string false "BEGINNER, INTERMEDIATE or ADVANCED"
// @Param min_duration query int false "Minimum duration in minutes"
// @Param max_duration query int false "Maximum duration in minutes"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains talks and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/talks [get]
func (c *TalkController) ListTalks(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	filter, msg := parseTalkFilter(r)
	if msg != "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, msg)
		return
	}
	params := helpers.ParsePagination(r)
	talks, total, err := c.Service.List(r.Context(), actor, filter, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListTalksResponse{
		Talks:      talks,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

func parseTalkFilter(r *http.Request) (domain.TalkFilter, string) {
	q := r.URL.Query()
	var f domain.TalkFilter
	if s := q.Get("status"); s != "" {
		st, ok := domain.ParseTalkStatus(s)
		if !ok {
			return f, "invalid status"
		}
		f.Status = st
	}
	if s := q.Get("level"); s != "" {
		l, ok := domain.ParseLevel(s)
		if !ok {
			return f, "invalid level"
		}
		f.Level = l
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{{"min_duration", &f.MinDuration}, {"max_duration", &f.MaxDuration}} {
		s := q.Get(p.name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return f, p.name + " must be a non-negative integer"
		}
		*p.dst = &v
	}
	return f, ""
}

// ListMyTalks godoc
// @Summary List my talks
// @Description Speakers list their own talks, newest first.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the talks"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/talks/me [get]
func (c *TalkController) ListMyTalks(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	talks, err := c.Service.ListMine(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talks)
}

// GetTalk godoc
// @Summary Get a talk
// @Description Returns the talk with its schedule when it has one.
// @Tags talks
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the scheduled talk projection"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/talks/{talkID} [get]
func (c *TalkController) GetTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	talkID, ok := pathID(w, r, "talkID", "talk")
	if !ok {
		return
	}
	talk, err := c.Service.Get(r.Context(), actor, talkID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talk)
}

// EditTalk godoc
// @Summary Edit a talk
// @Description The owner (or an admin) edits a talk while it is still SUBMITTED.
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body TalkRequest true "Talk content"
// @Success 200 {object} helpers.APIResponse "data contains the talk"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /api/talks/{talkID} [put]
func (c *TalkController) EditTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	talkID, ok := pathID(w, r, "talkID", "talk")
	if !ok {
		return
	}
	var req TalkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	talk, err := c.Service.Edit(r.Context(), actor, talkID, req.fields())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talk)
}

// DeleteTalk godoc
// @Summary Delete a talk
// @Description The owner or an admin deletes a talk that is not SCHEDULED.
// @Tags talks
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /api/talks/{talkID} [delete]
func (c *TalkController) DeleteTalk(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	talkID, ok := pathID(w, r, "talkID", "talk")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), actor, talkID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTalkStatus godoc
// @Summary Accept or refuse a talk
// @Description Organizers and admins set the review outcome (ACCEPTED or REFUSED). A scheduled talk cannot change status here.
// @Tags talks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param talkID path string true "Talk ID (UUID)"
// @Param body body SetStatusRequest true "New status"
// @Success 200 {object} helpers.APIResponse "data contains the talk"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /api/talks/{talkID}/status [patch]
func (c *TalkController) SetTalkStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req SetStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, ok := domain.ParseTalkStatus(req.Status)
	if !ok {
		status = domain.TalkStatus(req.Status)
	}
	talk, err := c.Service.SetStatus(r.Context(), actor, r.PathValue("talkID"), status)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, talk)
}
