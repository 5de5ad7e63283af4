package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"talkmaster/internal/delivery/http/helpers"
	"talkmaster/internal/domain"
)

// CreateRoomRequest is the request body for POST /api/rooms.
type CreateRoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// Validate implements Validator.
func (c CreateRoomRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	return errs
}

type RoomController struct {
	Logger  *slog.Logger
	Service domain.RoomService
}

func NewRoomController(logger *slog.Logger, svc domain.RoomService) *RoomController {
	return &RoomController{Logger: logger, Service: svc}
}

// CreateRoom godoc
// @Summary Create a room
// @Description Admin only.
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRoomRequest true "Room"
// @Success 201 {object} helpers.APIResponse "data contains the room"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/rooms [post]
func (c *RoomController) CreateRoom(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateRoomRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	room, err := c.Service.Create(r.Context(), actor, req.Name, req.Capacity)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, room)
}

// ListRooms godoc
// @Summary List rooms
// @Tags rooms
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the rooms ordered by name"
// @Router /api/rooms [get]
func (c *RoomController) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := c.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rooms)
}

// GetRoom godoc
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Param roomID path string true "Room ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the room"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/rooms/{roomID} [get]
func (c *RoomController) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomID", "room")
	if !ok {
		return
	}
	room, err := c.Service.Get(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, room)
}
