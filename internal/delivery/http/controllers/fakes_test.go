package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"talkmaster/internal/delivery/http/helpers"
	"talkmaster/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var (
	speaker   = domain.Actor{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleSpeaker}
	organizer = domain.Actor{ID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleOrganizer}
)

const (
	talkUUID     = "33333333-3333-3333-3333-333333333333"
	roomUUID     = "44444444-4444-4444-4444-444444444444"
	planningUUID = "55555555-5555-5555-5555-555555555555"
)

// decodeResponse decodes the standard envelope from a recorded response.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	registerErr  error
	loginToken   string
	loginErr     error
	meErr        error
	lastRole     domain.Role
	lastEmail    string
	lastPassword string
}

func (f *fakeUserService) Register(_ context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	f.lastRole, f.lastEmail, f.lastPassword = role, email, password
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	if role == "" {
		role = domain.RolePublic
	}
	return &domain.User{ID: "user-1", Name: name, Email: email, Role: role, PasswordHash: "secret-hash"}, nil
}

func (f *fakeUserService) Login(_ context.Context, email, password string) (string, error) {
	f.lastEmail, f.lastPassword = email, password
	return f.loginToken, f.loginErr
}

func (f *fakeUserService) Me(_ context.Context, actor domain.Actor) (*domain.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &domain.User{ID: actor.ID, Role: actor.Role, Email: "me@example.com"}, nil
}

// fakeTalkService implements domain.TalkService for handler tests.
type fakeTalkService struct {
	err          error
	talk         *domain.Talk
	scheduled    *domain.ScheduledTalk
	talks        []*domain.Talk
	total        int
	lastActor    domain.Actor
	lastTalkID   string
	lastFields   domain.TalkFields
	lastStatus   domain.TalkStatus
	lastFilter   domain.TalkFilter
	lastParams   domain.PaginationParams
	deleteCalled bool
}

func (f *fakeTalkService) Submit(_ context.Context, actor domain.Actor, fields domain.TalkFields) (*domain.Talk, error) {
	f.lastActor, f.lastFields = actor, fields
	return f.talk, f.err
}

func (f *fakeTalkService) Get(_ context.Context, actor domain.Actor, talkID string) (*domain.ScheduledTalk, error) {
	f.lastActor, f.lastTalkID = actor, talkID
	return f.scheduled, f.err
}

func (f *fakeTalkService) Edit(_ context.Context, actor domain.Actor, talkID string, fields domain.TalkFields) (*domain.Talk, error) {
	f.lastActor, f.lastTalkID, f.lastFields = actor, talkID, fields
	return f.talk, f.err
}

func (f *fakeTalkService) SetStatus(_ context.Context, actor domain.Actor, talkID string, status domain.TalkStatus) (*domain.Talk, error) {
	f.lastActor, f.lastTalkID, f.lastStatus = actor, talkID, status
	return f.talk, f.err
}

func (f *fakeTalkService) Delete(_ context.Context, actor domain.Actor, talkID string) error {
	f.lastActor, f.lastTalkID, f.deleteCalled = actor, talkID, true
	return f.err
}

func (f *fakeTalkService) ListMine(_ context.Context, actor domain.Actor) ([]*domain.Talk, error) {
	f.lastActor = actor
	return f.talks, f.err
}

func (f *fakeTalkService) List(_ context.Context, actor domain.Actor, filter domain.TalkFilter, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	f.lastActor, f.lastFilter, f.lastParams = actor, filter, params
	return f.talks, f.total, f.err
}

// fakePlanningService implements domain.PlanningService for handler tests.
type fakePlanningService struct {
	err            error
	result         *domain.ScheduledTalk
	list           []*domain.ScheduledTalk
	entries        []*domain.PlanningEntry
	lastID         string
	lastReq        domain.ScheduleRequest
	lastQuery      domain.PlanningQuery
	filterCalled   bool
	scheduleCalled bool
}

func (f *fakePlanningService) ScheduleTalk(_ context.Context, _ domain.Actor, talkID string, req domain.ScheduleRequest) (*domain.ScheduledTalk, error) {
	f.scheduleCalled, f.lastID, f.lastReq = true, talkID, req
	return f.result, f.err
}

func (f *fakePlanningService) UpdatePlanning(_ context.Context, _ domain.Actor, planningID string, req domain.ScheduleRequest) (*domain.ScheduledTalk, error) {
	f.lastID, f.lastReq = planningID, req
	return f.result, f.err
}

func (f *fakePlanningService) ClearSchedule(_ context.Context, _ domain.Actor, talkID string) (*domain.ScheduledTalk, error) {
	f.lastID = talkID
	return f.result, f.err
}

func (f *fakePlanningService) ListPlanning(context.Context, domain.Actor) ([]*domain.ScheduledTalk, error) {
	return f.list, f.err
}

func (f *fakePlanningService) FilterPlanning(_ context.Context, _ domain.Actor, q domain.PlanningQuery) ([]*domain.ScheduledTalk, error) {
	f.filterCalled, f.lastQuery = true, q
	return f.list, f.err
}

func (f *fakePlanningService) Entries(context.Context) ([]*domain.PlanningEntry, error) {
	return f.entries, f.err
}

// fakeRenderer implements domain.CalendarRenderer.
type fakeRenderer struct {
	body     []byte
	err      error
	rendered []*domain.PlanningEntry
}

func (f *fakeRenderer) Render(entries []*domain.PlanningEntry) ([]byte, error) {
	f.rendered = entries
	return f.body, f.err
}

// fakeRoomService implements domain.RoomService for handler tests.
type fakeRoomService struct {
	err          error
	room         *domain.Room
	rooms        []*domain.Room
	lastName     string
	lastCapacity int
	lastID       string
}

func (f *fakeRoomService) Create(_ context.Context, _ domain.Actor, name string, capacity int) (*domain.Room, error) {
	f.lastName, f.lastCapacity = name, capacity
	return f.room, f.err
}

func (f *fakeRoomService) Get(_ context.Context, roomID string) (*domain.Room, error) {
	f.lastID = roomID
	return f.room, f.err
}

func (f *fakeRoomService) List(context.Context) ([]*domain.Room, error) {
	return f.rooms, f.err
}
