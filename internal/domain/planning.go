package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Wire formats for the date and time halves of a slot instant.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Planning binds one talk to a room at a single start instant.
// No two plannings share the same (RoomID, StartsAt) pair and a talk has at most one planning.
// swagger:model Planning
type Planning struct {
	ID          string    `json:"id"`
	TalkID      string    `json:"talk_id"`
	RoomID      string    `json:"room_id"`
	StartsAt    time.Time `json:"starts_at"`
	ScheduledBy string    `json:"scheduled_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPlanning returns a new Planning. ID is set by the repository on create.
func NewPlanning(talkID, roomID string, startsAt time.Time, scheduledBy string, now time.Time) *Planning {
	return &Planning{
		TalkID:      talkID,
		RoomID:      roomID,
		StartsAt:    startsAt,
		ScheduledBy: scheduledBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ParseSlot combines a calendar date and a wall-clock time in loc into a
// minute-precision instant. Seconds, when given, must be zero.
func ParseSlot(date, clock string, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("%w: date and time are required", ErrValidation)
	}
	layout := DateLayout + " " + TimeLayout
	if strings.Count(clock, ":") == 2 {
		layout += ":05"
	}
	t, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date or time format (expected YYYY-MM-DD and HH:MM)", ErrValidation)
	}
	if t.Second() != 0 {
		return time.Time{}, fmt.Errorf("%w: slots have minute precision", ErrValidation)
	}
	return t, nil
}

// ScheduledTalk is the talk-with-schedule projection returned to callers.
// Date, Time and the room fields are nil while the talk is unscheduled.
// swagger:model ScheduledTalk
type ScheduledTalk struct {
	TalkID      string     `json:"talk_id"`
	PlanningID  *string    `json:"id_planning"`
	Title       string     `json:"titre"`
	Topic       string     `json:"sujet"`
	Description string     `json:"description"`
	Duration    int        `json:"duree"`
	Level       Level      `json:"niveau"`
	Status      TalkStatus `json:"statut"`
	SpeakerID   string     `json:"id_conferencier"`
	Speaker     string     `json:"conferencier"`
	Date        *string    `json:"date"`
	Time        *string    `json:"heure"`
	RoomID      *string    `json:"room_id"`
	RoomName    *string    `json:"room_name"`
}

// PlanningEntry is a planning joined with its talk, room name and speaker name.
// Planning is nil for an unscheduled talk.
type PlanningEntry struct {
	Planning    *Planning
	Talk        *Talk
	RoomName    string
	SpeakerName string
}

// Project renders the entry with date and time expressed in loc.
func (e *PlanningEntry) Project(loc *time.Location) *ScheduledTalk {
	st := &ScheduledTalk{
		TalkID:      e.Talk.ID,
		Title:       e.Talk.Title,
		Topic:       e.Talk.Topic,
		Description: e.Talk.Description,
		Duration:    e.Talk.Duration,
		Level:       e.Talk.Level,
		Status:      e.Talk.Status,
		SpeakerID:   e.Talk.SpeakerID,
		Speaker:     e.SpeakerName,
	}
	if e.Planning == nil {
		return st
	}
	local := e.Planning.StartsAt.In(loc)
	date := local.Format(DateLayout)
	clock := local.Format(TimeLayout)
	planningID := e.Planning.ID
	roomID := e.Planning.RoomID
	roomName := e.RoomName
	st.PlanningID = &planningID
	st.Date = &date
	st.Time = &clock
	st.RoomID = &roomID
	st.RoomName = &roomName
	return st
}

// PlanningFilter narrows planning listings. Nil or zero fields are ignored.
// At matches an exact instant; From/To bound a half-open range [From, To).
type PlanningFilter struct {
	At     *time.Time
	From   *time.Time
	To     *time.Time
	RoomID string
	Topic  string
	Level  Level
}

// PlanningRepository defines storage for plannings. Implementations must enforce
// uniqueness of (room, instant) and of talk, reporting violations as ErrConflict.
type PlanningRepository interface {
	Create(ctx context.Context, p *Planning) error
	Update(ctx context.Context, p *Planning) error
	GetByID(ctx context.Context, id string) (*Planning, error)
	GetByTalkID(ctx context.Context, talkID string) (*Planning, error)
	// FindBySlot returns the planning occupying roomID at startsAt, or ErrNotFound.
	FindBySlot(ctx context.Context, roomID string, startsAt time.Time) (*Planning, error)
	DeleteByTalkID(ctx context.Context, talkID string) error
	List(ctx context.Context, filter PlanningFilter) ([]*PlanningEntry, error)
}

// Stores groups the repositories bound to a single transaction.
type Stores struct {
	Talks     TalkRepository
	Rooms     RoomRepository
	Plannings PlanningRepository
	Users     UserRepository
}

// Transactor runs fn against repositories sharing one serializable transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// ScheduleRequest asks for a talk to be placed in a room at a date and time.
type ScheduleRequest struct {
	RoomID string
	Date   string
	Time   string
}

// PlanningQuery is the caller-facing planning filter, with date and time as strings.
type PlanningQuery struct {
	Day    string
	Time   string
	RoomID string
	Topic  string
	Level  string
}

// PlanningService is the scheduling conflict resolver and the planning read API.
type PlanningService interface {
	ScheduleTalk(ctx context.Context, actor Actor, talkID string, req ScheduleRequest) (*ScheduledTalk, error)
	UpdatePlanning(ctx context.Context, actor Actor, planningID string, req ScheduleRequest) (*ScheduledTalk, error)
	ClearSchedule(ctx context.Context, actor Actor, talkID string) (*ScheduledTalk, error)
	ListPlanning(ctx context.Context, actor Actor) ([]*ScheduledTalk, error)
	FilterPlanning(ctx context.Context, actor Actor, q PlanningQuery) ([]*ScheduledTalk, error)
	// Entries returns raw planning entries for feeds such as the ICS export.
	Entries(ctx context.Context) ([]*PlanningEntry, error)
}

// CalendarRenderer renders planning entries as an iCalendar document.
type CalendarRenderer interface {
	Render(entries []*PlanningEntry) ([]byte, error)
}
