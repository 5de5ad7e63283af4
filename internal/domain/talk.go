package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TalkStatus is the lifecycle state of a talk.
type TalkStatus string

const (
	StatusSubmitted TalkStatus = "SUBMITTED"
	StatusAccepted  TalkStatus = "ACCEPTED"
	StatusRefused   TalkStatus = "REFUSED"
	StatusScheduled TalkStatus = "SCHEDULED"
)

// ParseTalkStatus normalizes s and returns the matching status.
func ParseTalkStatus(s string) (TalkStatus, bool) {
	st := TalkStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusSubmitted, StatusAccepted, StatusRefused, StatusScheduled:
		return st, true
	}
	return "", false
}

// Editable reports whether the owner may still change the talk's content.
func (s TalkStatus) Editable() bool { return s == StatusSubmitted }

// Deletable reports whether the talk may be removed.
func (s TalkStatus) Deletable() bool { return s != StatusScheduled }

// Schedulable reports whether a room and slot may be assigned.
// A scheduled talk stays schedulable so it can be moved to another slot.
func (s TalkStatus) Schedulable() bool {
	return s == StatusAccepted || s == StatusScheduled
}

// IsDecision reports whether s is a review outcome an organizer may set directly.
func (s TalkStatus) IsDecision() bool {
	return s == StatusAccepted || s == StatusRefused
}

// Level is the expected audience level of a talk.
type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
)

// ParseLevel normalizes s and returns the matching level.
func ParseLevel(s string) (Level, bool) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return l, true
	}
	return "", false
}

// Talk represents a submitted conference session proposal.
// swagger:model Talk
type Talk struct {
	ID          string     `json:"id"`
	Title       string     `json:"titre"`
	Topic       string     `json:"sujet"`
	Description string     `json:"description"`
	Duration    int        `json:"duree"`
	Level       Level      `json:"niveau"`
	Status      TalkStatus `json:"statut"`
	SpeakerID   string     `json:"id_conferencier"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TalkFields holds the owner-editable content of a talk.
type TalkFields struct {
	Title       string
	Topic       string
	Description string
	Duration    int
	Level       Level
}

// MaxTalkDuration bounds the duration (minutes) a speaker may declare.
const MaxTalkDuration = 480

// Validate returns ErrValidation wrapped with every failed rule, or nil.
func (f TalkFields) Validate() error {
	var errs []string
	if strings.TrimSpace(f.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(f.Topic) == "" {
		errs = append(errs, "topic is required")
	}
	if f.Duration <= 0 || f.Duration > MaxTalkDuration {
		errs = append(errs, fmt.Sprintf("duration must be between 1 and %d minutes", MaxTalkDuration))
	}
	if _, ok := ParseLevel(string(f.Level)); !ok {
		errs = append(errs, "level must be BEGINNER, INTERMEDIATE or ADVANCED")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

// NewTalk returns a SUBMITTED talk owned by speakerID. ID is set by the repository on create.
func NewTalk(speakerID string, f TalkFields, now time.Time) *Talk {
	t := &Talk{
		SpeakerID: speakerID,
		Status:    StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.Apply(f)
	return t
}

// Apply copies f onto the talk.
func (t *Talk) Apply(f TalkFields) {
	t.Title = strings.TrimSpace(f.Title)
	t.Topic = strings.TrimSpace(f.Topic)
	t.Description = strings.TrimSpace(f.Description)
	t.Duration = f.Duration
	t.Level = f.Level
}

// TalkFilter narrows talk listings. Zero values mean "no filter".
type TalkFilter struct {
	Status      TalkStatus
	Level       Level
	MinDuration *int
	MaxDuration *int
}

// TalkRepository defines storage operations for talks.
type TalkRepository interface {
	Create(ctx context.Context, t *Talk) error
	GetByID(ctx context.Context, id string) (*Talk, error)
	Update(ctx context.Context, t *Talk) error
	UpdateStatus(ctx context.Context, id string, status TalkStatus) error
	Delete(ctx context.Context, id string) error
	ListBySpeaker(ctx context.Context, speakerID string) ([]*Talk, error)
	List(ctx context.Context, filter TalkFilter, params PaginationParams) ([]*Talk, int, error)
}

// TalkService is the talk lifecycle guard.
type TalkService interface {
	Submit(ctx context.Context, actor Actor, f TalkFields) (*Talk, error)
	Get(ctx context.Context, actor Actor, talkID string) (*ScheduledTalk, error)
	Edit(ctx context.Context, actor Actor, talkID string, f TalkFields) (*Talk, error)
	SetStatus(ctx context.Context, actor Actor, talkID string, status TalkStatus) (*Talk, error)
	Delete(ctx context.Context, actor Actor, talkID string) error
	ListMine(ctx context.Context, actor Actor) ([]*Talk, error)
	List(ctx context.Context, actor Actor, filter TalkFilter, params PaginationParams) ([]*Talk, int, error)
}
