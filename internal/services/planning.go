package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"talkmaster/internal/domain"
)

type planningService struct {
	stores         domain.Stores
	tx             domain.Transactor
	loc            *time.Location
	now            func() time.Time
	contextTimeout time.Duration
}

// NewPlanningService returns the scheduling conflict resolver. Reads go through
// stores; every write runs inside tx.
func NewPlanningService(stores domain.Stores, tx domain.Transactor, loc *time.Location, timeout time.Duration) domain.PlanningService {
	return &planningService{
		stores:         stores,
		tx:             tx,
		loc:            loc,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *planningService) ScheduleTalk(ctx context.Context, actor domain.Actor, talkID string, req domain.ScheduleRequest) (*domain.ScheduledTalk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: only organizers can schedule talks", domain.ErrForbidden)
	}
	startsAt, err := domain.ParseSlot(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}

	var out *domain.ScheduledTalk
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		talk, err := st.Talks.GetByID(ctx, talkID)
		if err != nil {
			return lookupError("talk", err)
		}
		if !talk.Status.Schedulable() {
			return fmt.Errorf("%w: talk is %s, not eligible for scheduling", domain.ErrInvalidState, talk.Status)
		}
		room, err := st.Rooms.GetByID(ctx, req.RoomID)
		if err != nil {
			return lookupError("room", err)
		}
		current, err := st.Plannings.GetByTalkID(ctx, talk.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get planning: %w", err)
		}
		p, err := s.bind(ctx, st, actor, talk, room, current, startsAt)
		if err != nil {
			return err
		}
		out, err = project(ctx, st, p, talk, room.Name, s.loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *planningService) UpdatePlanning(ctx context.Context, actor domain.Actor, planningID string, req domain.ScheduleRequest) (*domain.ScheduledTalk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: only organizers can edit the planning", domain.ErrForbidden)
	}
	startsAt, err := domain.ParseSlot(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}

	var out *domain.ScheduledTalk
	err = s.tx.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		current, err := st.Plannings.GetByID(ctx, planningID)
		if err != nil {
			return lookupError("planning", err)
		}
		talk, err := st.Talks.GetByID(ctx, current.TalkID)
		if err != nil {
			return lookupError("talk", err)
		}
		room, err := st.Rooms.GetByID(ctx, req.RoomID)
		if err != nil {
			return lookupError("room", err)
		}
		p, err := s.bind(ctx, st, actor, talk, room, current, startsAt)
		if err != nil {
			return err
		}
		out, err = project(ctx, st, p, talk, room.Name, s.loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// bind places talk in room at startsAt, moving current when the talk is already
// planned, and marks the talk SCHEDULED. It must run inside a transaction.
func (s *planningService) bind(ctx context.Context, st domain.Stores, actor domain.Actor, talk *domain.Talk, room *domain.Room, current *domain.Planning, startsAt time.Time) (*domain.Planning, error) {
	occupant, err := st.Plannings.FindBySlot(ctx, room.ID, startsAt)
	switch {
	case err == nil && occupant.TalkID != talk.ID:
		return nil, fmt.Errorf("%w: room %s is already booked on %s", domain.ErrConflict, room.Name, startsAt.In(s.loc).Format(domain.DateLayout+" "+domain.TimeLayout))
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find slot: %w", err)
	}

	now := s.now()
	p := current
	if p != nil {
		p.RoomID = room.ID
		p.StartsAt = startsAt
		p.ScheduledBy = actor.ID
		p.UpdatedAt = now
		if err := st.Plannings.Update(ctx, p); err != nil {
			return nil, writeError("update planning", err)
		}
	} else {
		p = domain.NewPlanning(talk.ID, room.ID, startsAt, actor.ID, now)
		if err := st.Plannings.Create(ctx, p); err != nil {
			return nil, writeError("create planning", err)
		}
	}

	if talk.Status != domain.StatusScheduled {
		if err := st.Talks.UpdateStatus(ctx, talk.ID, domain.StatusScheduled); err != nil {
			return nil, fmt.Errorf("update talk status: %w", err)
		}
		talk.Status = domain.StatusScheduled
	}
	return p, nil
}

func (s *planningService) ClearSchedule(ctx context.Context, actor domain.Actor, talkID string) (*domain.ScheduledTalk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: only organizers can clear a schedule", domain.ErrForbidden)
	}

	var out *domain.ScheduledTalk
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		talk, err := st.Talks.GetByID(ctx, talkID)
		if err != nil {
			return lookupError("talk", err)
		}
		if talk.Status != domain.StatusScheduled {
			return fmt.Errorf("%w: talk is %s, only scheduled talks can be cleared", domain.ErrInvalidState, talk.Status)
		}
		if err := st.Plannings.DeleteByTalkID(ctx, talk.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete planning: %w", err)
		}
		if err := st.Talks.UpdateStatus(ctx, talk.ID, domain.StatusAccepted); err != nil {
			return fmt.Errorf("update talk status: %w", err)
		}
		talk.Status = domain.StatusAccepted
		out, err = project(ctx, st, nil, talk, "", s.loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *planningService) ListPlanning(ctx context.Context, actor domain.Actor) ([]*domain.ScheduledTalk, error) {
	return s.list(ctx, domain.PlanningFilter{})
}

func (s *planningService) FilterPlanning(ctx context.Context, actor domain.Actor, q domain.PlanningQuery) ([]*domain.ScheduledTalk, error) {
	filter, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter)
}

func (s *planningService) Entries(ctx context.Context) ([]*domain.PlanningEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.stores.Plannings.List(ctx, domain.PlanningFilter{})
	if err != nil {
		return nil, fmt.Errorf("list planning: %w", err)
	}
	return entries, nil
}

func (s *planningService) list(ctx context.Context, filter domain.PlanningFilter) ([]*domain.ScheduledTalk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.stores.Plannings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list planning: %w", err)
	}
	out := make([]*domain.ScheduledTalk, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Project(s.loc))
	}
	return out, nil
}

// buildFilter resolves a caller query into instants. The day defaults to today
// in the configured timezone; a time narrows the day to one instant.
func (s *planningService) buildFilter(q domain.PlanningQuery) (domain.PlanningFilter, error) {
	var filter domain.PlanningFilter

	day := strings.TrimSpace(q.Day)
	if day == "" {
		day = s.now().In(s.loc).Format(domain.DateLayout)
	}
	start, err := time.ParseInLocation(domain.DateLayout, day, s.loc)
	if err != nil {
		return filter, fmt.Errorf("%w: invalid day (expected YYYY-MM-DD)", domain.ErrValidation)
	}
	if strings.TrimSpace(q.Time) != "" {
		at, err := domain.ParseSlot(day, q.Time, s.loc)
		if err != nil {
			return filter, err
		}
		filter.At = &at
	} else {
		end := start.AddDate(0, 0, 1)
		filter.From = &start
		filter.To = &end
	}

	filter.RoomID = strings.TrimSpace(q.RoomID)
	filter.Topic = strings.TrimSpace(q.Topic)
	if q.Level != "" {
		level, ok := domain.ParseLevel(q.Level)
		if !ok {
			return filter, fmt.Errorf("%w: level must be BEGINNER, INTERMEDIATE or ADVANCED", domain.ErrValidation)
		}
		filter.Level = level
	}
	return filter, nil
}

// project loads the speaker name and renders the talk with its planning, if any.
func project(ctx context.Context, st domain.Stores, p *domain.Planning, talk *domain.Talk, roomName string, loc *time.Location) (*domain.ScheduledTalk, error) {
	speaker, err := st.Users.GetByID(ctx, talk.SpeakerID)
	if err != nil {
		return nil, lookupError("speaker", err)
	}
	entry := &domain.PlanningEntry{Planning: p, Talk: talk, RoomName: roomName, SpeakerName: speaker.Name}
	return entry.Project(loc), nil
}

// writeError keeps constraint conflicts as they are and wraps anything else.
func writeError(op string, err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
