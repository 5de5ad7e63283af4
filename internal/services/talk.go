package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkmaster/internal/domain"
)

type talkService struct {
	stores         domain.Stores
	tx             domain.Transactor
	loc            *time.Location
	contextTimeout time.Duration
}

// NewTalkService returns the talk lifecycle guard.
func NewTalkService(stores domain.Stores, tx domain.Transactor, loc *time.Location, timeout time.Duration) domain.TalkService {
	return &talkService{
		stores:         stores,
		tx:             tx,
		loc:            loc,
		contextTimeout: timeout,
	}
}

func (s *talkService) Submit(ctx context.Context, actor domain.Actor, f domain.TalkFields) (*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor.Role != domain.RoleSpeaker {
		return nil, fmt.Errorf("%w: only speakers can submit talks", domain.ErrForbidden)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	talk := domain.NewTalk(actor.ID, f, time.Now())
	if err := s.stores.Talks.Create(ctx, talk); err != nil {
		return nil, fmt.Errorf("create talk: %w", err)
	}
	return talk, nil
}

// Get returns the talk with its planning. Unscheduled talks are visible to
// their speaker and to reviewers only.
func (s *talkService) Get(ctx context.Context, actor domain.Actor, talkID string) (*domain.ScheduledTalk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	talk, err := s.stores.Talks.GetByID(ctx, talkID)
	if err != nil {
		return nil, lookupError("talk", err)
	}
	if talk.Status != domain.StatusScheduled && talk.SpeakerID != actor.ID && !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: talk is not published yet", domain.ErrForbidden)
	}

	p, err := s.stores.Plannings.GetByTalkID(ctx, talk.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return project(ctx, s.stores, nil, talk, "", s.loc)
	case err != nil:
		return nil, fmt.Errorf("get planning: %w", err)
	}
	room, err := s.stores.Rooms.GetByID(ctx, p.RoomID)
	if err != nil {
		return nil, lookupError("room", err)
	}
	return project(ctx, s.stores, p, talk, room.Name, s.loc)
}

func (s *talkService) Edit(ctx context.Context, actor domain.Actor, talkID string, f domain.TalkFields) (*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var out *domain.Talk
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		talk, err := st.Talks.GetByID(ctx, talkID)
		if err != nil {
			return lookupError("talk", err)
		}
		if talk.SpeakerID != actor.ID && actor.Role != domain.RoleAdmin {
			return fmt.Errorf("%w: only the speaker can edit this talk", domain.ErrForbidden)
		}
		if !talk.Status.Editable() {
			return fmt.Errorf("%w: talk is %s, only submitted talks can be edited", domain.ErrInvalidState, talk.Status)
		}
		if err := f.Validate(); err != nil {
			return err
		}
		talk.Apply(f)
		talk.UpdatedAt = time.Now()
		if err := st.Talks.Update(ctx, talk); err != nil {
			return fmt.Errorf("update talk: %w", err)
		}
		out = talk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *talkService) SetStatus(ctx context.Context, actor domain.Actor, talkID string, status domain.TalkStatus) (*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.Role.CanReview() {
		return nil, fmt.Errorf("%w: only organizers can review talks", domain.ErrForbidden)
	}
	if !status.IsDecision() {
		return nil, fmt.Errorf("%w: status must be ACCEPTED or REFUSED", domain.ErrValidation)
	}

	var out *domain.Talk
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		talk, err := st.Talks.GetByID(ctx, talkID)
		if err != nil {
			return lookupError("talk", err)
		}
		if talk.Status == domain.StatusScheduled {
			return fmt.Errorf("%w: talk is scheduled, clear its schedule first", domain.ErrInvalidState)
		}
		if err := st.Talks.UpdateStatus(ctx, talk.ID, status); err != nil {
			return fmt.Errorf("update talk status: %w", err)
		}
		talk.Status = status
		out = talk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *talkService) Delete(ctx context.Context, actor domain.Actor, talkID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		talk, err := st.Talks.GetByID(ctx, talkID)
		if err != nil {
			return lookupError("talk", err)
		}
		if !talk.Status.Deletable() {
			return fmt.Errorf("%w: a scheduled talk cannot be deleted", domain.ErrInvalidState)
		}
		if talk.SpeakerID != actor.ID && actor.Role != domain.RoleAdmin {
			return fmt.Errorf("%w: only the speaker can delete this talk", domain.ErrForbidden)
		}
		if err := st.Talks.Delete(ctx, talk.ID); err != nil {
			return fmt.Errorf("delete talk: %w", err)
		}
		return nil
	})
}

func (s *talkService) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Talk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor.Role != domain.RoleSpeaker {
		return nil, fmt.Errorf("%w: only speakers have talks", domain.ErrForbidden)
	}
	talks, err := s.stores.Talks.ListBySpeaker(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list talks: %w", err)
	}
	return talks, nil
}

func (s *talkService) List(ctx context.Context, actor domain.Actor, filter domain.TalkFilter, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !actor.Role.CanReview() {
		return nil, 0, fmt.Errorf("%w: only organizers can list every talk", domain.ErrForbidden)
	}
	if filter.MinDuration != nil && filter.MaxDuration != nil && *filter.MinDuration > *filter.MaxDuration {
		return nil, 0, fmt.Errorf("%w: min duration exceeds max duration", domain.ErrValidation)
	}
	talks, total, err := s.stores.Talks.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list talks: %w", err)
	}
	return talks, total, nil
}

// lookupError reports a missing entity as ErrNotFound and wraps anything else.
func lookupError(entity string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s not found", domain.ErrNotFound, entity)
	}
	return fmt.Errorf("get %s: %w", entity, err)
}
