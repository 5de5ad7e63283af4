package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"talkmaster/internal/domain"
)

const planningColumns = `id, talk_id, room_id, starts_at, scheduled_by, created_at, updated_at`

type planningRepository struct {
	DB querier
}

func NewPlanningRepository(db *sql.DB) domain.PlanningRepository {
	return &planningRepository{DB: db}
}

func scanPlanning(row rowScanner) (*domain.Planning, error) {
	p := &domain.Planning{}
	if err := row.Scan(&p.ID, &p.TalkID, &p.RoomID, &p.StartsAt, &p.ScheduledBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// planningWriteError turns a unique violation on plannings into ErrConflict.
func planningWriteError(err error) error {
	constraint, ok := isUniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case constraintPlanningTalk:
		return fmt.Errorf("%w: talk already has a planning", domain.ErrConflict)
	default:
		return fmt.Errorf("%w: room is already booked for this slot", domain.ErrConflict)
	}
}

func (r *planningRepository) Create(ctx context.Context, p *domain.Planning) error {
	query := `
		INSERT INTO plannings (talk_id, room_id, starts_at, scheduled_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, p.TalkID, p.RoomID, p.StartsAt, p.ScheduledBy, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return planningWriteError(err)
	}
	return nil
}

func (r *planningRepository) Update(ctx context.Context, p *domain.Planning) error {
	query := `
		UPDATE plannings
		SET room_id = $2, starts_at = $3, scheduled_by = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, p.ID, p.RoomID, p.StartsAt, p.ScheduledBy, p.UpdatedAt)
	if err != nil {
		return planningWriteError(err)
	}
	return requireAffected(result)
}

func (r *planningRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Planning, error) {
	query := `SELECT ` + planningColumns + ` FROM plannings WHERE ` + where
	p, err := scanPlanning(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *planningRepository) GetByID(ctx context.Context, id string) (*domain.Planning, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *planningRepository) GetByTalkID(ctx context.Context, talkID string) (*domain.Planning, error) {
	return r.getOne(ctx, `talk_id = $1`, talkID)
}

func (r *planningRepository) FindBySlot(ctx context.Context, roomID string, startsAt time.Time) (*domain.Planning, error) {
	return r.getOne(ctx, `room_id = $1 AND starts_at = $2`, roomID, startsAt)
}

func (r *planningRepository) DeleteByTalkID(ctx context.Context, talkID string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM plannings WHERE talk_id = $1`, talkID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *planningRepository) List(ctx context.Context, filter domain.PlanningFilter) ([]*domain.PlanningEntry, error) {
	var where []string
	var args []any
	n := 1
	if filter.At != nil {
		where = append(where, fmt.Sprintf("p.starts_at = $%d", n))
		args = append(args, *filter.At)
		n++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("p.starts_at >= $%d", n))
		args = append(args, *filter.From)
		n++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("p.starts_at < $%d", n))
		args = append(args, *filter.To)
		n++
	}
	if filter.RoomID != "" {
		where = append(where, fmt.Sprintf("p.room_id = $%d", n))
		args = append(args, filter.RoomID)
		n++
	}
	if filter.Topic != "" {
		where = append(where, fmt.Sprintf("t.topic ILIKE '%%' || $%d || '%%'", n))
		args = append(args, filter.Topic)
		n++
	}
	if filter.Level != "" {
		where = append(where, fmt.Sprintf("t.level = $%d", n))
		args = append(args, string(filter.Level))
	}
	query := `
		SELECT p.id, p.talk_id, p.room_id, p.starts_at, p.scheduled_by, p.created_at, p.updated_at,
			t.id, t.title, t.topic, t.description, t.duration, t.level, t.status, t.speaker_id, t.created_at, t.updated_at,
			r.name, u.name
		FROM plannings p
		INNER JOIN talks t ON t.id = p.talk_id
		INNER JOIN rooms r ON r.id = p.room_id
		INNER JOIN users u ON u.id = t.speaker_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY p.starts_at, r.name"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.PlanningEntry, 0)
	for rows.Next() {
		p := &domain.Planning{}
		t := &domain.Talk{}
		e := &domain.PlanningEntry{Planning: p, Talk: t}
		var level, status string
		if err := rows.Scan(
			&p.ID, &p.TalkID, &p.RoomID, &p.StartsAt, &p.ScheduledBy, &p.CreatedAt, &p.UpdatedAt,
			&t.ID, &t.Title, &t.Topic, &t.Description, &t.Duration, &level, &status, &t.SpeakerID, &t.CreatedAt, &t.UpdatedAt,
			&e.RoomName, &e.SpeakerName,
		); err != nil {
			return nil, err
		}
		t.Level = domain.Level(level)
		t.Status = domain.TalkStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
