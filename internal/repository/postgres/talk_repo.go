package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"talkmaster/internal/domain"
)

const talkColumns = `id, title, topic, description, duration, level, status, speaker_id, created_at, updated_at`

type talkRepository struct {
	DB querier
}

func NewTalkRepository(db *sql.DB) domain.TalkRepository {
	return &talkRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTalk(row rowScanner) (*domain.Talk, error) {
	t := &domain.Talk{}
	var level, status string
	if err := row.Scan(&t.ID, &t.Title, &t.Topic, &t.Description, &t.Duration, &level, &status, &t.SpeakerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Level = domain.Level(level)
	t.Status = domain.TalkStatus(status)
	return t, nil
}

func (r *talkRepository) Create(ctx context.Context, t *domain.Talk) error {
	query := `
		INSERT INTO talks (title, topic, description, duration, level, status, speaker_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, t.Title, t.Topic, t.Description, t.Duration, string(t.Level), string(t.Status), t.SpeakerID, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
}

func (r *talkRepository) GetByID(ctx context.Context, id string) (*domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE id = $1`
	t, err := scanTalk(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *talkRepository) Update(ctx context.Context, t *domain.Talk) error {
	query := `
		UPDATE talks
		SET title = $2, topic = $3, description = $4, duration = $5, level = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, t.ID, t.Title, t.Topic, t.Description, t.Duration, string(t.Level), t.UpdatedAt)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *talkRepository) UpdateStatus(ctx context.Context, id string, status domain.TalkStatus) error {
	query := `UPDATE talks SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *talkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM talks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *talkRepository) ListBySpeaker(ctx context.Context, speakerID string) ([]*domain.Talk, error) {
	query := `SELECT ` + talkColumns + ` FROM talks WHERE speaker_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, speakerID)
}

func (r *talkRepository) List(ctx context.Context, filter domain.TalkFilter, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	var where []string
	var args []any
	n := 1
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, string(filter.Status))
		n++
	}
	if filter.Level != "" {
		where = append(where, fmt.Sprintf("level = $%d", n))
		args = append(args, string(filter.Level))
		n++
	}
	if filter.MinDuration != nil {
		where = append(where, fmt.Sprintf("duration >= $%d", n))
		args = append(args, *filter.MinDuration)
		n++
	}
	if filter.MaxDuration != nil {
		where = append(where, fmt.Sprintf("duration <= $%d", n))
		args = append(args, *filter.MaxDuration)
		n++
	}
	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM talks`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + talkColumns + ` FROM talks` + whereSQL + ` ORDER BY created_at DESC`
	if limit := params.Limit(); limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n, n+1)
		args = append(args, limit, params.Offset())
	}
	talks, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return talks, total, nil
}

func (r *talkRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Talk, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	talks := make([]*domain.Talk, 0)
	for rows.Next() {
		t, err := scanTalk(rows)
		if err != nil {
			return nil, err
		}
		talks = append(talks, t)
	}
	return talks, rows.Err()
}

func requireAffected(result sql.Result) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
