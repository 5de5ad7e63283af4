package postgres

import (
	"context"
	"database/sql"

	"talkmaster/internal/domain"
)

type roomRepository struct {
	DB querier
}

func NewRoomRepository(db *sql.DB) domain.RoomRepository {
	return &roomRepository{DB: db}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (name, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, room.Name, room.Capacity, room.CreatedAt, room.UpdatedAt).Scan(&room.ID)
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`
	room := &domain.Room{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) List(ctx context.Context) ([]*domain.Room, error) {
	query := `
		SELECT id, name, capacity, created_at, updated_at
		FROM rooms
		ORDER BY name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room := &domain.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
