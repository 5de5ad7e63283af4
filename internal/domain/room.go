package domain

import (
	"context"
	"time"
)

// Room represents a physical room a talk can be scheduled in.
// swagger:model Room
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoom returns a new Room with the given fields. ID is typically set by the repository on create.
func NewRoom(name string, capacity int, createdAt, updatedAt time.Time) *Room {
	return &Room{
		Name:      name,
		Capacity:  capacity,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// RoomRepository defines the interface for room storage
type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context) ([]*Room, error)
}

// RoomService manages the room reference data.
type RoomService interface {
	Create(ctx context.Context, actor Actor, name string, capacity int) (*Room, error)
	Get(ctx context.Context, roomID string) (*Room, error)
	List(ctx context.Context) ([]*Room, error)
}
