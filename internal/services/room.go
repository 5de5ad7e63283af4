package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talkmaster/internal/domain"
)

type roomService struct {
	roomRepo       domain.RoomRepository
	contextTimeout time.Duration
}

func NewRoomService(roomRepo domain.RoomRepository, timeout time.Duration) domain.RoomService {
	return &roomService{roomRepo: roomRepo, contextTimeout: timeout}
}

func (s *roomService) Create(ctx context.Context, actor domain.Actor, name string, capacity int) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create rooms", domain.ErrForbidden)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", domain.ErrValidation)
	}
	now := time.Now()
	room := domain.NewRoom(name, capacity, now, now)
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

func (s *roomService) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, lookupError("room", err)
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context) ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rooms, err := s.roomRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}
