package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"talkmaster/internal/domain"
)

// fakeDB is an in-memory store shared by the fake repositories. It enforces the
// same uniqueness rules as the Postgres schema.
type fakeDB struct {
	mu        sync.Mutex // held for the whole of a fake transaction
	talks     map[string]domain.Talk
	rooms     map[string]domain.Room
	plannings map[string]domain.Planning
	users     map[string]domain.User
	nextID    int
	err       error // if set, every repository call returns it
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		talks:     make(map[string]domain.Talk),
		rooms:     make(map[string]domain.Room),
		plannings: make(map[string]domain.Planning),
		users:     make(map[string]domain.User),
	}
}

func (db *fakeDB) id(prefix string) string {
	db.nextID++
	return fmt.Sprintf("%s-%d", prefix, db.nextID)
}

func (db *fakeDB) stores() domain.Stores {
	return domain.Stores{
		Talks:     &fakeTalkRepo{db: db},
		Rooms:     &fakeRoomRepo{db: db},
		Plannings: &fakePlanningRepo{db: db},
		Users:     &fakeUserRepo{db: db},
	}
}

// fakeTransactor serializes units of work and restores a snapshot on failure.
type fakeTransactor struct {
	db *fakeDB
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, s domain.Stores) error) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()

	talks := maps.Clone(f.db.talks)
	rooms := maps.Clone(f.db.rooms)
	plannings := maps.Clone(f.db.plannings)
	users := maps.Clone(f.db.users)
	if err := fn(ctx, f.db.stores()); err != nil {
		f.db.talks, f.db.rooms, f.db.plannings, f.db.users = talks, rooms, plannings, users
		return err
	}
	return nil
}

// seed helpers lock nothing: tests call them before any concurrent work.

func (db *fakeDB) addUser(name string, role domain.Role) string {
	id := db.id("user")
	db.users[id] = domain.User{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	return id
}

func (db *fakeDB) addRoom(name string) string {
	id := db.id("room")
	db.rooms[id] = domain.Room{ID: id, Name: name, Capacity: 100}
	return id
}

func (db *fakeDB) addTalk(speakerID, title string, status domain.TalkStatus) string {
	id := db.id("talk")
	db.talks[id] = domain.Talk{ID: id, Title: title, Topic: "go", Duration: 45, Level: domain.LevelBeginner, Status: status, SpeakerID: speakerID}
	return id
}

type fakeTalkRepo struct{ db *fakeDB }

func (r *fakeTalkRepo) Create(ctx context.Context, t *domain.Talk) error {
	if r.db.err != nil {
		return r.db.err
	}
	t.ID = r.db.id("talk")
	r.db.talks[t.ID] = *t
	return nil
}

func (r *fakeTalkRepo) GetByID(ctx context.Context, id string) (*domain.Talk, error) {
	if r.db.err != nil {
		return nil, r.db.err
	}
	t, ok := r.db.talks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *fakeTalkRepo) Update(ctx context.Context, t *domain.Talk) error {
	if _, ok := r.db.talks[t.ID]; !ok {
		return domain.ErrNotFound
	}
	r.db.talks[t.ID] = *t
	return nil
}

func (r *fakeTalkRepo) UpdateStatus(ctx context.Context, id string, status domain.TalkStatus) error {
	t, ok := r.db.talks[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	r.db.talks[id] = t
	return nil
}

func (r *fakeTalkRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.db.talks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.talks, id)
	for pid, p := range r.db.plannings {
		if p.TalkID == id {
			delete(r.db.plannings, pid)
		}
	}
	return nil
}

func (r *fakeTalkRepo) ListBySpeaker(ctx context.Context, speakerID string) ([]*domain.Talk, error) {
	out := make([]*domain.Talk, 0)
	for _, t := range r.db.talks {
		if t.SpeakerID == speakerID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTalkRepo) List(ctx context.Context, filter domain.TalkFilter, params domain.PaginationParams) ([]*domain.Talk, int, error) {
	if r.db.err != nil {
		return nil, 0, r.db.err
	}
	out := make([]*domain.Talk, 0)
	for _, t := range r.db.talks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Level != "" && t.Level != filter.Level {
			continue
		}
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if limit := params.Limit(); limit > 0 {
		start := min(params.Offset(), total)
		out = out[start:min(start+limit, total)]
	}
	return out, total, nil
}

type fakeRoomRepo struct{ db *fakeDB }

func (r *fakeRoomRepo) Create(ctx context.Context, room *domain.Room) error {
	if r.db.err != nil {
		return r.db.err
	}
	room.ID = r.db.id("room")
	r.db.rooms[room.ID] = *room
	return nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	room, ok := r.db.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &room, nil
}

func (r *fakeRoomRepo) List(ctx context.Context) ([]*domain.Room, error) {
	out := make([]*domain.Room, 0)
	for _, room := range r.db.rooms {
		out = append(out, &room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakePlanningRepo struct{ db *fakeDB }

func (r *fakePlanningRepo) checkUnique(p *domain.Planning) error {
	for id, other := range r.db.plannings {
		if id == p.ID {
			continue
		}
		if other.TalkID == p.TalkID {
			return fmt.Errorf("%w: talk already has a planning", domain.ErrConflict)
		}
		if other.RoomID == p.RoomID && other.StartsAt.Equal(p.StartsAt) {
			return fmt.Errorf("%w: room is already booked for this slot", domain.ErrConflict)
		}
	}
	return nil
}

func (r *fakePlanningRepo) Create(ctx context.Context, p *domain.Planning) error {
	if err := r.checkUnique(p); err != nil {
		return err
	}
	p.ID = r.db.id("plan")
	r.db.plannings[p.ID] = *p
	return nil
}

func (r *fakePlanningRepo) Update(ctx context.Context, p *domain.Planning) error {
	if _, ok := r.db.plannings[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.checkUnique(p); err != nil {
		return err
	}
	r.db.plannings[p.ID] = *p
	return nil
}

func (r *fakePlanningRepo) find(match func(p domain.Planning) bool) (*domain.Planning, error) {
	if r.db.err != nil {
		return nil, r.db.err
	}
	for _, p := range r.db.plannings {
		if match(p) {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePlanningRepo) GetByID(ctx context.Context, id string) (*domain.Planning, error) {
	return r.find(func(p domain.Planning) bool { return p.ID == id })
}

func (r *fakePlanningRepo) GetByTalkID(ctx context.Context, talkID string) (*domain.Planning, error) {
	return r.find(func(p domain.Planning) bool { return p.TalkID == talkID })
}

func (r *fakePlanningRepo) FindBySlot(ctx context.Context, roomID string, startsAt time.Time) (*domain.Planning, error) {
	return r.find(func(p domain.Planning) bool { return p.RoomID == roomID && p.StartsAt.Equal(startsAt) })
}

func (r *fakePlanningRepo) DeleteByTalkID(ctx context.Context, talkID string) error {
	for id, p := range r.db.plannings {
		if p.TalkID == talkID {
			delete(r.db.plannings, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakePlanningRepo) List(ctx context.Context, filter domain.PlanningFilter) ([]*domain.PlanningEntry, error) {
	if r.db.err != nil {
		return nil, r.db.err
	}
	out := make([]*domain.PlanningEntry, 0)
	for _, p := range r.db.plannings {
		t := r.db.talks[p.TalkID]
		switch {
		case filter.At != nil && !p.StartsAt.Equal(*filter.At),
			filter.From != nil && p.StartsAt.Before(*filter.From),
			filter.To != nil && !p.StartsAt.Before(*filter.To),
			filter.RoomID != "" && p.RoomID != filter.RoomID,
			filter.Topic != "" && !strings.Contains(strings.ToLower(t.Topic), strings.ToLower(filter.Topic)),
			filter.Level != "" && t.Level != filter.Level:
			continue
		}
		out = append(out, &domain.PlanningEntry{
			Planning:    &p,
			Talk:        &t,
			RoomName:    r.db.rooms[p.RoomID].Name,
			SpeakerName: r.db.users[t.SpeakerID].Name,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Planning.StartsAt.Equal(out[j].Planning.StartsAt) {
			return out[i].Planning.StartsAt.Before(out[j].Planning.StartsAt)
		}
		return out[i].RoomName < out[j].RoomName
	})
	return out, nil
}

type fakeUserRepo struct{ db *fakeDB }

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if r.db.err != nil {
		return r.db.err
	}
	for _, other := range r.db.users {
		if other.Email == u.Email {
			return fmt.Errorf("%w: email already in use", domain.ErrConflict)
		}
	}
	u.ID = r.db.id("user")
	r.db.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if r.db.err != nil {
		return nil, r.db.err
	}
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct {
	lastRole domain.Role
}

func (f *fakeIssuer) Issue(userID, email string, role domain.Role, expiry time.Duration) (string, error) {
	f.lastRole = role
	return "token-for-" + userID, nil
}
