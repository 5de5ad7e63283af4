package postgres

import (
	"context"
	"testing"
	"time"

	"talkmaster/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO rooms`).
		WithArgs("Salle A", 120, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("room-1"))

	room := domain.NewRoom("Salle A", 120, now, now)
	require.NoError(t, NewRoomRepository(db).Create(ctx, room))
	assert.Equal(t, "room-1", room.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{
			name: "found",
			rows: sqlmock.NewRows([]string{"id", "name", "capacity", "created_at", "updated_at"}).AddRow("room-1", "Salle A", 120, now, now),
		},
		{
			name:    "not found",
			rows:    sqlmock.NewRows([]string{"id", "name", "capacity", "created_at", "updated_at"}),
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT id, name, capacity, created_at, updated_at\s+FROM rooms\s+WHERE id = \$1`).
				WithArgs("room-1").
				WillReturnRows(tt.rows)

			got, err := NewRoomRepository(db).GetByID(ctx, "room-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Salle A", got.Name)
			assert.Equal(t, 120, got.Capacity)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoomRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM rooms\s+ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "capacity", "created_at", "updated_at"}).
			AddRow("room-1", "Amphi", 300, now, now).
			AddRow("room-2", "Salle B", 40, now, now))

	got, err := NewRoomRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Amphi", got[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepository_GetByID_MalformedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM rooms`).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: codeInvalidTextRepr})

	_, err = NewRoomRepository(db).GetByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
