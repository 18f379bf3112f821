package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayRepositoryListOverlapping(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	start := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, start_date, end_date FROM holidays")).
		WithArgs("2026-02-20", "2026-02-10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "start_date", "end_date"}).
			AddRow("h-1", "Winter break", time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)))

	holidays, err := repo.ListOverlapping(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Winter break", holidays[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHolidayRepositoryListOverlappingNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHolidayRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM holidays")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "start_date", "end_date"}))

	holidays, err := repo.ListOverlapping(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.NotNil(t, holidays)
	assert.Empty(t, holidays)
}
