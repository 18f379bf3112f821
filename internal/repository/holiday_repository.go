package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/music-school-api/internal/models"
)

// HolidayRepository reads the school holiday calendar.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs the repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListOverlapping returns holidays intersecting [start, end], bounds inclusive.
func (r *HolidayRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.HolidayRange, error) {
	query := r.db.Rebind(`SELECT id, name, start_date, end_date FROM holidays
WHERE start_date <= ? AND end_date >= ? ORDER BY start_date ASC`)
	holidays := []models.HolidayRange{}
	if err := r.db.SelectContext(ctx, &holidays, query, dateArg(end), dateArg(start)); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}
