package models

import "time"

// HolidayRange is an inclusive span of dates on which no lessons take place.
type HolidayRange struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}

// Contains reports whether date falls within the holiday, bounds included.
func (h HolidayRange) Contains(date time.Time) bool {
	return !date.Before(h.StartDate) && !date.After(h.EndDate)
}
