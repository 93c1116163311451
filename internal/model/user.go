package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name,omitempty"`
	AccentColor  string    `json:"accentColor"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserSettings struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	WeekStartDay int       `json:"weekStartDay"`
	DayStartHour int       `json:"dayStartHour"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	DefaultWeekStartDay = 1
	DefaultDayStartHour = 0
)
