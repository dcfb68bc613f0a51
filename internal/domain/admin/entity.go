package admin

import "time"

type Admin struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	ProfileImage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
