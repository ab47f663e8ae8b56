package domain

import "time"

// User is the person time is tracked for
type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
