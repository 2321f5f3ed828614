// Package model defines domain entities for the application.
package model

import "time"

// User identifies a credential holder. Users are created only as part of
// key issuance and may own any number of API keys.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
