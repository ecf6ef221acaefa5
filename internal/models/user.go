package models

import "time"

// User is an account record. The password hash is persisted with the record
// but must never be returned to clients: handlers build their own response
// maps with id, email, and name only.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"` // stored lowercased and trimmed
	Name      string    `json:"name"`
	Password  string    `json:"password,omitempty"` // argon2id hash
	CreatedAt time.Time `json:"createdAt"`
	Provider  string    `json:"provider,omitempty"` // set for federated logins
}
