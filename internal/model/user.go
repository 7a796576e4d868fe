package model

import (
	"strconv"
	"strings"
	"time"
)

// User is a chat participant. ID is the identity assigned by the messaging gateway.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayName picks the name shown to other users: first name, then username,
// then last name, falling back to "User <id>".
func DisplayName(id int64, username, firstName, lastName string) string {
	for _, candidate := range []string{firstName, username, lastName} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return "User " + strconv.FormatInt(id, 10)
}
