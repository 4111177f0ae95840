package model

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks messages typed by the user.
	RoleUser Role = "user"
	// RoleModel marks messages produced by the backend, including the
	// failure notices the edit loop appends on its own.
	RoleModel Role = "model"
)

// ChatMessage is one entry of an edit-loop transcript.
type ChatMessage struct {
	Role        Role      `json:"role"`
	Text        string    `json:"text"`
	Attachments []string  `json:"attachments,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
