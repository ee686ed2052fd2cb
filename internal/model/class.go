package model

import "time"

// Class is a named group of students owned by a teacher.
type Class struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
