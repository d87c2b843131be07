package models

import (
	"time"
)

// Task is an entry of the admin-managed task catalog.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"taskName"`
	Link      string    `json:"taskLink"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
