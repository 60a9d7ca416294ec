package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a file attached to a boat (registration, insurance, contracts).
// FileName is the stored name; URL is where clients download it.
type Document struct {
	ID          uuid.UUID `json:"id"`
	BoatID      uuid.UUID `json:"boat_id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
