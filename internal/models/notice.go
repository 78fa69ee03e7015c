package models

import (
	"time"

	"github.com/lib/pq"
)

// Notice is an announcement targeted at one or more roles, optionally with
// attachments stored in object storage (comma-separated public URLs).
type Notice struct {
	ID           string         `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Content      *string        `db:"content" json:"content,omitempty"`
	DocumentURLs string         `db:"document_urls" json:"document_urls"`
	TargetRoles  pq.StringArray `db:"target_roles" json:"target_roles" swaggertype:"array,string"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
