// Package structs defines attachment domain models.
package structs

import "time"

type Attachment struct {
	ID          string    `json:"id" db:"id"`
	CardID      string    `json:"card_id" db:"card_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	StoragePath string    `json:"-" db:"storage_path"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}
