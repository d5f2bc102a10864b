package model

import "time"

// Document represents a stored file owned by exactly one user.
// This is a pure domain model with no database-specific dependencies or tags.
// Binary content lives in object storage under StoragePath; Size and FileType
// always describe the bytes currently stored there.
type Document struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	Category    string    `json:"category"`
	FileSize    int64     `json:"file_size"`
	StoragePath string    `json:"-"`
	UploadDate  time.Time `json:"upload_date"`
}
