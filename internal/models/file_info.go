package models

import "time"

// SourceFile represents an archived original upload.
type SourceFile struct {
	ID         string    `json:"id"`
	Document   string    `json:"document"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
	Status     string    `json:"status"`
}
