package model

import "time"

// ShareLink grants tokenized access to a single document.
//
// Deactivation (IsActive=false) is the only stored state transition. Expiry and
// view-limit exhaustion are computed at resolution time, so a link can be
// IsActive=true yet unusable. IsPublic marks the document as nominally public
// and is evaluated independently of usability.
type ShareLink struct {
	ID          string     `json:"id"`
	Token       string     `json:"token"`
	DocumentID  string     `json:"document_id"`
	CreatedDate time.Time  `json:"created_date"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	IsActive    bool       `json:"is_active"`
	MaxViews    *int       `json:"max_views,omitempty"`
	ViewCount   int        `json:"view_count"`
	IsPublic    bool       `json:"is_public"`
}
