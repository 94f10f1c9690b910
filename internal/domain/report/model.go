package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/accessroute/internal/domain/geo"
)

// IssueType enumerates the barriers users can report.
type IssueType string

const (
	IssueBlockedPath IssueType = "blocked_path"
	IssueBrokenRamp  IssueType = "broken_ramp"
	IssuePothole     IssueType = "pothole"
	IssueWetFloor    IssueType = "wet_floor"
	IssueNoElevator  IssueType = "no_elevator"
	IssueOther       IssueType = "other"
)

// IssueTypes lists every accepted issue type.
var IssueTypes = []IssueType{
	IssueBlockedPath,
	IssueBrokenRamp,
	IssuePothole,
	IssueWetFloor,
	IssueNoElevator,
	IssueOther,
}

// Valid reports whether t is one of IssueTypes.
func (t IssueType) Valid() bool {
	for _, known := range IssueTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IssueReport is a user submitted, optionally expiring barrier report.
type IssueReport struct {
	ID          uuid.UUID  `json:"id"`
	Location    geo.Point  `json:"location"`
	Type        IssueType  `json:"type"`
	Description string     `json:"description"`
	PhotoURL    *string    `json:"photoUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// ActiveAt reports whether the report is still in effect. Reports without an expiry never lapse.
func (r IssueReport) ActiveAt(now time.Time) bool {
	if r.ExpiresAt == nil {
		return true
	}
	return now.Before(*r.ExpiresAt)
}

// CreateRequest carries the user supplied fields of a new report.
type CreateRequest struct {
	Location    geo.Point
	Type        IssueType
	Description string
	PhotoURL    string
}

// Created is returned after a successful create. Capability is only set when the
// delete policy requires callers to prove ownership.
type Created struct {
	Report     IssueReport `json:"report"`
	Capability string      `json:"capability,omitempty"`
}

// PhotoUpload describes a presigned direct upload for a report photo.
type PhotoUpload struct {
	UploadURL string    `json:"uploadUrl"`
	PhotoURL  string    `json:"photoUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Config controls report lifetime.
type Config struct {
	TTL               time.Duration
	MaxDescriptionLen int
}
