// Package store persists scanned business profiles and estimate leads.
// The in-memory implementation backs the server; durable persistence is
// expected to live behind the same interface.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/athompson0066/Roofing-Estimator/pkg/estimate"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
)

// ErrNotFound is returned for unknown record IDs.
var ErrNotFound = errors.New("record not found")

// ProfileRecord is a scanned business profile.
type ProfileRecord struct {
	ID        string                   `json:"id"`
	CreatedAt time.Time                `json:"createdAt"`
	SourceURL string                   `json:"sourceUrl"`
	Profile   *profile.BusinessProfile `json:"profile"`
}

// LeadRecord is a customer estimate request and its result.
type LeadRecord struct {
	ID          string           `json:"id"`
	CreatedAt   time.Time        `json:"createdAt"`
	ProfileID   string           `json:"profileId"`
	Description string           `json:"description"`
	Urgency     string           `json:"urgency"`
	Zip         string           `json:"zip"`
	Estimate    *estimate.Result `json:"estimate"`
}

// Store holds profiles and leads. Save assigns an ID when the record
// has none.
type Store interface {
	SaveProfile(ctx context.Context, rec *ProfileRecord) error
	GetProfile(ctx context.Context, id string) (*ProfileRecord, error)

	SaveLead(ctx context.Context, rec *LeadRecord) error
	GetLead(ctx context.Context, id string) (*LeadRecord, error)
	ListLeads(ctx context.Context, profileID string) ([]*LeadRecord, error)
}
