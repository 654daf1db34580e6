package domain

import (
	"context"
	"time"
)

// Publication is representing the Publication data struct
type Publication struct {
	ID           int64     `json:"id"`                     // Unique identifier assigned by the remote service
	Description  string    `json:"description"`            // Free text
	Images       []string  `json:"images"`                 // Image URIs in display order, 1..4 entries
	Status       string    `json:"status"`                 // Listing tag, e.g. "lost" or "for adoption"
	Location     string    `json:"location"`               // Free text
	ContactInfos string    `json:"contactInfos,omitempty"` // Optional contact details
	CreatedAt    time.Time `json:"createdAt"`              // Creation timestamp, used only for ordering
	LikeCount    int64     `json:"likeCount"`              // Number of likes
	User         User      `json:"user"`                   // Denormalized author copy supplied by the backend
}

// NewPublication is the payload submitted to the remote creation
// endpoint. It is validated client-side before any network call.
type NewPublication struct {
	Description  string   `json:"description" validate:"required"`
	Images       []string `json:"images" validate:"required,min=1,max=4"`
	Status       string   `json:"status" validate:"required"`
	Location     string   `json:"location"`
	ContactInfos string   `json:"contactInfos"`
	UserID       int64    `json:"userId" validate:"required"`
}

// Ordering selects the chronological direction of the feed.
type Ordering string

const (
	OrderAsc  Ordering = "asc"
	OrderDesc Ordering = "desc" // most-recent-first
)

// PublicationService is the remote publication collection. The full
// collection is fetched each time; there is no pagination.
type PublicationService interface {
	// Fetch retrieves the complete publication collection.
	Fetch(ctx context.Context) ([]Publication, error)

	// Search retrieves publications matching a free-text query.
	// Result ordering is server-defined.
	Search(ctx context.Context, query string) ([]Publication, error)

	// Create submits a new publication and returns the stored record.
	Create(ctx context.Context, p *NewPublication) (Publication, error)
}

// ProfileService resolves user profiles, used to denormalize author
// info on feed entries the backend returns incomplete.
type ProfileService interface {
	// GetByID retrieves a user profile by id.
	// Returns ErrNotFound if the user doesn't exist.
	GetByID(ctx context.Context, id int64) (User, error)
}

// SnapshotStore keeps the last successfully loaded full feed snapshot.
type SnapshotStore interface {
	// Get returns the retained snapshot.
	// Returns ErrSnapshotMiss when nothing has been stored yet.
	Get(ctx context.Context) ([]Publication, error)

	// Set replaces the retained snapshot wholesale.
	Set(ctx context.Context, pubs []Publication) error
}
