package domain

import "context"

// LikeStatus is the server's answer to a liked-status query.
type LikeStatus struct {
	PublicationID int64 `json:"publicationId"`
	UserID        int64 `json:"userId"`
	Liked         bool  `json:"liked"`
}

// LikeService synchronizes like state with the remote service.
type LikeService interface {
	// Status reports whether userID has liked publicationID.
	Status(ctx context.Context, publicationID, userID int64) (bool, error)

	// Toggle flips the like record for (publicationID, userID) on the
	// server. HTTP 200 and 201 are both success.
	Toggle(ctx context.Context, publicationID, userID int64) error
}
