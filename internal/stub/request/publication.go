package request

import "github.com/petresgate/feedcore/domain"

// Publication is the creation request body.
type Publication struct {
	Description  string   `json:"description" binding:"required"`
	Images       []string `json:"images" binding:"required,min=1,max=4"`
	Status       string   `json:"status" binding:"required"`
	Location     string   `json:"location"`
	ContactInfos string   `json:"contactInfos"`
	UserID       int64    `json:"userId" binding:"required"`
}

// ToDomain: Request -> Domain
func (r *Publication) ToDomain() domain.NewPublication {
	return domain.NewPublication{
		Description:  r.Description,
		Images:       r.Images,
		Status:       r.Status,
		Location:     r.Location,
		ContactInfos: r.ContactInfos,
		UserID:       r.UserID,
	}
}

// LikeToggle is the like endpoint's request body.
type LikeToggle struct {
	PublicationID int64 `json:"publicationId" binding:"required"`
	UserID        int64 `json:"userId" binding:"required"`
}
