package feed

import (
	"time"

	"github.com/habedi/photofeed/client"
)

// Size is the pixel size of a photo as measured by whoever renders it.
type Size struct {
	Width  float64
	Height float64
}

// Photo is one item of the feed.
type Photo struct {
	ID           string
	CreatedAt    *time.Time
	Description  *string
	ThumbnailURL string
	FullImageURL string
	IsLiked      bool
	Size         Size
}

// DisplayDateLayout renders CreatedAt as a long date.
const DisplayDateLayout = "January 2, 2006"

// DisplayDate returns the creation date as a long date, or "" when unknown.
func (p Photo) DisplayDate() string {
	if p.CreatedAt == nil {
		return ""
	}
	return p.CreatedAt.Format(DisplayDateLayout)
}

// Title returns the description, or "" when the photo has none.
func (p Photo) Title() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

func photoFromResult(r client.PhotoResult) Photo {
	return Photo{
		ID:           r.ID,
		CreatedAt:    parseCreatedAt(r.CreatedAt),
		Description:  r.Description,
		ThumbnailURL: r.URLs.Thumb,
		FullImageURL: r.URLs.Full,
		IsLiked:      r.LikedByUser,
	}
}

func photosFromResults(results []client.PhotoResult) []Photo {
	photos := make([]Photo, 0, len(results))
	for _, r := range results {
		photos = append(photos, photoFromResult(r))
	}
	return photos
}

// parseCreatedAt reads an RFC 3339 date-time; anything else yields nil.
func parseCreatedAt(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
