package model

import (
	"encoding/json"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMovie holds the fields submitted when adding a movie.
// References are kept as hexadecimal strings until they are checked.
type NewMovie struct {
	Title         string   `json:"title" form:"title" binding:"required"`
	Description   string   `json:"description" form:"description" binding:"required"`
	Genre         []string `json:"genre" form:"genre" binding:"required"`
	Director      string   `json:"director" form:"director" binding:"required"`
	Producers     []string `json:"producers" form:"producers" binding:"required"`
	Cast          []string `json:"cast" form:"cast" binding:"required"`
	Runtime       int      `json:"runtime" form:"runtime" binding:"required"`
	Language      string   `json:"language" form:"language" binding:"required"`
	Rating        float64  `json:"rating" form:"rating" binding:"required"`
	AgeRating     string   `json:"ageRating" form:"ageRating" binding:"required"`
	ReleaseDate   string   `json:"release_date" form:"release_date" binding:"required"`
	Trailer       string   `json:"trailer" form:"trailer"`
	Poster        string   `json:"poster" form:"poster"`
	Country       string   `json:"country" form:"country" binding:"required"`
	Status        string   `json:"status" form:"status" binding:"required"`
	BookingsCount int      `json:"bookings_count" form:"bookings_count"`
}

// MovieUpdate lists the fields that can be changed on an existing movie.
// A nil field is left untouched.
type MovieUpdate struct {
	Title         *string
	Description   *string
	Genre         []string
	Director      *primitive.ObjectID
	Producers     []string
	Cast          []primitive.ObjectID
	Runtime       *int
	Language      *string
	Rating        *float64
	AgeRating     *string
	ReleaseDate   *time.Time
	Trailer       *string
	Poster        *string
	Country       *string
	Status        *string
	BookingsCount *int

	// PosterStored is never read from a request, it follows Poster
	PosterStored *bool
}

// IsEmpty returns true if no field is set
func (mu MovieUpdate) IsEmpty() bool {
	return mu.Title == nil && mu.Description == nil && mu.Genre == nil && mu.Director == nil &&
		mu.Producers == nil && mu.Cast == nil && mu.Runtime == nil && mu.Language == nil &&
		mu.Rating == nil && mu.AgeRating == nil && mu.ReleaseDate == nil && mu.Trailer == nil &&
		mu.Poster == nil && mu.Country == nil && mu.Status == nil && mu.BookingsCount == nil
}

// BulkInsertReport sums up the outcome of adding several movies at once
type BulkInsertReport struct {
	Inserted      []Movie  `json:"insertedMovies"`
	InsertedCount int      `json:"insertedCount"`
	Skipped       []string `json:"skippedMovies"`
	SkippedCount  int      `json:"skippedCount"`
	Failed        []string `json:"failedMovies,omitempty"`
}

// HasFailures returns true if at least one movie could not be inserted
func (r BulkInsertReport) HasFailures() bool {
	return len(r.Failed) > 0
}

// PosterUpload is a poster file sent along a movie
type PosterUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// DecodeNewMovie decodes a movie from JSON. When the movie cannot be decoded,
// the returned movie only holds the title, if it could be read, so that the movie can still be reported.
func DecodeNewMovie(raw json.RawMessage) (NewMovie, error) {
	var nm NewMovie
	if err := json.Unmarshal(raw, &nm); err != nil {
		var titled struct {
			Title string `json:"title"`
		}
		_ = json.Unmarshal(raw, &titled)
		return NewMovie{Title: titled.Title}, err
	}
	return nm, nil
}
