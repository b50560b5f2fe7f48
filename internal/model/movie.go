package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusPlaying is the status of movies currently shown in theaters
const StatusPlaying = "playing"

// Movie is a movie document as stored in the catalog
type Movie struct {
	ID            primitive.ObjectID   `bson:"_id" json:"_id"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Genre         []string             `bson:"genre" json:"genre"`
	Director      primitive.ObjectID   `bson:"director" json:"director"`
	Producers     []string             `bson:"producers" json:"producers"`
	Cast          []primitive.ObjectID `bson:"cast" json:"cast"`
	Runtime       int                  `bson:"runtime" json:"runtime"`
	Language      string               `bson:"language" json:"language"`
	Rating        float64              `bson:"rating" json:"rating"`
	AgeRating     string               `bson:"ageRating" json:"ageRating"`
	ReleaseDate   time.Time            `bson:"release_date" json:"release_date"`
	Trailer       string               `bson:"trailer,omitempty" json:"trailer,omitempty"`
	Poster        string               `bson:"poster,omitempty" json:"poster,omitempty"`
	Country       string               `bson:"country" json:"country"`
	Status        string               `bson:"status" json:"status"`
	BookingsCount int                  `bson:"bookings_count" json:"bookings_count"`

	// PosterStored is set when Poster references a file stored by the service for this movie
	PosterStored bool `bson:"poster_stored,omitempty" json:"-"`
}

// MovieWithCast is a movie whose cast references have been replaced by the actors' summaries
type MovieWithCast struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Genre         []string           `bson:"genre" json:"genre"`
	Director      primitive.ObjectID `bson:"director" json:"director"`
	Producers     []string           `bson:"producers" json:"producers"`
	Cast          []ActorSummary     `bson:"cast" json:"cast"`
	Runtime       int                `bson:"runtime" json:"runtime"`
	Language      string             `bson:"language" json:"language"`
	Rating        float64            `bson:"rating" json:"rating"`
	AgeRating     string             `bson:"ageRating" json:"ageRating"`
	ReleaseDate   time.Time          `bson:"release_date" json:"release_date"`
	Trailer       string             `bson:"trailer,omitempty" json:"trailer,omitempty"`
	Poster        string             `bson:"poster,omitempty" json:"poster,omitempty"`
	Country       string             `bson:"country" json:"country"`
	Status        string             `bson:"status" json:"status"`
	BookingsCount int                `bson:"bookings_count" json:"bookings_count"`
}

// MovieCredits is the reduced view of a movie returned when searching by actor name.
// Both cast and director are populated.
type MovieCredits struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	Title         string             `bson:"title" json:"title"`
	Genre         []string           `bson:"genre" json:"genre"`
	ReleaseDate   time.Time          `bson:"release_date" json:"release_date"`
	BookingsCount int                `bson:"bookings_count" json:"bookings_count"`
	Cast          []ActorSummary     `bson:"cast" json:"cast"`
	Director      *ActorSummary      `bson:"director,omitempty" json:"director"`
}

// GenreCount is the number of movies tagged with a genre
type GenreCount struct {
	Genre string `bson:"genre" json:"genre"`
	Count int    `bson:"count" json:"count"`
}

// DateRange is an inclusive range of release dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains returns true if t is within the inclusive range
func (dr DateRange) Contains(t time.Time) bool {
	return !t.Before(dr.Start) && !t.After(dr.End)
}
