package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/model"
)

type MovieManager interface {
	GetMovies(ctx context.Context) ([]model.MovieWithCast, error)
	GetMovieByTitle(ctx context.Context, title string) (*model.MovieWithCast, error)
	SuggestTitles(ctx context.Context, title string) []string
	GetMoviesByYear(ctx context.Context, year string) ([]model.MovieWithCast, error)
	GetMoviesByDateRange(ctx context.Context, startDate, endDate string) ([]model.MovieWithCast, error)
	GetMoviesByGenre(ctx context.Context, genre string) ([]model.MovieWithCast, error)
	GetMoviesByCountry(ctx context.Context, country string) ([]model.MovieWithCast, error)
	GetMoviesPlaying(ctx context.Context) ([]model.MovieWithCast, error)
	CountMoviesByGenre(ctx context.Context) ([]model.GenreCount, error)
	GetMovie(ctx context.Context, movieHexID string) (*model.MovieWithCast, error)
	GetMoviesWithPerson(ctx context.Context, personHexID string) ([]model.MovieWithCast, error)
	GetMoviesByActorName(ctx context.Context, name string) ([]model.MovieCredits, error)
}

type MovieHandler struct {
	MovieManager
}

func NewMovieHandler(mm MovieManager) *MovieHandler {
	return &MovieHandler{
		MovieManager: mm,
	}
}

const errFetchingMovies = "Error fetching movies"

func respondMovies[T any](c *gin.Context, movies []T) {
	c.JSON(http.StatusOK, gin.H{
		"movies":       movies,
		"total_movies": len(movies),
	})
}

// GETMovies lists every movie
func (mh MovieHandler) GETMovies(c *gin.Context) {
	movies, err := mh.MovieManager.GetMovies(c.Request.Context())
	if err != nil {
		respondError(c, "message", err, "No movies found", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}

// GETMovieByTitle returns the movie with this title.
// When there is none, the closest titles are suggested.
func (mh MovieHandler) GETMovieByTitle(c *gin.Context) {
	title := c.Param("title")
	movie, err := mh.MovieManager.GetMovieByTitle(c.Request.Context(), title)
	if err != nil {
		if !model.IsValidationError(err) && isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"message":     "Movie not found",
				"suggestions": mh.MovieManager.SuggestTitles(c.Request.Context(), title),
			})
			return
		}
		respondError(c, "message", err, "Movie not found", "Error fetching movie")
		return
	}
	c.JSON(http.StatusOK, movie)
}

// GETMoviesByYear lists the movies released during the year given in the date query parameter
func (mh MovieHandler) GETMoviesByYear(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesByYear(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, "message", err, "No movies found for the given date", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}

// GETMoviesByDateRange lists the movies released between startDate and endDate
func (mh MovieHandler) GETMoviesByDateRange(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesByDateRange(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, "message", err, "No movies found in the specified date range", errFetchingMovies)
		return
	}
	// Clients of this route expect camel case
	c.JSON(http.StatusOK, gin.H{
		"movies":      movies,
		"totalMovies": len(movies),
	})
}

// GETMoviesByGenre lists the movies of a genre
func (mh MovieHandler) GETMoviesByGenre(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesByGenre(c.Request.Context(), c.Query("genre"))
	if err != nil {
		respondError(c, "message", err, "No movies found for the given genre", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}

// GETMoviesByCountry lists the movies from a country
func (mh MovieHandler) GETMoviesByCountry(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesByCountry(c.Request.Context(), c.Query("country"))
	if err != nil {
		respondError(c, "message", err, "No movies found for the given country", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}

// GETMoviesPlaying lists the movies currently playing
func (mh MovieHandler) GETMoviesPlaying(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesPlaying(c.Request.Context())
	if err != nil {
		respondError(c, "message", err, "No movies currently playing", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}

// GETCountByGenre returns the number of movies per genre.
// Storage errors are only logged: the response is then an empty list.
func (mh MovieHandler) GETCountByGenre(c *gin.Context) {
	counts, err := mh.MovieManager.CountMoviesByGenre(c.Request.Context())
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "No movies found"})
			return
		}
		log.Error().Err(err).Msg("Could not count movies by genre")
		c.JSON(http.StatusOK, []model.GenreCount{})
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GETMovie returns a movie from its ID
func (mh MovieHandler) GETMovie(c *gin.Context) {
	movie, err := mh.MovieManager.GetMovie(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "message", err, "Movie not found", "Error fetching movie")
		return
	}
	c.JSON(http.StatusOK, movie)
}

// GETMoviesWithPerson lists the movies in which an actor played or that they directed
func (mh MovieHandler) GETMoviesWithPerson(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesWithPerson(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "message", err, "No movies found", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}

// GETMoviesByActorName lists the credits of the movies of every actor whose name contains the input
func (mh MovieHandler) GETMoviesByActorName(c *gin.Context) {
	movies, err := mh.MovieManager.GetMoviesByActorName(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, "message", err, "No movies found for this actor", errFetchingMovies)
		return
	}
	respondMovies(c, movies)
}
