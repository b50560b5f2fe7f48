package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/model"
)

type MovieEditor interface {
	AddMovie(ctx context.Context, nm model.NewMovie, poster *model.PosterUpload) (*model.Movie, error)
	AddMovies(ctx context.Context, newMovies []model.NewMovie, posters []model.PosterUpload) (*model.BulkInsertReport, error)
	UpdateMovie(ctx context.Context, movieHexID string, fields map[string]any) (*model.Movie, error)
	UpdateMovieStatus(ctx context.Context, movieHexID, status string) (*model.Movie, error)
	DeleteMovie(ctx context.Context, movieHexID string) error
}

type MovieEditHandler struct {
	MovieEditor
}

func NewMovieEditHandler(me MovieEditor) *MovieEditHandler {
	return &MovieEditHandler{
		MovieEditor: me,
	}
}

const (
	posterFormField = "poster"
	moviesFormField = "movies"
)

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm)
}

func posterUpload(fh *multipart.FileHeader) model.PosterUpload {
	return model.PosterUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// POSTMovie adds a movie, sent as JSON or as a multipart form along with its poster
func (meh MovieEditHandler) POSTMovie(c *gin.Context) {
	var (
		nm     model.NewMovie
		poster *model.PosterUpload
	)
	if err := c.ShouldBind(&nm); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			log.Debug().Err(err).Msg("Could not decode movie")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "All required fields must be provided."})
		return
	}
	if isMultipart(c) {
		if fh, err := c.FormFile(posterFormField); err == nil {
			upload := posterUpload(fh)
			poster = &upload
		}
	}

	movie, err := meh.MovieEditor.AddMovie(c.Request.Context(), nm, poster)
	if err != nil {
		respondError(c, "error", err, "Movie not found.", "Error adding the movie.")
		return
	}
	c.JSON(http.StatusCreated, movie)
}

// decodeMovies decodes every movie of the list on its own, so that one ill-typed movie does not reject the others
func decodeMovies(rawMovies []json.RawMessage) []model.NewMovie {
	newMovies := make([]model.NewMovie, len(rawMovies))
	for i, raw := range rawMovies {
		var err error
		if newMovies[i], err = model.DecodeNewMovie(raw); err != nil {
			log.Debug().Err(err).Int("index", i).Str("title", newMovies[i].Title).Msg("Could not decode movie")
		}
	}
	return newMovies
}

// POSTMovies adds several movies at once.
// The list is either the movies field of a JSON body, or the movies field of a multipart form holding a JSON array,
// with poster files assigned in order.
func (meh MovieEditHandler) POSTMovies(c *gin.Context) {
	var (
		rawMovies []json.RawMessage
		posters   []model.PosterUpload
	)
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err == nil {
			if values := form.Value[moviesFormField]; len(values) > 0 {
				if err := json.Unmarshal([]byte(values[0]), &rawMovies); err != nil {
					rawMovies = nil
				}
			}
			for _, fh := range form.File[posterFormField] {
				posters = append(posters, posterUpload(fh))
			}
		}
	} else {
		var body struct {
			Movies []json.RawMessage `json:"movies"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			log.Debug().Err(err).Msg("Could not read movies body")
		} else {
			rawMovies = body.Movies
		}
	}
	if rawMovies == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An array of movies must be provided."})
		return
	}

	report, err := meh.MovieEditor.AddMovies(c.Request.Context(), decodeMovies(rawMovies), posters)
	if err != nil {
		respondError(c, "error", err, "Movie not found.", "Error adding the movies.")
		return
	}

	if report.HasFailures() {
		c.JSON(http.StatusMultiStatus, gin.H{
			"message":        "Partial success. Some movies could not be added.",
			"insertedCount":  report.InsertedCount,
			"skippedCount":   report.SkippedCount,
			"insertedMovies": report.Inserted,
			"skippedMovies":  report.Skipped,
			"failedMovies":   report.Failed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Movies processed successfully.",
		"insertedCount":  report.InsertedCount,
		"skippedCount":   report.SkippedCount,
		"insertedMovies": report.Inserted,
		"skippedMovies":  report.Skipped,
	})
}

// PUTMovie updates the fields given in the JSON body
func (meh MovieEditHandler) PUTMovie(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The body must be a JSON object."})
		return
	}

	movie, err := meh.MovieEditor.UpdateMovie(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondError(c, "error", err, "Movie not found.", "Error updating the movie.")
		return
	}
	c.JSON(http.StatusOK, movie)
}

// PUTMovieStatus only updates the status of a movie
func (meh MovieEditHandler) PUTMovieStatus(c *gin.Context) {
	var body struct {
		Status any `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		log.Debug().Err(err).Msg("Could not read status body")
	}
	status, ok := body.Status.(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be a string."})
		return
	}

	movie, err := meh.MovieEditor.UpdateMovieStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, "error", err, "Movie not found.", "Error updating the movie status.")
		return
	}
	c.JSON(http.StatusOK, movie)
}

// DELETEMovie deletes a movie
func (meh MovieEditHandler) DELETEMovie(c *gin.Context) {
	if err := meh.MovieEditor.DeleteMovie(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "error", err, "Movie not found.", "Error deleting the movie.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Movie deleted successfully."})
}
