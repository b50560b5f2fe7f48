package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Agurato/marquee/internal/model"
)

// NewServer initializes the router. posterHandler may be nil when posters are not served by this process.
func NewServer(movieHandler *MovieHandler, movieEditHandler *MovieEditHandler, posterHandler *PosterHandler, metrics *Metrics) *gin.Engine {
	router := gin.New()
	router.SetTrustedProxies(nil)
	router.Use(requestLogger, gin.Recovery())

	if metrics != nil {
		router.Use(metrics.Middleware)
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	movies := router.Group("/movies")
	movies.
		GET("", movieHandler.GETMovies).
		GET("/playing", movieHandler.GETMoviesPlaying).
		GET("/movie/:title", movieHandler.GETMovieByTitle).
		GET("/genre", movieHandler.GETMoviesByGenre).
		GET("/country", movieHandler.GETMoviesByCountry).
		GET("/actor/:name", movieHandler.GETMoviesByActorName).
		GET("/actors/:id", movieHandler.GETMoviesWithPerson).
		GET("/countByGenre", movieHandler.GETCountByGenre).
		GET("/d", movieHandler.GETMoviesByYear).
		GET("/d/", movieHandler.GETMoviesByYear).
		GET("/date", movieHandler.GETMoviesByDateRange).
		GET("/:id", movieHandler.GETMovie)

	movies.
		POST("", movieEditHandler.POSTMovie).
		POST("/addMultipleMovies", movieEditHandler.POSTMovies).
		PUT("/status/:id", movieEditHandler.PUTMovieStatus).
		PUT("/:id", movieEditHandler.PUTMovie).
		DELETE("/:id", movieEditHandler.DELETEMovie)

	if posterHandler != nil {
		router.GET(posterHandler.urlPrefix+"*path", posterHandler.GETPoster)
	}

	return router
}

// requestLogger logs every request once it has been handled
func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	event := log.Debug()
	switch {
	case status >= http.StatusInternalServerError:
		event = log.Error()
	case status >= http.StatusBadRequest:
		event = log.Info()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("ip", c.ClientIP()).
		Msg("Request handled")
}

// respondError writes the error under key with the status matching its kind.
// Unexpected errors are logged and hidden behind internalMessage.
func respondError(c *gin.Context, key string, err error, notFoundMessage, internalMessage string) {
	switch {
	case model.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{key: err.Error()})
	case errors.Is(err, model.ErrMovieAlreadyExists):
		c.JSON(http.StatusBadRequest, gin.H{key: "Movie already exists"})
	case errors.Is(err, model.ErrNoActorMatch):
		c.JSON(http.StatusNotFound, gin.H{key: "No actors found with this name"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{key: notFoundMessage})
	default:
		log.Error().Err(err).Str("route", c.FullPath()).Msg(internalMessage)
		c.JSON(http.StatusInternalServerError, gin.H{key: internalMessage})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
