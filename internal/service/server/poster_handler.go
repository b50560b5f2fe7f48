package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PosterPather interface {
	GetPosterPath(filePath string) string
}

type PosterHandler struct {
	PosterPather
	urlPrefix string
}

// NewPosterHandler serves the posters stored on disk under urlPrefix, which must end with a slash
func NewPosterHandler(pp PosterPather, urlPrefix string) *PosterHandler {
	return &PosterHandler{
		PosterPather: pp,
		urlPrefix:    urlPrefix,
	}
}

// GETPoster serves a poster file
func (ph PosterHandler) GETPoster(c *gin.Context) {
	posterPath := c.Param("path")
	if posterPath == "" || posterPath == "/" {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	http.ServeFile(c.Writer, c.Request, ph.PosterPather.GetPosterPath(posterPath))
}
