package business

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Agurato/marquee/internal/model"
)

type MovieStorer interface {
	GetMovies(ctx context.Context) ([]model.MovieWithCast, error)
	GetMovieFromTitle(ctx context.Context, title string) (*model.MovieWithCast, error)
	GetMovieTitles(ctx context.Context) ([]string, error)
	GetMoviesReleasedBetween(ctx context.Context, dr model.DateRange) ([]model.MovieWithCast, error)
	GetMoviesFromGenre(ctx context.Context, genre string) ([]model.MovieWithCast, error)
	GetMoviesFromCountries(ctx context.Context, countries []string) ([]model.MovieWithCast, error)
	GetMoviesFromStatus(ctx context.Context, status string) ([]model.MovieWithCast, error)
	GetMoviesWithPerson(ctx context.Context, personID primitive.ObjectID) ([]model.MovieWithCast, error)
	GetMovieCreditsWithPeople(ctx context.Context, personIDs []primitive.ObjectID) ([]model.MovieCredits, error)
	CountMoviesByGenre(ctx context.Context) ([]model.GenreCount, error)

	GetMovieWithCastFromID(ctx context.Context, id primitive.ObjectID) (*model.MovieWithCast, error)
	GetMovieFromID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error)

	IsTitlePresent(ctx context.Context, title string) (bool, error)
	GetPresentTitles(ctx context.Context, titles []string) ([]string, error)

	AddMovie(ctx context.Context, movie *model.Movie) error
	AddMovies(ctx context.Context, movies []model.Movie) (inserted, failed []model.Movie, err error)
	UpdateMovie(ctx context.Context, id primitive.ObjectID, mu model.MovieUpdate) (*model.Movie, error)
	UpdateMovieStatus(ctx context.Context, id primitive.ObjectID, status string) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id primitive.ObjectID) error
}

type ActorStorer interface {
	SearchActorIDs(ctx context.Context, name string) ([]primitive.ObjectID, error)
}

type PosterStorer interface {
	StorePoster(ctx context.Context, poster model.PosterUpload) (string, error)
	RemovePoster(ctx context.Context, ref string) error
}

type MovieManager struct {
	MovieStorer
	ActorStorer
	PosterStorer
	filterer *Filterer
	validate *validator.Validate
}

func NewMovieManager(ms MovieStorer, as ActorStorer, ps PosterStorer, f *Filterer) *MovieManager {
	validate := validator.New()
	validate.SetTagName("binding")
	return &MovieManager{
		MovieStorer:  ms,
		ActorStorer:  as,
		PosterStorer: ps,
		filterer:     f,
		validate:     validate,
	}
}

// parseID returns the ObjectID from its hexadecimal representation.
// A malformed ID cannot match any document, so it is reported as not found.
func parseID(hexID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("incorrect ID '%s': %w", hexID, model.ErrNotFound)
	}
	return id, nil
}

func notEmpty[T any](items []T, err error, what string) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s: %w", what, model.ErrNotFound)
	}
	return items, nil
}

// GetMovies returns every movie with its cast
func (mm MovieManager) GetMovies(ctx context.Context) ([]model.MovieWithCast, error) {
	movies, err := mm.MovieStorer.GetMovies(ctx)
	return notEmpty(movies, err, "no movies")
}

// GetMovieByTitle returns the movie with this title, ignoring case
func (mm MovieManager) GetMovieByTitle(ctx context.Context, title string) (*model.MovieWithCast, error) {
	if strings.TrimSpace(title) == "" {
		return nil, model.NewValidationError("Title is required")
	}
	return mm.MovieStorer.GetMovieFromTitle(ctx, title)
}

// SuggestTitles returns existing titles close to the searched one
func (mm MovieManager) SuggestTitles(ctx context.Context, title string) []string {
	titles, err := mm.MovieStorer.GetMovieTitles(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not get titles for suggestions")
		return []string{}
	}
	return SuggestTitles(title, titles)
}

// GetMoviesByYear returns the movies released during the year
func (mm MovieManager) GetMoviesByYear(ctx context.Context, year string) ([]model.MovieWithCast, error) {
	dr, err := mm.filterer.YearRange(year)
	if err != nil {
		return nil, err
	}
	movies, err := mm.MovieStorer.GetMoviesReleasedBetween(ctx, dr)
	return notEmpty(movies, err, "no movies released in "+year)
}

// GetMoviesByDateRange returns the movies released between both dates, included
func (mm MovieManager) GetMoviesByDateRange(ctx context.Context, startDate, endDate string) ([]model.MovieWithCast, error) {
	dr, err := mm.filterer.DateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	movies, err := mm.MovieStorer.GetMoviesReleasedBetween(ctx, dr)
	return notEmpty(movies, err, "no movies released in range")
}

// GetMoviesByGenre returns the movies of a genre, ignoring case
func (mm MovieManager) GetMoviesByGenre(ctx context.Context, genre string) ([]model.MovieWithCast, error) {
	if strings.TrimSpace(genre) == "" {
		return nil, model.NewValidationError("Genre is required")
	}
	movies, err := mm.MovieStorer.GetMoviesFromGenre(ctx, genre)
	return notEmpty(movies, err, "no movies with genre "+genre)
}

// GetMoviesByCountry returns the movies from a country given by name or ISO code
func (mm MovieManager) GetMoviesByCountry(ctx context.Context, country string) ([]model.MovieWithCast, error) {
	if strings.TrimSpace(country) == "" {
		return nil, model.NewValidationError("Country is required")
	}
	movies, err := mm.MovieStorer.GetMoviesFromCountries(ctx, mm.filterer.CountryNames(country))
	return notEmpty(movies, err, "no movies from "+country)
}

// GetMoviesPlaying returns the movies currently playing
func (mm MovieManager) GetMoviesPlaying(ctx context.Context) ([]model.MovieWithCast, error) {
	movies, err := mm.MovieStorer.GetMoviesFromStatus(ctx, model.StatusPlaying)
	return notEmpty(movies, err, "no movies playing")
}

// CountMoviesByGenre returns how many movies each genre has, most common first
func (mm MovieManager) CountMoviesByGenre(ctx context.Context) ([]model.GenreCount, error) {
	counts, err := mm.MovieStorer.CountMoviesByGenre(ctx)
	return notEmpty(counts, err, "no genres")
}

// GetMovie returns a movie with its cast from its hexadecimal ID
func (mm MovieManager) GetMovie(ctx context.Context, movieHexID string) (*model.MovieWithCast, error) {
	id, err := parseID(movieHexID)
	if err != nil {
		return nil, err
	}
	return mm.MovieStorer.GetMovieWithCastFromID(ctx, id)
}

// GetMoviesWithPerson returns the movies in which the person played or that they directed
func (mm MovieManager) GetMoviesWithPerson(ctx context.Context, personHexID string) ([]model.MovieWithCast, error) {
	id, err := parseID(personHexID)
	if err != nil {
		return nil, err
	}
	movies, err := mm.MovieStorer.GetMoviesWithPerson(ctx, id)
	return notEmpty(movies, err, "no movies with person "+personHexID)
}

// GetMoviesByActorName returns the credits of the movies in which any actor whose name
// contains the input played, or that they directed
func (mm MovieManager) GetMoviesByActorName(ctx context.Context, name string) ([]model.MovieCredits, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.NewValidationError("Name is required")
	}
	actorIDs, err := mm.ActorStorer.SearchActorIDs(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(actorIDs) == 0 {
		return nil, fmt.Errorf("'%s': %w", name, model.ErrNoActorMatch)
	}
	credits, err := mm.MovieStorer.GetMovieCreditsWithPeople(ctx, actorIDs)
	return notEmpty(credits, err, "no movies with actor "+name)
}

// newMovie validates the submitted fields and converts them to a Movie
func (mm MovieManager) newMovie(nm model.NewMovie) (*model.Movie, error) {
	if err := mm.validate.Struct(nm); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Debug().Str("title", nm.Title).Strs("fields", lo.Map(validationErrs, func(fe validator.FieldError, _ int) string {
				return fe.Field()
			})).Msg("Missing movie fields")
		}
		return nil, model.NewValidationError("All required fields must be provided.")
	}
	director, err := primitive.ObjectIDFromHex(nm.Director)
	if err != nil {
		return nil, model.NewValidationError(fmt.Sprintf("Invalid director id '%s'.", nm.Director))
	}
	cast, err := parseObjectIDs("cast", nm.Cast)
	if err != nil {
		return nil, err
	}
	releaseDate, err := ParseDate(nm.ReleaseDate)
	if err != nil {
		return nil, err
	}

	return &model.Movie{
		ID:            primitive.NewObjectID(),
		Title:         nm.Title,
		Description:   nm.Description,
		Genre:         nm.Genre,
		Director:      director,
		Producers:     nm.Producers,
		Cast:          cast,
		Runtime:       nm.Runtime,
		Language:      nm.Language,
		Rating:        nm.Rating,
		AgeRating:     nm.AgeRating,
		ReleaseDate:   releaseDate,
		Trailer:       nm.Trailer,
		Poster:        nm.Poster,
		Country:       nm.Country,
		Status:        nm.Status,
		BookingsCount: nm.BookingsCount,
	}, nil
}

// AddMovie validates and adds a movie, unless a movie with the same title exists.
// The poster, if any, is stored and referenced by the movie.
func (mm MovieManager) AddMovie(ctx context.Context, nm model.NewMovie, poster *model.PosterUpload) (*model.Movie, error) {
	movie, err := mm.newMovie(nm)
	if err != nil {
		return nil, err
	}

	present, err := mm.MovieStorer.IsTitlePresent(ctx, movie.Title)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, fmt.Errorf("'%s': %w", movie.Title, model.ErrMovieAlreadyExists)
	}

	if poster != nil {
		ref, err := mm.PosterStorer.StorePoster(ctx, *poster)
		if err != nil {
			return nil, err
		}
		movie.Poster = ref
		movie.PosterStored = true
	}

	if err = mm.MovieStorer.AddMovie(ctx, movie); err != nil {
		if poster != nil {
			mm.removePoster(ctx, movie.Poster)
		}
		return nil, err
	}
	log.Info().Str("id", movie.ID.Hex()).Str("title", movie.Title).Msg("Movie added")
	return movie, nil
}

// AddMovies adds every movie whose title is not in the catalog yet.
// posters[i] is the poster of movies[i], when movies[i] does not reference one already.
// Movies that are invalid or rejected by the database are reported as failed, the others are still added.
func (mm MovieManager) AddMovies(ctx context.Context, newMovies []model.NewMovie, posters []model.PosterUpload) (*model.BulkInsertReport, error) {
	report := &model.BulkInsertReport{
		Inserted: []model.Movie{},
		Skipped:  []string{},
	}
	if len(newMovies) == 0 {
		return report, nil
	}

	presentTitles, err := mm.MovieStorer.GetPresentTitles(ctx, lo.Map(newMovies, func(nm model.NewMovie, _ int) string {
		return nm.Title
	}))
	if err != nil {
		return nil, err
	}

	var (
		movies        []model.Movie
		moviePosters  = map[int]model.PosterUpload{}
		storedPosters = make([]string, 0, len(posters))
	)
	seenTitles := lo.SliceToMap(presentTitles, func(title string) (string, bool) {
		return title, true
	})
	for i, nm := range newMovies {
		if seenTitles[nm.Title] {
			report.Skipped = append(report.Skipped, nm.Title)
			continue
		}
		movie, err := mm.newMovie(nm)
		if err != nil {
			log.Debug().Err(err).Int("index", i).Str("title", nm.Title).Msg("Invalid movie in bulk insert")
			report.Failed = append(report.Failed, nm.Title)
			continue
		}
		if i < len(posters) && movie.Poster == "" {
			moviePosters[len(movies)] = posters[i]
		}
		seenTitles[movie.Title] = true
		movies = append(movies, *movie)
	}

	// Store the posters concurrently
	if len(moviePosters) > 0 {
		refs := make([]string, len(movies))
		g, gctx := errgroup.WithContext(ctx)
		for i, poster := range moviePosters {
			i, poster := i, poster
			g.Go(func() error {
				ref, err := mm.PosterStorer.StorePoster(gctx, poster)
				refs[i] = ref
				return err
			})
		}
		err := g.Wait()
		for i := range moviePosters {
			if refs[i] != "" {
				movies[i].Poster = refs[i]
				movies[i].PosterStored = true
				storedPosters = append(storedPosters, refs[i])
			}
		}
		if err != nil {
			for _, ref := range storedPosters {
				mm.removePoster(ctx, ref)
			}
			return nil, err
		}
	}

	inserted, failed, err := mm.MovieStorer.AddMovies(ctx, movies)
	if err != nil {
		for _, ref := range storedPosters {
			mm.removePoster(ctx, ref)
		}
		return nil, err
	}
	for _, movie := range failed {
		if movie.PosterStored {
			mm.removePoster(ctx, movie.Poster)
		}
		report.Failed = append(report.Failed, movie.Title)
	}
	if inserted != nil {
		report.Inserted = inserted
	}
	report.InsertedCount = len(report.Inserted)
	report.SkippedCount = len(report.Skipped)

	log.Info().
		Int("inserted", report.InsertedCount).
		Int("skipped", report.SkippedCount).
		Int("failed", len(report.Failed)).
		Msg("Movies added")
	return report, nil
}

// UpdateMovie applies the fields of a decoded JSON object to an existing movie
func (mm MovieManager) UpdateMovie(ctx context.Context, movieHexID string, fields map[string]any) (*model.Movie, error) {
	id, err := parseID(movieHexID)
	if err != nil {
		return nil, err
	}
	movie, err := mm.MovieStorer.GetMovieFromID(ctx, id)
	if err != nil {
		return nil, err
	}

	mu, err := ParseMovieUpdate(fields)
	if err != nil {
		return nil, err
	}
	if mu.IsEmpty() {
		return movie, nil
	}
	// A new poster given by the client is only a reference
	posterReplaced := mu.Poster != nil && *mu.Poster != movie.Poster
	if posterReplaced {
		mu.PosterStored = lo.ToPtr(false)
	}
	updated, err := mm.MovieStorer.UpdateMovie(ctx, id, mu)
	if err != nil {
		return nil, err
	}
	if posterReplaced && movie.PosterStored {
		mm.removePoster(ctx, movie.Poster)
	}
	return updated, nil
}

// UpdateMovieStatus changes the status of a movie
func (mm MovieManager) UpdateMovieStatus(ctx context.Context, movieHexID, status string) (*model.Movie, error) {
	id, err := parseID(movieHexID)
	if err != nil {
		return nil, err
	}
	return mm.MovieStorer.UpdateMovieStatus(ctx, id, status)
}

// DeleteMovie deletes a movie, and its poster when it was stored by the service
func (mm MovieManager) DeleteMovie(ctx context.Context, movieHexID string) error {
	id, err := parseID(movieHexID)
	if err != nil {
		return err
	}
	movie, err := mm.MovieStorer.GetMovieFromID(ctx, id)
	if err != nil {
		return err
	}
	if err = mm.MovieStorer.DeleteMovie(ctx, id); err != nil {
		return err
	}
	if movie.PosterStored {
		mm.removePoster(ctx, movie.Poster)
	}
	log.Info().Str("id", movieHexID).Str("title", movie.Title).Msg("Movie deleted")
	return nil
}

func (mm MovieManager) removePoster(ctx context.Context, ref string) {
	if err := mm.PosterStorer.RemovePoster(ctx, ref); err != nil {
		log.Debug().Err(err).Str("poster", ref).Msg("Could not remove poster")
	}
}
