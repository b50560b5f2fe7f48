package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Agurato/marquee/internal/model"
)

var errStorage = errors.New("storage unavailable")

// memoryStore keeps movies and actors in memory
type memoryStore struct {
	mu     sync.Mutex
	movies []model.Movie
	actors []model.Actor

	// rejectTitles are refused by AddMovies as if the database had rejected them
	rejectTitles []string
	failCount    bool
}

func (s *memoryStore) withCast(movie model.Movie) model.MovieWithCast {
	cast := lo.FilterMap(movie.Cast, func(id primitive.ObjectID, _ int) (model.ActorSummary, bool) {
		actor, ok := lo.Find(s.actors, func(a model.Actor) bool { return a.ID == id })
		return model.ActorSummary{ID: actor.ID, Name: actor.Name, Image: actor.Image}, ok
	})
	return model.MovieWithCast{
		ID:          movie.ID,
		Title:       movie.Title,
		Genre:       movie.Genre,
		Director:    movie.Director,
		Cast:        cast,
		ReleaseDate: movie.ReleaseDate,
		Country:     movie.Country,
		Status:      movie.Status,
		Poster:      movie.Poster,
	}
}

func (s *memoryStore) filter(keep func(m model.Movie) bool) []model.MovieWithCast {
	s.mu.Lock()
	defer s.mu.Unlock()
	var movies []model.MovieWithCast
	for _, movie := range s.movies {
		if keep(movie) {
			movies = append(movies, s.withCast(movie))
		}
	}
	return movies
}

func (s *memoryStore) GetMovies(ctx context.Context) ([]model.MovieWithCast, error) {
	return s.filter(func(model.Movie) bool { return true }), nil
}

func (s *memoryStore) GetMovieFromTitle(ctx context.Context, title string) (*model.MovieWithCast, error) {
	movies := s.filter(func(m model.Movie) bool { return strings.EqualFold(m.Title, title) })
	if len(movies) == 0 {
		return nil, fmt.Errorf("movie with title '%s': %w", title, model.ErrNotFound)
	}
	return &movies[0], nil
}

func (s *memoryStore) GetMovieTitles(ctx context.Context) ([]string, error) {
	return lo.Map(s.filter(func(model.Movie) bool { return true }), func(m model.MovieWithCast, _ int) string {
		return m.Title
	}), nil
}

func (s *memoryStore) GetMoviesReleasedBetween(ctx context.Context, dr model.DateRange) ([]model.MovieWithCast, error) {
	return s.filter(func(m model.Movie) bool { return dr.Contains(m.ReleaseDate) }), nil
}

func (s *memoryStore) GetMoviesFromGenre(ctx context.Context, genre string) ([]model.MovieWithCast, error) {
	return s.filter(func(m model.Movie) bool {
		return lo.ContainsBy(m.Genre, func(g string) bool { return strings.EqualFold(g, genre) })
	}), nil
}

func (s *memoryStore) GetMoviesFromCountries(ctx context.Context, countries []string) ([]model.MovieWithCast, error) {
	return s.filter(func(m model.Movie) bool {
		return lo.ContainsBy(countries, func(c string) bool { return strings.EqualFold(c, m.Country) })
	}), nil
}

func (s *memoryStore) GetMoviesFromStatus(ctx context.Context, status string) ([]model.MovieWithCast, error) {
	return s.filter(func(m model.Movie) bool { return m.Status == status }), nil
}

func (s *memoryStore) GetMoviesWithPerson(ctx context.Context, personID primitive.ObjectID) ([]model.MovieWithCast, error) {
	return s.filter(func(m model.Movie) bool { return m.Director == personID || slices.Contains(m.Cast, personID) }), nil
}

func (s *memoryStore) GetMovieCreditsWithPeople(ctx context.Context, personIDs []primitive.ObjectID) ([]model.MovieCredits, error) {
	movies := s.filter(func(m model.Movie) bool {
		return slices.Contains(personIDs, m.Director) || lo.Some(m.Cast, personIDs)
	})
	return lo.Map(movies, func(m model.MovieWithCast, _ int) model.MovieCredits {
		return model.MovieCredits{ID: m.ID, Title: m.Title, Genre: m.Genre, Cast: m.Cast}
	}), nil
}

func (s *memoryStore) CountMoviesByGenre(ctx context.Context) ([]model.GenreCount, error) {
	if s.failCount {
		return nil, errStorage
	}
	counts := map[string]int{}
	for _, m := range s.filter(func(model.Movie) bool { return true }) {
		for _, g := range m.Genre {
			counts[g]++
		}
	}
	genreCounts := lo.MapToSlice(counts, func(genre string, count int) model.GenreCount {
		return model.GenreCount{Genre: genre, Count: count}
	})
	slices.SortFunc(genreCounts, func(a, b model.GenreCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Genre, b.Genre)
	})
	return genreCounts, nil
}

func (s *memoryStore) GetMovieWithCastFromID(ctx context.Context, id primitive.ObjectID) (*model.MovieWithCast, error) {
	movies := s.filter(func(m model.Movie) bool { return m.ID == id })
	if len(movies) == 0 {
		return nil, fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	return &movies[0], nil
}

func (s *memoryStore) GetMovieFromID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	movie, ok := lo.Find(s.movies, func(m model.Movie) bool { return m.ID == id })
	if !ok {
		return nil, fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	return &movie, nil
}

func (s *memoryStore) IsTitlePresent(ctx context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.ContainsBy(s.movies, func(m model.Movie) bool { return m.Title == title }), nil
}

func (s *memoryStore) GetPresentTitles(ctx context.Context, titles []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Intersect(titles, lo.Map(s.movies, func(m model.Movie, _ int) string { return m.Title })), nil
}

func (s *memoryStore) AddMovie(ctx context.Context, movie *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = append(s.movies, *movie)
	return nil
}

func (s *memoryStore) AddMovies(ctx context.Context, movies []model.Movie) (inserted, failed []model.Movie, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, movie := range movies {
		if slices.Contains(s.rejectTitles, movie.Title) {
			failed = append(failed, movie)
			continue
		}
		s.movies = append(s.movies, movie)
		inserted = append(inserted, movie)
	}
	return inserted, failed, nil
}

func (s *memoryStore) update(id primitive.ObjectID, apply func(m *model.Movie)) (*model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i, ok := lo.FindIndexOf(s.movies, func(m model.Movie) bool { return m.ID == id })
	if !ok {
		return nil, fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	apply(&s.movies[i])
	movie := s.movies[i]
	return &movie, nil
}

func (s *memoryStore) UpdateMovie(ctx context.Context, id primitive.ObjectID, mu model.MovieUpdate) (*model.Movie, error) {
	return s.update(id, func(m *model.Movie) {
		if mu.Title != nil {
			m.Title = *mu.Title
		}
		if mu.Genre != nil {
			m.Genre = mu.Genre
		}
		if mu.Runtime != nil {
			m.Runtime = *mu.Runtime
		}
		if mu.Poster != nil {
			m.Poster = *mu.Poster
		}
		if mu.PosterStored != nil {
			m.PosterStored = *mu.PosterStored
		}
	})
}

func (s *memoryStore) UpdateMovieStatus(ctx context.Context, id primitive.ObjectID, status string) (*model.Movie, error) {
	return s.update(id, func(m *model.Movie) { m.Status = status })
}

func (s *memoryStore) DeleteMovie(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, i, ok := lo.FindIndexOf(s.movies, func(m model.Movie) bool { return m.ID == id })
	if !ok {
		return fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	s.movies = slices.Delete(s.movies, i, i+1)
	return nil
}

func (s *memoryStore) SearchActorIDs(ctx context.Context, name string) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.FilterMap(s.actors, func(a model.Actor, _ int) (primitive.ObjectID, bool) {
		return a.ID, strings.Contains(strings.ToLower(a.Name), strings.ToLower(name))
	}), nil
}

// memoryPosters keeps the names of stored posters
type memoryPosters struct {
	mu      sync.Mutex
	stored  []string
	failFor string
}

func (p *memoryPosters) StorePoster(ctx context.Context, poster model.PosterUpload) (string, error) {
	if poster.Filename == p.failFor {
		return "", errStorage
	}
	rc, err := poster.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	if _, err = io.ReadAll(rc); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ref := "/uploads/" + poster.Filename
	p.stored = append(p.stored, ref)
	return ref, nil
}

func (p *memoryPosters) RemovePoster(ctx context.Context, ref string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stored = lo.Without(p.stored, ref)
	return nil
}

func newPoster(filename string) model.PosterUpload {
	return model.PosterUpload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("image")), nil
		},
	}
}

func newTestManager() (*MovieManager, *memoryStore, *memoryPosters) {
	store := &memoryStore{}
	posters := &memoryPosters{}
	return NewMovieManager(store, store, posters, NewFilterer()), store, posters
}

func validNewMovie(title string) model.NewMovie {
	return model.NewMovie{
		Title:       title,
		Description: "A movie",
		Genre:       []string{"Drama"},
		Director:    primitive.NewObjectID().Hex(),
		Producers:   []string{"Someone"},
		Cast:        []string{primitive.NewObjectID().Hex()},
		Runtime:     120,
		Language:    "English",
		Rating:      7.5,
		AgeRating:   "PG-13",
		ReleaseDate: "2010-07-16",
		Country:     "USA",
		Status:      "upcoming",
	}
}
