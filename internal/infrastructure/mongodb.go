package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Agurato/marquee/internal/model"
)

const (
	moviesCollection = "movies"
	actorsCollection = "actors"
)

type MongoDB struct {
	client *mongo.Client

	moviesColl *mongo.Collection
	actorsColl *mongo.Collection
}

// NewMongoDB connects to the database and checks that it is reachable
func NewMongoDB(ctx context.Context, dbUser, dbPassword, dbURL, dbPort, dbName string) (*MongoDB, error) {
	uri := url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%s", dbURL, dbPort),
	}
	if dbUser != "" {
		uri.User = url.UserPassword(dbUser, dbPassword)
	}
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri.String()))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping MongoDB: %w", err)
	}
	log.Info().Str("host", uri.Host).Str("database", dbName).Msg("Connected to MongoDB")

	return newMongoDB(mongoClient.Database(dbName)), nil
}

func newMongoDB(db *mongo.Database) *MongoDB {
	return &MongoDB{
		client:     db.Client(),
		moviesColl: db.Collection(moviesCollection),
		actorsColl: db.Collection(actorsCollection),
	}
}

// Close closes the MongoDB connection
func (m MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// exactMatch builds a case insensitive regex matching the whole value
func exactMatch(value string) primitive.Regex {
	return primitive.Regex{Pattern: fmt.Sprintf("^%s$", regexp.QuoteMeta(value)), Options: "i"}
}

// partialMatch builds a case insensitive regex matching any value containing the input
func partialMatch(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func releasedBetweenFilter(dr model.DateRange) bson.M {
	return bson.M{"release_date": bson.M{"$gte": dr.Start, "$lte": dr.End}}
}

func countriesFilter(countries []string) bson.M {
	regexes := make(bson.A, 0, len(countries))
	for _, country := range countries {
		regexes = append(regexes, exactMatch(country))
	}
	return bson.M{"country": bson.M{"$in": regexes}}
}

func withPersonFilter(personID primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"cast": personID},
		bson.M{"director": personID},
	}}
}

func withAnyPersonFilter(personIDs []primitive.ObjectID) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"cast": bson.M{"$in": personIDs}},
		bson.M{"director": bson.M{"$in": personIDs}},
	}}
}

// populateStage replaces the references held in field by the referenced actors' id, name and image
func populateStage(field string) bson.D {
	var match bson.D
	if field == "director" {
		match = bson.D{{Key: "$eq", Value: bson.A{"$_id", "$$ref"}}}
	} else {
		match = bson.D{{Key: "$in", Value: bson.A{"$_id", bson.D{{Key: "$ifNull", Value: bson.A{"$$ref", bson.A{}}}}}}}
	}
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: actorsCollection},
		{Key: "let", Value: bson.D{{Key: "ref", Value: "$" + field}}},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: match}}}},
			bson.D{{Key: "$project", Value: bson.D{{Key: "name", Value: 1}, {Key: "image", Value: 1}}}},
		}},
		{Key: "as", Value: field},
	}}}
}

func moviesWithCastPipeline(filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "title", Value: 1}}}},
		populateStage("cast"),
	}
}

func movieCreditsPipeline(filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "title", Value: 1}}}},
		populateStage("cast"),
		populateStage("director"),
		{{Key: "$addFields", Value: bson.D{{Key: "director", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$director", 0}}}}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "genre", Value: 1},
			{Key: "release_date", Value: 1},
			{Key: "bookings_count", Value: 1},
			{Key: "cast", Value: 1},
			{Key: "director", Value: 1},
		}}},
	}
}

func countByGenrePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$genre"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$genre"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "genre", Value: "$_id"},
			{Key: "count", Value: 1},
		}}},
	}
}

// getMoviesWithCast runs the filter against the movies collection and populates their cast
func (m MongoDB) getMoviesWithCast(ctx context.Context, filter bson.M) (movies []model.MovieWithCast, err error) {
	moviesCur, err := m.moviesColl.Aggregate(ctx, moviesWithCastPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("error while retrieving movies from DB: %w", err)
	}
	if err = moviesCur.All(ctx, &movies); err != nil {
		return nil, fmt.Errorf("error while decoding movies from DB: %w", err)
	}
	return movies, nil
}

// GetMovies returns all the movies
func (m MongoDB) GetMovies(ctx context.Context) ([]model.MovieWithCast, error) {
	return m.getMoviesWithCast(ctx, bson.M{})
}

// GetMovieFromTitle returns the movie whose title matches, ignoring case
func (m MongoDB) GetMovieFromTitle(ctx context.Context, title string) (*model.MovieWithCast, error) {
	movies, err := m.getMoviesWithCast(ctx, bson.M{"title": exactMatch(title)})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("movie with title '%s': %w", title, model.ErrNotFound)
	}
	return &movies[0], nil
}

// GetMovieTitles returns the title of every movie
func (m MongoDB) GetMovieTitles(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "title", Value: 1}})
	moviesCur, err := m.moviesColl.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving titles from DB: %w", err)
	}
	var movies []model.Movie
	if err = moviesCur.All(ctx, &movies); err != nil {
		return nil, fmt.Errorf("error while decoding titles from DB: %w", err)
	}
	titles := make([]string, 0, len(movies))
	for _, movie := range movies {
		titles = append(titles, movie.Title)
	}
	return titles, nil
}

// GetMoviesReleasedBetween returns the movies released within the inclusive date range
func (m MongoDB) GetMoviesReleasedBetween(ctx context.Context, dr model.DateRange) ([]model.MovieWithCast, error) {
	return m.getMoviesWithCast(ctx, releasedBetweenFilter(dr))
}

// GetMoviesFromGenre returns the movies tagged with the genre, ignoring case
func (m MongoDB) GetMoviesFromGenre(ctx context.Context, genre string) ([]model.MovieWithCast, error) {
	return m.getMoviesWithCast(ctx, bson.M{"genre": exactMatch(genre)})
}

// GetMoviesFromCountries returns the movies produced in any of the countries, ignoring case.
// Several names can designate the same country (common and official names).
func (m MongoDB) GetMoviesFromCountries(ctx context.Context, countries []string) ([]model.MovieWithCast, error) {
	return m.getMoviesWithCast(ctx, countriesFilter(countries))
}

// GetMoviesFromStatus returns the movies having exactly this status
func (m MongoDB) GetMoviesFromStatus(ctx context.Context, status string) ([]model.MovieWithCast, error) {
	return m.getMoviesWithCast(ctx, bson.M{"status": status})
}

// GetMoviesWithPerson returns the movies in which the person is part of the cast or is the director
func (m MongoDB) GetMoviesWithPerson(ctx context.Context, personID primitive.ObjectID) ([]model.MovieWithCast, error) {
	return m.getMoviesWithCast(ctx, withPersonFilter(personID))
}

// GetMovieCreditsWithPeople returns the credits of the movies in which any of the people played or that they directed
func (m MongoDB) GetMovieCreditsWithPeople(ctx context.Context, personIDs []primitive.ObjectID) (credits []model.MovieCredits, err error) {
	creditsCur, err := m.moviesColl.Aggregate(ctx, movieCreditsPipeline(withAnyPersonFilter(personIDs)))
	if err != nil {
		return nil, fmt.Errorf("error while retrieving movie credits from DB: %w", err)
	}
	if err = creditsCur.All(ctx, &credits); err != nil {
		return nil, fmt.Errorf("error while decoding movie credits from DB: %w", err)
	}
	return credits, nil
}

// CountMoviesByGenre returns the number of movies per genre, most common genres first
func (m MongoDB) CountMoviesByGenre(ctx context.Context) (counts []model.GenreCount, err error) {
	countsCur, err := m.moviesColl.Aggregate(ctx, countByGenrePipeline())
	if err != nil {
		return nil, fmt.Errorf("error while counting genres: %w", err)
	}
	if err = countsCur.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("error while decoding genre counts: %w", err)
	}
	return counts, nil
}

// GetMovieWithCastFromID returns a movie and its cast from its ID
func (m MongoDB) GetMovieWithCastFromID(ctx context.Context, id primitive.ObjectID) (*model.MovieWithCast, error) {
	movies, err := m.getMoviesWithCast(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	return &movies[0], nil
}

// GetMovieFromID returns a movie from its ID, without populating references
func (m MongoDB) GetMovieFromID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error) {
	var movie model.Movie
	err := m.moviesColl.FindOne(ctx, bson.M{"_id": id}).Decode(&movie)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get movie '%s': %w", id.Hex(), err)
	}
	return &movie, nil
}

// IsTitlePresent checks if a movie with exactly this title is already in DB
func (m MongoDB) IsTitlePresent(ctx context.Context, title string) (bool, error) {
	err := m.moviesColl.FindOne(ctx, bson.M{"title": title}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not look for title '%s': %w", title, err)
	}
	return true, nil
}

// GetPresentTitles returns the titles among the input that are already in DB
func (m MongoDB) GetPresentTitles(ctx context.Context, titles []string) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "title", Value: 1}})
	moviesCur, err := m.moviesColl.Find(ctx, bson.M{"title": bson.M{"$in": titles}}, opts)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving titles from DB: %w", err)
	}
	var movies []model.Movie
	if err = moviesCur.All(ctx, &movies); err != nil {
		return nil, fmt.Errorf("error while decoding titles from DB: %w", err)
	}
	present := make([]string, 0, len(movies))
	for _, movie := range movies {
		present = append(present, movie.Title)
	}
	return present, nil
}

// AddMovie inserts a movie
func (m MongoDB) AddMovie(ctx context.Context, movie *model.Movie) error {
	if _, err := m.moviesColl.InsertOne(ctx, movie); err != nil {
		return fmt.Errorf("could not insert movie '%s': %w", movie.Title, err)
	}
	return nil
}

// AddMovies inserts several movies without stopping at the first failure.
// Movies rejected by the database are returned in failed, the others in inserted.
func (m MongoDB) AddMovies(ctx context.Context, movies []model.Movie) (inserted, failed []model.Movie, err error) {
	if len(movies) == 0 {
		return nil, nil, nil
	}
	docs := make([]any, len(movies))
	for i := range movies {
		docs[i] = movies[i]
	}

	_, err = m.moviesColl.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return movies, nil, nil
	}

	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || len(bulkErr.WriteErrors) == 0 {
		return nil, nil, fmt.Errorf("could not insert movies: %w", err)
	}
	failedIndexes := make(map[int]bool, len(bulkErr.WriteErrors))
	for _, writeErr := range bulkErr.WriteErrors {
		failedIndexes[writeErr.Index] = true
		log.Warn().Int("index", writeErr.Index).Int("code", writeErr.Code).Str("error", writeErr.Message).Msg("Movie rejected by database")
	}
	for i, movie := range movies {
		if failedIndexes[i] {
			failed = append(failed, movie)
		} else {
			inserted = append(inserted, movie)
		}
	}
	return inserted, failed, nil
}

func movieUpdateSet(mu model.MovieUpdate) bson.D {
	set := bson.D{}
	add := func(key string, value any) {
		set = append(set, bson.E{Key: key, Value: value})
	}
	if mu.Title != nil {
		add("title", *mu.Title)
	}
	if mu.Description != nil {
		add("description", *mu.Description)
	}
	if mu.Genre != nil {
		add("genre", mu.Genre)
	}
	if mu.Director != nil {
		add("director", *mu.Director)
	}
	if mu.Producers != nil {
		add("producers", mu.Producers)
	}
	if mu.Cast != nil {
		add("cast", mu.Cast)
	}
	if mu.Runtime != nil {
		add("runtime", *mu.Runtime)
	}
	if mu.Language != nil {
		add("language", *mu.Language)
	}
	if mu.Rating != nil {
		add("rating", *mu.Rating)
	}
	if mu.AgeRating != nil {
		add("ageRating", *mu.AgeRating)
	}
	if mu.ReleaseDate != nil {
		add("release_date", *mu.ReleaseDate)
	}
	if mu.Trailer != nil {
		add("trailer", *mu.Trailer)
	}
	if mu.Poster != nil {
		add("poster", *mu.Poster)
	}
	if mu.PosterStored != nil {
		add("poster_stored", *mu.PosterStored)
	}
	if mu.Country != nil {
		add("country", *mu.Country)
	}
	if mu.Status != nil {
		add("status", *mu.Status)
	}
	if mu.BookingsCount != nil {
		add("bookings_count", *mu.BookingsCount)
	}
	return set
}

func (m MongoDB) updateMovie(ctx context.Context, id primitive.ObjectID, set bson.D) (*model.Movie, error) {
	var movie model.Movie
	err := m.moviesColl.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&movie)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not update movie '%s': %w", id.Hex(), err)
	}
	return &movie, nil
}

// UpdateMovie sets the fields present in the update and returns the updated movie
func (m MongoDB) UpdateMovie(ctx context.Context, id primitive.ObjectID, mu model.MovieUpdate) (*model.Movie, error) {
	return m.updateMovie(ctx, id, movieUpdateSet(mu))
}

// UpdateMovieStatus only changes the status of the movie
func (m MongoDB) UpdateMovieStatus(ctx context.Context, id primitive.ObjectID, status string) (*model.Movie, error) {
	return m.updateMovie(ctx, id, bson.D{{Key: "status", Value: status}})
}

// DeleteMovie deletes a movie
func (m MongoDB) DeleteMovie(ctx context.Context, id primitive.ObjectID) error {
	del, err := m.moviesColl.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("could not delete movie '%s': %w", id.Hex(), err)
	}
	if del.DeletedCount == 0 {
		return fmt.Errorf("movie '%s': %w", id.Hex(), model.ErrNotFound)
	}
	return nil
}
