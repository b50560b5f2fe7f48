package business

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Agurato/marquee/internal/model"
)

// updateField parses one field of a movie update into mu
type updateField struct {
	key   string
	name  string
	parse func(mu *model.MovieUpdate, value any) error
}

// updateFields lists the fields that can be updated. List fields come first so that
// their errors are reported before any other.
var updateFields = []updateField{
	{"genre", "Genre", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Genre, err = toStrings("Genre", v)
		return
	}},
	{"producers", "Producers", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Producers, err = toStrings("Producers", v)
		return
	}},
	{"cast", "Cast", func(mu *model.MovieUpdate, v any) error {
		ids, err := toStrings("Cast", v)
		if err != nil {
			return err
		}
		mu.Cast, err = parseObjectIDs("cast", ids)
		return err
	}},
	{"title", "Title", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Title, err = toString("Title", v)
		return
	}},
	{"description", "Description", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Description, err = toString("Description", v)
		return
	}},
	{"director", "Director", func(mu *model.MovieUpdate, v any) error {
		hex, err := toString("Director", v)
		if err != nil {
			return err
		}
		id, err := primitive.ObjectIDFromHex(*hex)
		if err != nil {
			return model.NewValidationError(fmt.Sprintf("Invalid director id '%s'.", *hex))
		}
		mu.Director = &id
		return nil
	}},
	{"runtime", "Runtime", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Runtime, err = toInt("Runtime", v)
		return
	}},
	{"language", "Language", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Language, err = toString("Language", v)
		return
	}},
	{"rating", "Rating", func(mu *model.MovieUpdate, v any) error {
		rating, ok := v.(float64)
		if !ok {
			return model.NewValidationError("Rating must be a number.")
		}
		mu.Rating = &rating
		return nil
	}},
	{"ageRating", "Age rating", func(mu *model.MovieUpdate, v any) (err error) {
		mu.AgeRating, err = toString("Age rating", v)
		return
	}},
	{"release_date", "Release date", func(mu *model.MovieUpdate, v any) error {
		value, err := toString("Release date", v)
		if err != nil {
			return err
		}
		releaseDate, err := ParseDate(*value)
		if err != nil {
			return err
		}
		mu.ReleaseDate = &releaseDate
		return nil
	}},
	{"trailer", "Trailer", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Trailer, err = toString("Trailer", v)
		return
	}},
	{"poster", "Poster", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Poster, err = toString("Poster", v)
		return
	}},
	{"country", "Country", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Country, err = toString("Country", v)
		return
	}},
	{"status", "Status", func(mu *model.MovieUpdate, v any) (err error) {
		mu.Status, err = toString("Status", v)
		return
	}},
	{"bookings_count", "Bookings count", func(mu *model.MovieUpdate, v any) (err error) {
		mu.BookingsCount, err = toInt("Bookings count", v)
		return
	}},
}

// ParseMovieUpdate builds a MovieUpdate from a decoded JSON object.
// Unknown keys are ignored, known keys must hold a value of the right type.
func ParseMovieUpdate(fields map[string]any) (model.MovieUpdate, error) {
	var mu model.MovieUpdate
	for _, field := range updateFields {
		value, ok := fields[field.key]
		if !ok {
			continue
		}
		if value == nil {
			return model.MovieUpdate{}, model.NewValidationError(fmt.Sprintf("%s cannot be null.", field.name))
		}
		if err := field.parse(&mu, value); err != nil {
			return model.MovieUpdate{}, err
		}
	}
	return mu, nil
}

func toString(name string, value any) (*string, error) {
	s, ok := value.(string)
	if !ok {
		return nil, model.NewValidationError(fmt.Sprintf("%s must be a string.", name))
	}
	return &s, nil
}

func toStrings(name string, value any) ([]string, error) {
	values, ok := value.([]any)
	if !ok {
		return nil, model.NewValidationError(fmt.Sprintf("%s must be an array.", name))
	}
	strs := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, model.NewValidationError(fmt.Sprintf("%s must only contain strings.", name))
		}
		strs = append(strs, s)
	}
	return strs, nil
}

func toInt(name string, value any) (*int, error) {
	f, ok := value.(float64)
	if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil, model.NewValidationError(fmt.Sprintf("%s must be an integer.", name))
	}
	i := int(f)
	return &i, nil
}

func parseObjectIDs(name string, hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, hex := range hexIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, model.NewValidationError(fmt.Sprintf("Invalid %s id '%s'.", name, hex))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
