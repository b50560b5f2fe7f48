package business

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pariz/gountries"
	"github.com/samber/lo"

	"github.com/Agurato/marquee/internal/model"
)

// dateLayouts are the accepted formats for dates given in query parameters or request bodies
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Filterer turns raw query parameters into filter values
type Filterer struct {
	countries *gountries.Query
}

func NewFilterer() *Filterer {
	return &Filterer{
		countries: gountries.New(),
	}
}

// YearRange returns the inclusive range covering a whole year, from January 1st 00:00:00.000 to December 31st 23:59:59.999 UTC
func (f *Filterer) YearRange(year string) (model.DateRange, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		return model.DateRange{}, model.NewValidationError("Date is required")
	}
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return model.DateRange{}, model.NewValidationError(fmt.Sprintf("Invalid year '%s'", year))
	}
	return model.DateRange{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y, time.December, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}, nil
}

// DateRange parses both ends of an inclusive date range
func (f *Filterer) DateRange(start, end string) (model.DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return model.DateRange{}, model.NewValidationError("Start date and end date are required")
	}
	startDate, err := ParseDate(start)
	if err != nil {
		return model.DateRange{}, err
	}
	endDate, err := ParseDate(end)
	if err != nil {
		return model.DateRange{}, err
	}
	return model.DateRange{Start: startDate, End: endDate}, nil
}

// CountryNames returns the names a country can be stored under: the input itself,
// and the common and official names when the input is a known country name or ISO 3166 code
func (f *Filterer) CountryNames(input string) []string {
	input = strings.TrimSpace(input)
	names := []string{input}

	var (
		country gountries.Country
		err     error
	)
	if len(input) == 2 || len(input) == 3 {
		country, err = f.countries.FindCountryByAlpha(input)
	}
	if country.Name.Common == "" {
		country, err = f.countries.FindCountryByName(input)
	}
	if err == nil {
		names = append(names, country.Name.Common, country.Name.Official)
	}

	return lo.Uniq(lo.Compact(names))
}

// ParseDate parses a date written as RFC 3339 or as YYYY-MM-DD, in UTC if no offset is given
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, model.NewValidationError(fmt.Sprintf("Invalid date '%s'", value))
}
