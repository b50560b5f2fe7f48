package business

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/marquee/internal/model"
)

func TestYearRange(t *testing.T) {
	f := NewFilterer()

	dr, err := f.YearRange("2010")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC), dr.Start)
	assert.Equal(t, time.Date(2010, time.December, 31, 23, 59, 59, 999000000, time.UTC), dr.End)
	assert.True(t, dr.Contains(dr.Start))
	assert.True(t, dr.Contains(dr.End))
	assert.False(t, dr.Contains(dr.End.Add(time.Millisecond)))

	for _, year := range []string{"", "abc", "0", "10000", "20.5"} {
		_, err := f.YearRange(year)
		assert.True(t, model.IsValidationError(err), year)
	}
}

func TestDateRange(t *testing.T) {
	f := NewFilterer()

	dr, err := f.DateRange("2010-01-01", "2010-06-30T12:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC), dr.Start)
	assert.Equal(t, time.Date(2010, time.June, 30, 10, 0, 0, 0, time.UTC), dr.End)

	_, err = f.DateRange("", "2010-01-01")
	assert.EqualError(t, err, "Start date and end date are required")
	_, err = f.DateRange("2010-01-01", "tomorrow")
	assert.True(t, model.IsValidationError(err))
}

func TestCountryNames(t *testing.T) {
	f := NewFilterer()

	assert.Equal(t, []string{"FR", "France", "French Republic"}, f.CountryNames("FR"))
	assert.Contains(t, f.CountryNames("fra"), "France")
	assert.Contains(t, f.CountryNames("germany"), "Germany")
	assert.Equal(t, []string{"Atlantis"}, f.CountryNames("Atlantis"))
}

func TestParseDate(t *testing.T) {
	for input, expected := range map[string]time.Time{
		"1999-03-31":               time.Date(1999, time.March, 31, 0, 0, 0, 0, time.UTC),
		"1999-03-31T10:30:00":      time.Date(1999, time.March, 31, 10, 30, 0, 0, time.UTC),
		"1999-03-31T10:30:00.500Z": time.Date(1999, time.March, 31, 10, 30, 0, 500000000, time.UTC),
	} {
		date, err := ParseDate(input)
		require.NoError(t, err, input)
		assert.True(t, expected.Equal(date), input)
	}

	_, err := ParseDate("31/03/1999")
	assert.True(t, model.IsValidationError(err))
}
