package business

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

const (
	maxSuggestions = 3
	// minSuggestionDistance is the edit distance always tolerated, whatever the length of the searched title
	minSuggestionDistance = 3
)

// articles are ignored at the start of titles, "Matrix" being as close to "The Matrix" as "The Matrix" itself
var articles = []string{"a ", "an ", "the "}

func removeArticle(title string) string {
	for _, article := range articles {
		if strings.HasPrefix(title, article) {
			return title[len(article):]
		}
	}
	return title
}

// titleDistance is the edit distance between two case folded titles, with or without their leading article
func titleDistance(a, b string) int {
	return min(
		levenshtein.ComputeDistance(a, b),
		levenshtein.ComputeDistance(removeArticle(a), removeArticle(b)),
	)
}

type suggestion struct {
	title    string
	distance int
}

// SuggestTitles returns up to 3 titles close to the searched one, closest first
func SuggestTitles(search string, titles []string) []string {
	fold := cases.Fold()
	search = fold.String(search)
	maxDistance := max(minSuggestionDistance, len([]rune(search))/3)

	var suggestions []suggestion
	for _, title := range titles {
		distance := titleDistance(search, fold.String(title))
		if distance <= maxDistance {
			suggestions = append(suggestions, suggestion{title: title, distance: distance})
		}
	}
	slices.SortFunc(suggestions, func(a, b suggestion) int {
		if a.distance != b.distance {
			return a.distance - b.distance
		}
		if a.title < b.title {
			return -1
		}
		if a.title > b.title {
			return 1
		}
		return 0
	})

	titlesFound := make([]string, 0, maxSuggestions)
	for i := 0; i < len(suggestions) && i < maxSuggestions; i++ {
		titlesFound = append(titlesFound, suggestions[i].title)
	}
	return titlesFound
}
