package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Agurato/marquee/internal/model"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "add the movies listed in a JSON file",
	Long: `Add the movies of a JSON file holding either an array of movies or an object with a "movies" array.
Movies whose title is already in the catalog are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// readMoviesFile reads the raw movies of a file holding either an array or an object with a movies array
func readMoviesFile(path string) ([]json.RawMessage, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read '%s': %w", path, err)
	}

	var rawMovies []json.RawMessage
	if err = json.Unmarshal(content, &rawMovies); err == nil {
		return rawMovies, nil
	}
	var body struct {
		Movies []json.RawMessage `json:"movies"`
	}
	if err = json.Unmarshal(content, &body); err != nil || body.Movies == nil {
		return nil, fmt.Errorf("'%s' must hold an array of movies", path)
	}
	return body.Movies, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rawMovies, err := readMoviesFile(args[0])
	if err != nil {
		return err
	}

	newMovies := make([]model.NewMovie, len(rawMovies))
	for i, raw := range rawMovies {
		if newMovies[i], err = model.DecodeNewMovie(raw); err != nil {
			log.Warn().Err(err).Int("index", i).Str("title", newMovies[i].Title).Msg("Could not decode movie")
		}
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.movieManager.AddMovies(ctx, newMovies, nil)
	if err != nil {
		return err
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	if err = out.Encode(report); err != nil {
		return err
	}
	if report.HasFailures() {
		return fmt.Errorf("%d movies could not be added", len(report.Failed))
	}
	return nil
}
