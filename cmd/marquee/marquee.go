package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Agurato/marquee/internal/business"
	"github.com/Agurato/marquee/internal/config"
	"github.com/Agurato/marquee/internal/infrastructure"
)

var rootCmd = &cobra.Command{
	Use:           "marquee",
	Short:         "marquee",
	Long:          `REST API serving a movie catalog`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "env file to load before reading the environment, like `.env`")
	rootCmd.AddCommand(serveCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("marquee stopped")
	}
}

// loadConfig loads the configuration and sets up the global logger from it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var envFiles []string
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := setupLogger(cfg.LogLevel, cfg.LogPretty); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return nil
}

// app holds the components shared by the commands
type app struct {
	db           *infrastructure.MongoDB
	movieManager *business.MovieManager
	diskPosters  *infrastructure.DiskPosterStore
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := infrastructure.NewMongoDB(ctx,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
		cfg.DB.Name)
	if err != nil {
		return nil, err
	}

	a := &app{db: db}
	var posters business.PosterStorer
	switch cfg.PosterBackend {
	case config.PosterBackendS3:
		posters, err = infrastructure.NewBucketPosterStore(ctx,
			cfg.S3.Endpoint,
			cfg.S3.AccessKey,
			cfg.S3.SecretKey,
			cfg.S3.Bucket,
			cfg.S3.UseSSL)
	default:
		a.diskPosters, err = infrastructure.NewDiskPosterStore(cfg.UploadsPath)
		posters = a.diskPosters
	}
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	a.movieManager = business.NewMovieManager(db, db, posters, business.NewFilterer())
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Could not close MongoDB connection")
	}
}
