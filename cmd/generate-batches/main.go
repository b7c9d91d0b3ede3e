package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/noswipe/noswipe-backend/internal/app"
	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/datasources/embedserve"
	"github.com/noswipe/noswipe-backend/internal/datasources/mysql"
	"github.com/noswipe/noswipe-backend/internal/datasources/pinecone"
	"github.com/noswipe/noswipe-backend/internal/domain"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx := context.Background()

	// Setup logger
	logLevel := slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %s\n", lvl)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	ctx = domain.ContextWithLogger(ctx, logger)

	if err := run(ctx); err != nil {
		logger.ErrorContext(ctx, "batch generation failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "batch generation completed successfully")
}

func run(ctx context.Context) error {
	logger := domain.LoggerFromContext(ctx)

	// Connect to MySQL
	mysqlURI := os.Getenv("MYSQL_URI")
	if mysqlURI == "" {
		return fmt.Errorf("MYSQL_URI environment variable is required")
	}

	db, err := mysql.Connect(ctx, mysqlURI)
	if err != nil {
		return fmt.Errorf("connecting to MySQL: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := mysql.NewRepository(db, datasources.DefaultFeedbackWindowCapacity)

	// Setup the feature extractor
	embedURL := os.Getenv("EMBED_API_URL")
	embedKey := os.Getenv("EMBED_API_KEY")
	embedModel := os.Getenv("EMBED_MODEL_VERSION")

	if embedURL == "" || embedModel == "" {
		return fmt.Errorf("EMBED_API_URL and EMBED_MODEL_VERSION environment variables are required")
	}

	extractor := embedserve.NewClient(embedURL, embedKey, embedModel)

	// Fit the interest normalization from the current population
	interests := domain.NewInterestModel()
	corpus, err := repo.ListInterestVectors(ctx, 1000)
	if err != nil {
		return fmt.Errorf("listing interest vector corpus: %w", err)
	}
	if err := interests.Fit(corpus); err != nil {
		return fmt.Errorf("fitting interest model: %w", err)
	}

	generateCmd := command.NewGenerateMatches(
		repo, repo,
		extractor,
		repo,
		domain.NewCompositeModel(interests),
		app.DefaultMatchingConfig(),
	)

	// Optional vector recall: used only when a Pinecone index is configured
	pineconeAPIKey := os.Getenv("PINECONE_API_KEY")
	pineconeIndexName := os.Getenv("PINECONE_INDEX_NAME")
	if pineconeAPIKey != "" && pineconeIndexName != "" {
		pineconeClient, err := pinecone.NewClient(ctx, pineconeAPIKey, pineconeIndexName)
		if err != nil {
			return fmt.Errorf("connecting to Pinecone: %w", err)
		}
		generateCmd.Recall = pineconeClient
	} else {
		logger.InfoContext(ctx, "no Pinecone index configured, scoring full candidate pools")
	}

	weeklyCmd := command.NewGenerateWeeklyBatches(generateCmd, repo, 30)

	runCmd := command.NewRunBatchGeneration(
		weeklyCmd,
		repo, repo,
		app.DefaultRunBatchGenerationConfig(),
	)

	// Execute
	_, err = runCmd.Execute(ctx, command.RunBatchGenerationRequest{})
	return err
}
