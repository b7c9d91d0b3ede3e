package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/noswipe/noswipe-backend/internal/command"
	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/datasources/embedserve"
	"github.com/noswipe/noswipe-backend/internal/datasources/mysql"
	"github.com/noswipe/noswipe-backend/internal/datasources/pinecone"
	"github.com/noswipe/noswipe-backend/internal/domain"
	"github.com/noswipe/noswipe-backend/internal/scheduler"
	"github.com/noswipe/noswipe-backend/internal/transport/web/router"
	"github.com/noswipe/noswipe-backend/internal/transport/web/server"
)

type Component interface {
	Run(ctx context.Context) error
}

func Setup(ctx context.Context) ([]Component, error) {
	repo, err := setupRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("setting up repository: %w", err)
	}

	extractor, err := setupFeatureExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("setting up feature extractor: %w", err)
	}

	vectorIndex, err := setupProfileVectorIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("setting up profile vector index: %w", err)
	}

	composite, err := setupCompositeModel(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("setting up composite model: %w", err)
	}

	authMiddleware, err := setupAuthMiddleware(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("setting up auth middleware: %w", err)
	}

	processFeedbackCmd := command.NewProcessFeedback(
		repo, repo, repo,
		DefaultProcessFeedbackConfig(),
	)

	calibrateCmd := command.NewCalibrateUserModel(
		repo, repo, repo,
		extractor,
		repo, repo, repo,
	)
	calibrateCmd.ProfilePhotos = repo
	calibrateCmd.VectorIndex = vectorIndex

	generateMatchesCmd := command.NewGenerateMatches(
		repo, repo,
		extractor,
		repo,
		composite,
		DefaultMatchingConfig(),
	)
	generateMatchesCmd.Recall = vectorIndex

	batchConfig := DefaultRunBatchGenerationConfig()

	weeklyBatchesCmd := command.NewGenerateWeeklyBatches(
		generateMatchesCmd,
		repo,
		matchHistoryLookbackDays,
	)

	listMatchesCmd := command.NewListCurrentMatches(repo, generateMatchesCmd, batchConfig.MatchTTL)

	compatibilityCmd := command.NewComputeCompatibility(repo, repo, repo, extractor, composite)

	retrainStatusCmd := command.NewGetRetrainStatus(repo, DefaultProcessFeedbackConfig().RetrainThreshold)

	createAPITokenCmd := command.NewCreateAPIToken(repo)

	runBatchGenerationCmd := command.NewRunBatchGeneration(weeklyBatchesCmd, repo, repo, batchConfig)

	runRecalibrationCmd := command.NewRunRecalibration(calibrateCmd, repo, recalibrationUserLimit)

	httpRouter, err := router.MakeRouter(
		router.Commands{
			ProcessFeedback: processFeedbackCmd,
			ListMatches:     listMatchesCmd,
			Compatibility:   compatibilityCmd,
			Calibrate:       calibrateCmd,
			RetrainStatus:   retrainStatusCmd,
			CreateAPIToken:  createAPITokenCmd,
		},
		repo,
		authMiddleware,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create HTTP router: %w", err)
	}

	return []Component{
		&server.Server{
			TLSDisabled:      MustGetEnvAsBoolean(ctx, "HTTP_TLS_DISABLED"),
			TLSDisabledPort:  MustGetEnvAsInt(ctx, "PORT"),
			AutocertHostname: MustGetEnvAsString(ctx, "HTTP_AUTOCERT_HOSTNAME"),
			Router:           httpRouter,
		},
		&scheduler.Scheduler{
			Jobs: []scheduler.Job{
				{
					Name:     "batch_generation",
					CronExpr: MustGetEnvAsString(ctx, "BATCH_GENERATION_CRON"),
					Run: func(ctx context.Context) error {
						_, err := runBatchGenerationCmd.Execute(ctx, command.RunBatchGenerationRequest{})
						return err
					},
				},
				{
					Name:     "recalibration",
					CronExpr: MustGetEnvAsString(ctx, "RECALIBRATION_CRON"),
					Run: func(ctx context.Context) error {
						_, err := runRecalibrationCmd.Execute(ctx, command.RunRecalibrationRequest{})
						return err
					},
				},
			},
		},
	}, nil
}

func setupRepository(ctx context.Context) (*mysql.Repository, error) {
	db, err := mysql.Connect(ctx, MustGetEnvAsString(ctx, "MYSQL_URI"))
	if err != nil {
		return nil, fmt.Errorf("connecting to MySQL: %w", err)
	}
	return mysql.NewRepository(db, datasources.DefaultFeedbackWindowCapacity), nil
}

func setupFeatureExtractor(ctx context.Context) (datasources.FeatureExtractor, error) {
	switch driver := MustGetEnvAsString(ctx, "EXTRACTOR_DRIVER"); driver {
	case "null":
		return datasources.NullExtractor{}, nil
	case "embedserve":
		return embedserve.NewClient(
			MustGetEnvAsString(ctx, "EMBED_API_URL"),
			MustGetEnvAsString(ctx, "EMBED_API_KEY"),
			MustGetEnvAsString(ctx, "EMBED_MODEL_VERSION"),
		), nil
	default:
		return nil, fmt.Errorf("unknown extractor driver [%s]", driver)
	}
}

func setupProfileVectorIndex(ctx context.Context) (datasources.ProfileVectorIndex, error) {
	switch driver := MustGetEnvAsString(ctx, "RECALL_DRIVER"); driver {
	case "null":
		return datasources.NullProfileVectorIndex{}, nil
	case "pinecone":
		client, err := pinecone.NewClient(
			ctx,
			MustGetEnvAsString(ctx, "PINECONE_API_KEY"),
			MustGetEnvAsString(ctx, "PINECONE_INDEX_NAME"),
		)
		if err != nil {
			return nil, fmt.Errorf("connecting to pinecone: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown recall driver [%s]", driver)
	}
}

// setupCompositeModel fits the interest normalization from a sample of the
// population's interest vectors. An empty corpus is survivable: scoring
// reports unfitted until the next restart finds data.
func setupCompositeModel(ctx context.Context, profiles datasources.InterestVectorLister) (*domain.CompositeModel, error) {
	interests := domain.NewInterestModel()

	corpus, err := profiles.ListInterestVectors(ctx, interestCorpusLimit)
	if err != nil {
		return nil, fmt.Errorf("listing interest vector corpus: %w", err)
	}

	if err := interests.Fit(corpus); err != nil {
		var insufficient *domain.InsufficientDataError
		if !errors.As(err, &insufficient) {
			return nil, fmt.Errorf("fitting interest model: %w", err)
		}
		domain.LoggerFromContext(ctx).WarnContext(ctx, "interest corpus empty, interest scoring disabled",
			"error", err)
	}

	return domain.NewCompositeModel(interests), nil
}

func setupAuthMiddleware(
	ctx context.Context, tokens datasources.APITokenRepository,
) (func(http.Handler) http.Handler, error) {
	var validators []router.AuthValidator

	for _, driver := range MustGetEnvAsStrings(ctx, "AUTH_DRIVERS") {
		switch driver {
		case "auth0":
			v, err := router.NewAuth0Validator(
				MustGetEnvAsString(ctx, "AUTH0_DOMAIN"),
				MustGetEnvAsString(ctx, "AUTH0_AUDIENCE"),
			)
			if err != nil {
				return nil, fmt.Errorf("creating Auth0 validator: %w", err)
			}
			validators = append(validators, v)
		case "api_token":
			validators = append(validators, router.NewAPITokenValidator(ctx, tokens, tokens))
		default:
			return nil, fmt.Errorf("unknown auth driver [%s]", driver)
		}
	}

	return router.NewAuthMiddleware(validators), nil
}
