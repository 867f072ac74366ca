package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/jurisgraph/jurisgraph/internal/queue"
	mid "github.com/jurisgraph/jurisgraph/internal/server/middleware"
	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/ai"
	oai "github.com/jurisgraph/jurisgraph/pkg/ai/ollama"
	gai "github.com/jurisgraph/jurisgraph/pkg/ai/openai"
	"github.com/jurisgraph/jurisgraph/pkg/extract"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/pipeline"
	graphstore "github.com/jurisgraph/jurisgraph/pkg/store/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewEmbedClient builds the embedding client selected by AI_ADAPTER, or
// nil when the configuration is incomplete (the vector path degrades).
func NewEmbedClient() ai.EmbedClient {
	cfg := ai.EmbedConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Warn("Embedding client not configured, vector path disabled", "err", err)
		return nil
	}

	switch cfg.Adapter {
	case ai.AdapterOllama:
		client, err := oai.NewEmbedOllamaClient(cfg)
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewEmbedOpenAIClient(cfg)
	}
}

// NewExtractor builds the subprocess extractor, or nil when EXTRACTOR_CMD
// is unset (queries then run without entity extraction).
func NewExtractor() extract.Extractor {
	ex, err := extract.NewSubprocessFromEnv()
	if err != nil {
		logger.Warn("Extractor not configured, query entity extraction disabled", "err", err)
		return nil
	}
	return ex
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	embedDim := int(util.GetEnvNumeric("AI_EMBED_DIM", 4096))
	st := graphstore.NewStoreWithConnection(conn, embedDim)
	if err := st.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", "err", err)
	}

	pipe := pipeline.New(NewExtractor(), NewEmbedClient(), st, st)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	e.Use(mid.AppContextMiddleware(conn, ch, pipe))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
