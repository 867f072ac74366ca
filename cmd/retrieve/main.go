package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/jurisgraph/jurisgraph/internal/server"
	"github.com/jurisgraph/jurisgraph/internal/util"
	"github.com/jurisgraph/jurisgraph/pkg/logger"
	"github.com/jurisgraph/jurisgraph/pkg/logger/console"
	"github.com/jurisgraph/jurisgraph/pkg/pipeline"
	"github.com/jurisgraph/jurisgraph/pkg/retrieval"
	graphstore "github.com/jurisgraph/jurisgraph/pkg/store/pgx"
)

func main() {
	query := flag.String("query", "", "retrieval query")
	output := flag.String("output", "retrieved.txt", "output artifact path")
	topK := flag.Int("top_k", 0, "number of results to keep (0 uses RETRIEVE_TOP_K)")
	kgLimit := flag.Int("kg_limit", 0, "graph identity limit (0 uses KG_LIMIT)")
	strict := flag.Bool("strict", false, "strict graph matching only, no relaxed fallback")
	flag.Parse()

	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *query == "" {
		logger.Fatal("No query given, use -query")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
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

	pipe := pipeline.New(server.NewExtractor(), server.NewEmbedClient(), st, st)

	cfg := pipeline.ConfigFromEnv()
	if *topK > 0 {
		cfg.TopK = *topK
	}
	if *kgLimit > 0 {
		cfg.KGLimit = *kgLimit
	}
	cfg.StrictMatch = *strict

	state, err := pipe.Retrieve(ctx, *query, cfg)
	if err != nil {
		logger.Fatal("Retrieval failed", "err", err)
	}

	if err := retrieval.WriteArtifact(*output, state.Docs, state.Result.Counts); err != nil {
		logger.Fatal("Failed to write artifact", "err", err)
	}

	logger.Info(
		"Wrote retrieval artifact",
		"path", *output,
		"selected", state.Result.Counts.Selected,
		"vector", state.Result.Counts.Vector,
		"kg", state.Result.Counts.KG,
	)
}
