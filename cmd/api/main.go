package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/solcash/backend/internal/confirm"
	"github.com/solcash/backend/internal/history"
	"github.com/solcash/backend/internal/ledgerclient"
	"github.com/solcash/backend/internal/models"
	"github.com/solcash/backend/internal/payment"
	"github.com/solcash/backend/internal/store"
	"github.com/solcash/backend/internal/transfer"
	"github.com/solcash/backend/internal/watch"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// The engine is handed a ledger client by its environment; this binary
	// runs against the in-process simulation so both flows are exercisable
	// without a cluster.
	client := ledgerclient.NewMemory()
	slog.Info("using in-process simulated ledger")

	wallet := os.Getenv("WALLET_ADDRESS")
	if wallet == "" {
		wallet = "11111111111111111111111111111111"
	}
	walletAddr, err := models.ParseAddress(wallet)
	if err != nil {
		slog.Error("WALLET_ADDRESS is not a valid ledger address", "error", err)
		os.Exit(1)
	}

	validator := transfer.NewValidator(client)
	watcher := watch.New(client, validator, logger)

	// History store: Postgres when DATABASE_URL is set, otherwise in-memory.
	// The background finality checker rides on River and therefore only runs
	// in the Postgres configuration.
	var (
		recordStore    store.Store
		enqueueConfirm transfer.EnqueueConfirmFunc
		riverClient    *river.Client[pgx.Tx]
	)
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			slog.Error("Unable to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			slog.Error("Cannot reach PostgreSQL. Start it or unset DATABASE_URL for in-memory mode", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to PostgreSQL database")

		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("kv store migration failed", "error", err)
			os.Exit(1)
		}
		recordStore = pg

		migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
		if err != nil {
			slog.Error("Failed to create River migrator", "error", err)
			os.Exit(1)
		}
		if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
			slog.Error("River migrate up failed", "error", err)
			os.Exit(1)
		}
		slog.Info("River migrations applied")

		workers := river.NewWorkers()
		river.AddWorker(workers, confirm.NewCheckTransferWorker(watcher, logger))

		riverClient, err = river.NewClient(riverpgxv5.New(pool), &river.Config{
			Queues: map[string]river.QueueConfig{
				river.QueueDefault: {MaxWorkers: 10},
			},
			Workers: workers,
		})
		if err != nil {
			slog.Error("Failed to create River client", "error", err)
			os.Exit(1)
		}
		enqueueConfirm = func(ctx context.Context, args confirm.CheckTransferArgs) error {
			_, err := riverClient.Insert(ctx, args, nil)
			return err
		}
	} else {
		slog.Info("DATABASE_URL not set; using in-memory history store, background finality checks disabled")
		recordStore = store.NewMemory()
	}

	hist, err := history.Load(ctx, recordStore, history.StoreKey)
	if err != nil {
		slog.Error("load transaction history", "error", err)
		os.Exit(1)
	}

	hub := watch.NewHub(watcher, logger)
	defer hub.CancelAll()

	builder := transfer.NewBuilder(client)
	sendSvc := transfer.NewService(client, builder, hist, enqueueConfirm, logger)

	paymentHandler := payment.NewHandler(hub, hist, logger)
	transferHandler := transfer.NewHandler(sendSvc, walletAddr, logger)
	historyHandler := history.NewHandler(hist, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, paymentHandler, transferHandler, historyHandler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(mux)

	if riverClient != nil {
		riverCtx, stopRiver := context.WithCancel(ctx)
		defer stopRiver()
		go func() {
			if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
				slog.Error("River client stopped", "error", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := "0.0.0.0:" + port

	slog.Info("Starting HTTP server", "addr", serverAddr, "wallet", walletAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
