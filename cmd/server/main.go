package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/pawnvalue-backend/internal/adapter/grpc"
	"github.com/simaogato/pawnvalue-backend/internal/adapter/reference"
	"github.com/simaogato/pawnvalue-backend/internal/adapter/repository/memory"
	"github.com/simaogato/pawnvalue-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
	"github.com/simaogato/pawnvalue-backend/internal/usecase/policy"
	"github.com/simaogato/pawnvalue-backend/internal/usecase/seeder"
	"github.com/simaogato/pawnvalue-backend/internal/usecase/valuation"
	"github.com/simaogato/pawnvalue-backend/pkg/config"
	"github.com/simaogato/pawnvalue-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg)
	ctx := context.Background()

	// 1. Setup Storage
	policyRepo, catalogRepo, closeStorage := setupStorage(ctx, cfg, log)
	defer closeStorage()

	// Seed a default policy and catalog on first start
	systemSeeder := seeder.NewSystemSeeder(policyRepo, catalogRepo)
	if err := systemSeeder.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default policies")
	}
	log.Info().Msg("Default policies seeded successfully")

	// 2. Initialize Reference Connectors
	diamondConn, err := reference.DialDiamond(cfg.Reference.DiamondAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Reference.DiamondAddr).Msg("Failed to create diamond pricing client")
	}
	defer diamondConn.Close()

	translator := reference.NewTranslator(log.With().Str("component", "reference").Logger())
	diamonds := reference.WithDiamondTranslation(reference.NewDiamondClient(diamondConn, cfg.Reference.Timeout), translator)
	gold := reference.WithGoldTranslation(
		reference.NewGoldClient(cfg.Reference.GoldURL, cfg.Reference.Timeout, cfg.Reference.RateLimit),
		translator,
	)

	// 3. Initialize Services (Use Cases)
	rounding := domain.NewRoundingConfig(domain.RoundingPolicy{
		Mode:  domain.ParseRoundingMode(cfg.RoundingMode),
		Scale: cfg.RoundingScale,
	})
	valuationService := valuation.NewValuationService(policyRepo, catalogRepo, diamonds, gold, rounding)
	policyService := policy.NewPolicyService(policyRepo, catalogRepo, rounding)

	// 4. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)

	grpcadapter.RegisterValuationServiceServer(grpcServer, grpcadapter.NewServer(valuationService, policyService))
	reflection.Register(grpcServer)

	addr := ":" + cfg.Port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("Failed to listen")
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", addr).
			Str("storage", cfg.Storage).
			Str("rounding_mode", string(rounding.Current().Mode)).
			Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, log)
}

// setupStorage builds the repositories for the configured backend
func setupStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.PunishmentPolicyRepository, domain.ConditionCatalogRepository, func()) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("Using in-memory storage; policies are lost on restart")
		return memory.NewPunishmentPolicyRepository(nil), memory.NewConditionCatalogRepository(nil), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.NewDB(connectCtx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := postgres.EnsureSchema(connectCtx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}

	return postgres.NewPunishmentPolicyRepository(db, nil), postgres.NewConditionCatalogRepository(db, nil), closeDB
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
