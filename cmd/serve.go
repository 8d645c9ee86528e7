// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/canonical/tenant-notes/internal/authorization"
	"github.com/canonical/tenant-notes/internal/config"
	"github.com/canonical/tenant-notes/internal/db"
	"github.com/canonical/tenant-notes/internal/logging"
	"github.com/canonical/tenant-notes/internal/monitoring"
	"github.com/canonical/tenant-notes/internal/monitoring/prometheus"
	"github.com/canonical/tenant-notes/internal/storage"
	"github.com/canonical/tenant-notes/internal/tracing"
	"github.com/canonical/tenant-notes/internal/types"
	"github.com/canonical/tenant-notes/pkg/authentication"
	"github.com/canonical/tenant-notes/pkg/credentials"
	"github.com/canonical/tenant-notes/pkg/notes"
	"github.com/canonical/tenant-notes/pkg/password"
	"github.com/canonical/tenant-notes/pkg/ratelimit"
	"github.com/canonical/tenant-notes/pkg/scoped"
	"github.com/canonical/tenant-notes/pkg/session"
	"github.com/canonical/tenant-notes/pkg/status"
	"github.com/canonical/tenant-notes/pkg/tenant"
	"github.com/canonical/tenant-notes/pkg/web"
)

// gRPC health probes stay reachable without a credential.
var publicGRPCMethods = []string{
	healthpb.Health_Check_FullMethodName,
	healthpb.Health_Watch_FullMethodName,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		inMemory, _ := cmd.Flags().GetBool("in-memory")
		seedPassword, _ := cmd.Flags().GetString("seed-password")

		if err := serve(inMemory, seedPassword); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().Bool("in-memory", false, "Use the in-memory backend seeded with demo tenants instead of PostgreSQL")
	serveCmd.Flags().String("seed-password", "password", "Password of the demo users created with --in-memory")

	rootCmd.AddCommand(serveCmd)
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func policies(specs *config.EnvSpec) map[ratelimit.Class]ratelimit.Policy {
	return map[ratelimit.Class]ratelimit.Policy{
		ratelimit.ClassDefault: {Max: int64(specs.RateLimitDefaultMax), Window: specs.RateLimitDefaultWin},
		ratelimit.ClassAuth:    {Max: int64(specs.RateLimitAuthMax), Window: specs.RateLimitAuthWin},
		ratelimit.ClassCRUD:    {Max: int64(specs.RateLimitCRUDMax), Window: specs.RateLimitCRUDWin},
		ratelimit.ClassUpgrade: {Max: int64(specs.RateLimitUpgradeMax), Window: specs.RateLimitUpgradeWin},
	}
}

type backend struct {
	storage interface {
		notes.TenantStorageInterface
		tenant.StorageInterface
		session.StorageInterface
	}
	notes storage.Repository[*types.Note]
	users storage.Repository[*types.User]

	dbClient db.DBClientInterface
	close    func()
}

func newBackend(specs *config.EnvSpec, inMemory bool, seedPassword string, passwords *password.Verifier, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*backend, error) {
	if inMemory {
		s := storage.NewMemoryStorage()
		if err := seed(context.Background(), s, passwords, seedPassword, logger); err != nil {
			return nil, fmt.Errorf("failed to seed in-memory storage: %w", err)
		}
		return &backend{storage: s, notes: s.Notes(), users: s.Users(), close: func() {}}, nil
	}

	dbClient, err := db.NewDBClient(
		db.Config{
			DSN:             specs.DSN,
			MaxConns:        specs.DBMaxConns,
			MinConns:        specs.DBMinConns,
			MaxConnLifetime: specs.DBMaxConnLifetime,
			MaxConnIdleTime: specs.DBMaxConnIdleTime,
			TracingEnabled:  specs.TracingEnabled,
		},
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %v", err)
	}

	return &backend{
		storage:  storage.NewStorage(dbClient, tracer, monitor, logger),
		notes:    storage.NewPGRepository(dbClient, storage.NoteSchema, tracer, monitor, logger),
		users:    storage.NewPGRepository(dbClient, storage.UserSchema, tracer, monitor, logger),
		dbClient: dbClient,
		close:    dbClient.Close,
	}, nil
}

func serve(inMemory bool, seedPassword string) error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %s", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("tenant-notes", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	creds, err := credentials.NewService(
		specs.JWTSecret,
		tracer,
		monitor,
		logger,
		credentials.WithIssuer(specs.JWTIssuer),
		credentials.WithLifetime(specs.TokenLifetime),
	)
	if err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	passwords := password.NewVerifier(specs.BcryptCost)

	b, err := newBackend(specs, inMemory, seedPassword, passwords, tracer, monitor, logger)
	if err != nil {
		return err
	}
	defer b.close()

	dependencies := map[string]status.PingerInterface{}
	if b.dbClient != nil {
		dependencies["postgres"] = b.dbClient
	}

	var store ratelimit.Store
	switch specs.RateLimitStore {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: specs.RedisAddr, Password: specs.RedisPassword, DB: specs.RedisDB})
		defer client.Close()

		store = ratelimit.NewRedisStore(client, "tenant-notes:ratelimit:", tracer, monitor, logger)
		dependencies["redis"] = redisPinger{client: client}
		logger.Infof("Using redis rate limit store at %s", specs.RedisAddr)
	case "memory":
		store = ratelimit.NewMemoryStore(ratelimit.DefaultSweepEvery)
	default:
		return fmt.Errorf("unknown rate limit store %q", specs.RateLimitStore)
	}

	limiter := ratelimit.NewLimiter(store, policies(specs), tracer, monitor, logger)
	authorizer := authorization.NewAuthorizer(tracer, monitor, logger)
	authenticator := authentication.NewMiddleware(creds, tracer, monitor, logger, publicGRPCMethods...)
	data := scoped.NewFactory(b.notes, b.users, tracer, monitor, logger)

	handlers := web.Handlers{
		Notes: notes.NewHandler(
			notes.NewService(b.storage, authorizer, specs.FreePlanNoteLimit, tracer, monitor, logger),
			data, tracer, monitor, logger,
		),
		Tenants: tenant.NewHandler(
			tenant.NewService(b.storage, authorizer, passwords, tracer, monitor, logger),
			data, tracer, monitor, logger,
		),
		Session: session.NewHandler(
			session.NewService(b.storage, data, passwords, creds, tracer, monitor, logger),
			data, tracer, monitor, logger,
		),
	}

	// Start gRPC server
	lis, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%v", specs.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(authenticator.GRPCInterceptor),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	go func() {
		logger.Infof("Starting gRPC server on port %v", specs.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Errorf("failed to serve gRPC: %v", err)
		}
	}()

	router := web.NewRouter(
		web.Config{AllowedOrigins: specs.CORSAllowedOrigins, MaxBodyBytes: specs.MaxBodyBytes},
		handlers,
		web.Security{Authenticator: authenticator, Authorizer: authorizer, Limiter: limiter},
		dependencies,
		b.dbClient,
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	if err := srv.Shutdown(ctx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	return serverError
}
