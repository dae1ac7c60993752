// Command identity runs the identity service: account creation, login,
// profile maintenance, user-events publishing, and the GetUser gRPC
// fallback the chat service calls on a replica miss.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	_ "go.uber.org/automaxprocs"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/eventbus"
	"github.com/chatgrid/chatgrid/internal/identityconfig"
	"github.com/chatgrid/chatgrid/internal/logging"
	"github.com/chatgrid/chatgrid/internal/metrics"
	"github.com/chatgrid/chatgrid/internal/service"
	"github.com/chatgrid/chatgrid/internal/store/postgres"
	chatgrpc "github.com/chatgrid/chatgrid/internal/transport/grpc"
	chathttp "github.com/chatgrid/chatgrid/internal/transport/http"
)

func main() {
	cfg, err := identityconfig.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New("identity", cfg.Logging.Level, cfg.Logging.Format)
	logger.Info().Msg("starting identity service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer pool.Close()

	producer, err := eventbus.NewProducer(eventbus.ProducerConfig{
		Brokers: splitCSV(cfg.Kafka.Brokers),
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("creating kafka producer")
	}
	defer producer.Close()

	userStore := postgres.NewUserStore(pool)
	userPublisher := eventbus.NewUserEventPublisher(producer, cfg.Kafka.UserEventsTopic)
	hasher := credential.NewPasswordHasher()
	jwt := credential.NewJWTHandler(cfg.JWT.Secret)

	users := service.NewUserService(userStore, userPublisher, hasher, jwt, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	go serveMetrics(cfg.Metrics.Addr, logger)
	go serveGRPC(cfg.GRPC.Addr, users, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	chathttp.NewIdentityRouter(users, jwt).Mount(r)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("identity http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("identity http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down identity service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func serveGRPC(addr string, users *service.UserService, logger zerolog.Logger) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", addr).Msg("grpc listener failed")
	}

	s := grpc.NewServer()
	chatgrpc.RegisterIdentityServer(s, chatgrpc.NewIdentityServer(users))

	logger.Info().Str("addr", addr).Msg("identity grpc server listening")
	if err := s.Serve(lis); err != nil {
		logger.Fatal().Err(err).Msg("grpc server failed")
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info().Str("addr", addr).Msg("identity metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
