// Command chat runs the chat service: channel lifecycle, message send and
// history, the live websocket fan-out, and the consumers that keep the
// local user replica warm.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "go.uber.org/automaxprocs"

	"github.com/chatgrid/chatgrid/internal/chatconfig"
	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/eventbus"
	"github.com/chatgrid/chatgrid/internal/events"
	"github.com/chatgrid/chatgrid/internal/logging"
	"github.com/chatgrid/chatgrid/internal/metrics"
	"github.com/chatgrid/chatgrid/internal/registry"
	"github.com/chatgrid/chatgrid/internal/service"
	"github.com/chatgrid/chatgrid/internal/session"
	"github.com/chatgrid/chatgrid/internal/store/cassandra"
	"github.com/chatgrid/chatgrid/internal/store/postgres"
	chatgrpc "github.com/chatgrid/chatgrid/internal/transport/grpc"
	chathttp "github.com/chatgrid/chatgrid/internal/transport/http"
	chatws "github.com/chatgrid/chatgrid/internal/transport/ws"
)

func main() {
	cfg, err := chatconfig.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New("chat", cfg.Logging.Level, cfg.Logging.Format)
	logger.Info().Msg("starting chat service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgPool, err := postgres.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer pgPool.Close()

	cassSession, err := cassandra.NewSession(splitCSV(cfg.Cassandra.Hosts), cfg.Cassandra.Keyspace)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to cassandra")
	}
	defer cassSession.Close()

	brokers := splitCSV(cfg.Kafka.Brokers)

	producer, err := eventbus.NewProducer(eventbus.ProducerConfig{Brokers: brokers, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("creating kafka producer")
	}
	defer producer.Close()

	shardRouter, err := events.NewShardRouter(cfg.Kafka.ShardCount, cfg.Kafka.ChatTopicPrefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("building shard router")
	}

	channelStore := postgres.NewChannelStore(pgPool)
	messageStore := cassandra.NewMessageStore(cassSession)
	replicaStore := postgres.NewReplicaStore(pgPool)

	chatPublisher := eventbus.NewChatEventPublisher(producer, shardRouter)

	idClient, err := chatgrpc.DialIdentityClient(cfg.IdentityGRPC.Addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("dialing identity service")
	}
	defer idClient.Close()

	jwt := credential.NewJWTHandler(cfg.JWT.Secret)
	ids := message.NewIDGenerator()

	channels := service.NewChannelService(channelStore, chatPublisher)
	messages := service.NewMessageService(channelStore, messageStore, chatPublisher, ids, logger)
	userLookup := service.NewUserLookupService(replicaStore, idClient)

	conns := registry.New()

	fanout, err := eventbus.NewFanoutConsumer(eventbus.FanoutConsumerConfig{
		Brokers: brokers,
		// A group of its own per instance, so every instance is assigned
		// every partition of every shard rather than a share of them.
		ConsumerGroup: cfg.Kafka.FanoutGroup + "-" + uuid.NewString(),
		Topics:        shardRouter.AllShards(),
		Logger:        logger,
		Broadcast: func(channelID channel.ID, frame []byte) {
			result := conns.Broadcast(channelID, frame)
			metrics.BroadcastsSentTotal.WithLabelValues(channelID.String()).Add(float64(result.Sent))
			if result.Failed > 0 {
				metrics.BroadcastsDroppedTotal.Add(float64(result.Failed))
			}
		},
		ConnCount:  conns.ConnectionsInChannel,
		BuildFrame: session.BuildNewMessageFrame,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("creating fanout consumer")
	}
	go fanout.Run(ctx)
	defer fanout.Close()

	userReplicaConsumer, err := eventbus.NewUserReplicaConsumer(eventbus.UserReplicaConsumerConfig{
		Brokers:       brokers,
		ConsumerGroup: cfg.Kafka.UserReplicaGroup,
		Topic:         cfg.Kafka.UserEventsTopic,
		Logger:        logger,
		ReplicaStore:  replicaStore,
		RemoveUserFromChannels: func(ctx context.Context, id user.ID) error {
			return channelStore.RemoveUserEverywhere(ctx, id)
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("creating user replica consumer")
	}
	go userReplicaConsumer.Run(ctx)
	defer userReplicaConsumer.Close()

	go serveMetrics(cfg.Metrics.Addr, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	chathttp.NewChatRouter(channels, messages, userLookup, jwt).Mount(r)
	chatws.NewHandler(jwt, conns, messages, logger).Mount(r)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("chat http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("chat http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down chat service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	logger.Info().Str("addr", addr).Msg("chat metrics server listening")
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
