// Package chatconfig loads the chat service's configuration from the
// environment, hierarchical-key style (KAFKA__BROKERS, DATABASE__URL).
package chatconfig

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server struct {
		Addr string `envconfig:"SERVER__ADDR" default:":8081"`
	}

	Database struct {
		URL      string `envconfig:"DATABASE__URL" required:"true"`
		MaxConns int32  `envconfig:"DATABASE__MAX_CONNS" default:"5"`
	}

	Cassandra struct {
		Hosts    string `envconfig:"CASSANDRA__HOSTS" default:"127.0.0.1"`
		Keyspace string `envconfig:"CASSANDRA__KEYSPACE" default:"chatgrid"`
	}

	Kafka struct {
		Brokers          string `envconfig:"KAFKA__BROKERS" default:"localhost:9092"`
		ChatTopicPrefix  string `envconfig:"KAFKA__CHAT_TOPIC_PREFIX" default:"chat.messages"`
		ShardCount       uint32 `envconfig:"KAFKA__SHARD_COUNT" default:"16"`
		FanoutGroup      string `envconfig:"KAFKA__FANOUT_CONSUMER_GROUP" default:"chat-fanout"`
		UserEventsTopic  string `envconfig:"KAFKA__USER_EVENTS_TOPIC" default:"user-events"`
		UserReplicaGroup string `envconfig:"KAFKA__USER_REPLICA_CONSUMER_GROUP" default:"chat-user-replica"`
	}

	JWT struct {
		Secret string `envconfig:"JWT__SECRET" required:"true"`
	}

	IdentityGRPC struct {
		Addr string `envconfig:"IDENTITY_GRPC__ADDR" default:"localhost:9090"`
	}

	Metrics struct {
		Addr string `envconfig:"METRICS__ADDR" default:":9100"`
	}

	Logging struct {
		Level  string `envconfig:"LOGGING__LEVEL" default:"info"`
		Format string `envconfig:"LOGGING__FORMAT" default:"json"`
	}
}

// Load reads a .env file (if present, error ignored) then populates Config
// from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("chatconfig: %w", err)
	}
	return &cfg, nil
}
