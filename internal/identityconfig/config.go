// Package identityconfig loads the identity service's configuration from
// the environment, hierarchical-key style (KAFKA__BROKERS,
// DATABASE__URL), matching spec §6.
package identityconfig

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server struct {
		Addr string `envconfig:"SERVER__ADDR" default:":8080"`
	}

	Database struct {
		URL          string `envconfig:"DATABASE__URL" required:"true"`
		MaxConns     int32  `envconfig:"DATABASE__MAX_CONNS" default:"5"`
	}

	Kafka struct {
		Brokers        string `envconfig:"KAFKA__BROKERS" default:"localhost:9092"`
		UserEventsTopic string `envconfig:"KAFKA__USER_EVENTS_TOPIC" default:"user-events"`
	}

	JWT struct {
		Secret    string `envconfig:"JWT__SECRET" required:"true"`
		TTLHours  int    `envconfig:"JWT__TTL_HOURS" default:"24"`
	}

	GRPC struct {
		Addr string `envconfig:"GRPC__ADDR" default:":9090"`
	}

	Metrics struct {
		Addr string `envconfig:"METRICS__ADDR" default:":9101"`
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
		return nil, fmt.Errorf("identityconfig: %w", err)
	}
	return &cfg, nil
}
