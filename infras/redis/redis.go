package redis

import (
	"context"
	"net"
	"roomsense/config"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 5 * time.Second

// New connects to the primary Redis node backing the read cache and the rate
// limiter. The process exits when the node cannot be reached.
func New(cfg *config.Config) *goRedis.Client {
	primary := cfg.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", client.Options().Addr).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", primary.DB).
		Str("addr", client.Options().Addr).
		Msg("Connected to Redis")

	return client
}
