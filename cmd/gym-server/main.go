// Command gym-server runs the E-Fitness club API.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/efitness/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadConfig()
		if err != nil {
			return err
		}
		lg.Info("Configuration loaded",
			zap.Bool("redis", cfg.Redis.Addr != ""),
			zap.Bool("kafka", len(cfg.Kafka.Brokers) > 0),
		)
		return appkg.Run(ctx, lg, m, cfg)
	})
}
