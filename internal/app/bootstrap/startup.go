// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/cinnalovers/secgruposet/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Read:  appCfg.TimeoutRead,
		Write: appCfg.TimeoutWrite,
		Batch: appCfg.TimeoutBatch,
	})
	cur := timeouts.Current()
	logger.Info("backend timeouts",
		zap.Duration("ping", cur.Ping),
		zap.Duration("read", cur.Read),
		zap.Duration("write", cur.Write),
		zap.Duration("batch", cur.Batch))
	return nil
}
