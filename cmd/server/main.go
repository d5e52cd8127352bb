package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	beego "github.com/beego/beego/v2/server/web"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"lottery-server/common"
	"lottery-server/common/logger"
	"lottery-server/internal/config"
	infmysql "lottery-server/internal/infra/mysql"
	infrds "lottery-server/internal/infra/redis"
	"lottery-server/internal/worker"
	_ "lottery-server/routers"
)

func main() {
	logger.InitLogger()
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatalf("load config failed", zap.Error(err))
	}
	config.SetCurrent(cfg)

	// Nacos 配置热更新（本地文件模式下 StartWatch 为空操作）
	if err := config.StartWatch(ctx, func(oldCfg, newCfg *config.Config) {
		logger.Info("config reloaded",
			zap.Int("max_draw_quantity", newCfg.Lottery.MaxDrawQuantity),
			zap.Bool("ratelimit_enabled", newCfg.RateLimit.Enabled))
	}); err != nil {
		logger.Warn("config watch not started", zap.Error(err))
	}

	db := common.InitDB(cfg.Database.DSN, cfg.Database.MaxIdleConns, cfg.Database.MaxOpenConns)
	infmysql.UseDB(db.DB)

	infrds.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := infrds.Ping(ctx, 2*time.Second); err != nil {
		// Redis 不可用时限流与幂等快路径会降级，但服务仍可启动
		logger.Warn("redis ping failed", zap.Error(err))
	}

	var wg sync.WaitGroup
	worker.StartOutboxDispatcher(ctx, &wg)
	worker.StartInboxConsumer(ctx, &wg)
	worker.StartCouponExpirer(ctx, &wg)

	// 优雅退出：等后台任务收尾后再退出进程
	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received, draining workers")
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(15 * time.Second):
			logger.Warn("worker drain timeout")
		}
		logger.Sync()
		os.Exit(0)
	}()

	beego.BConfig.CopyRequestBody = true
	logger.Info("lottery server starting", zap.Int("port", cfg.Server.Port))
	beego.Run(fmt.Sprintf(":%d", cfg.Server.Port))
}
