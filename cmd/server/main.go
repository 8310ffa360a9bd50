package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/sns-service/config"
	_ "github.com/d60-Lab/sns-service/docs"
	"github.com/d60-Lab/sns-service/internal/api"
	"github.com/d60-Lab/sns-service/internal/api/handler"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/database"
	"github.com/d60-Lab/sns-service/pkg/jwtauth"
	"github.com/d60-Lab/sns-service/pkg/logger"
	"github.com/d60-Lab/sns-service/pkg/tracing"
)

// @title SNS Service API
// @version 1.0
// @description 社交关系、访问控制与资料图片服务
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	rdb, err := database.InitRedis(cfg)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}

	// repositories
	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	imageRepo := repository.NewProfileImageRepository(db)
	postRepo := repository.NewPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	feedRepo := repository.NewSingleFeedRepository(db)
	if cfg.Feed.Sharded {
		shardDBs, err := database.InitFeedShards(cfg)
		if err != nil {
			logger.Fatal("feed shards init failed", zap.Error(err))
		}
		sharded, err := repository.NewShardedFeedRepository(shardDBs)
		if err != nil {
			logger.Fatal("sharded feed init failed", zap.Error(err))
		}
		if err := sharded.InitSchema(); err != nil {
			logger.Fatal("feed shards migrate failed", zap.Error(err))
		}
		feedRepo = sharded
	}

	// services
	tokens := jwtauth.NewProvider(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	relation := service.NewBlockFollowRelation(followRepo, blockRepo, rdb)
	accessPolicy := service.NewAccessPolicy(followRepo, relation)
	followerCache := service.NewFollowerListCache(followRepo, memberRepo, rdb, 10*time.Minute)
	notifier := service.NewNotifier(notificationRepo, 0)
	stopNotifier := notifier.Start(4)

	authSvc := service.NewAuthService(memberRepo, tokens, rdb)
	memberSvc := service.NewMemberService(memberRepo, service.NewLogMailer(), rdb)
	followSvc := service.NewFollowService(followRepo, memberRepo, relation, accessPolicy, followerCache, rdb, notifier)
	blockSvc := service.NewBlockService(db, blockRepo, memberRepo, relation)
	imageSvc := service.NewProfileImageService(db, imageRepo, memberRepo, accessPolicy, rdb)
	memberQuerySvc := service.NewMemberQueryService(memberRepo, followSvc, imageSvc, accessPolicy)
	postSvc := service.NewPostService(db, postRepo, feedRepo, memberRepo, accessPolicy)
	notificationSvc := service.NewNotificationService(notificationRepo)

	fanout := service.NewFanoutWorker(db, followRepo, feedRepo,
		cfg.Fanout.Workers, cfg.Fanout.BatchSize, 0, cfg.Fanout.Interval)
	stopFanout := fanout.Start()

	h := handler.New(authSvc, memberSvc, memberQuerySvc, followSvc, blockSvc, imageSvc, postSvc, notificationSvc)
	router := api.NewRouter(cfg, h, tokens, authSvc)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	_ = stopFanout(shutdownCtx)
	_ = stopNotifier(shutdownCtx)
	_ = shutdownTracing(shutdownCtx)
	_ = rdb.Close()
}
