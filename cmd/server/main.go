package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/treehole/config"
	"github.com/d60-Lab/treehole/internal/api"
	"github.com/d60-Lab/treehole/internal/api/handler"
	"github.com/d60-Lab/treehole/internal/repository"
	"github.com/d60-Lab/treehole/internal/service"
	"github.com/d60-Lab/treehole/internal/verifier"
	"github.com/d60-Lab/treehole/pkg/database"
	"github.com/d60-Lab/treehole/pkg/logger"
)

// @title 树洞匿名板 API
// @version 1.0
// @description 匿名提交、人工审核、游标信息流
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

	if cfg.Observability.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Observability.SentryDSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.Observability.OTLPEndpoint != "" {
		tp, err := initTracer(cfg)
		if err != nil {
			logger.Warn("tracer init failed", zap.Error(err))
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		return
	}
	if err := repository.InitSchema(db); err != nil {
		logger.Error("migrate schema", zap.Error(err))
		return
	}

	cache := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer cache.Close()

	questions := make([]verifier.QuestionPair, len(cfg.Verifier.Questions))
	for i, q := range cfg.Verifier.Questions {
		questions[i] = verifier.QuestionPair{Question: q.Question, Answer: q.Answer}
	}
	gate := verifier.New(cache, questions,
		time.Duration(cfg.Verifier.ChallengeTTLSeconds)*time.Second)

	postRepo := repository.NewPostRepository(db)
	defer postRepo.Close()

	postService := service.NewPostService(postRepo, gate)
	feedService := service.NewFeedService(postRepo)
	modService := service.NewModerationService(db, postRepo)

	h := handler.New(postService, feedService, modService, gate, cfg.Auth)
	router := api.SetupRouter(h, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func initTracer(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(otlptracehttp.WithEndpoint(cfg.Observability.OTLPEndpoint)))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, nil
}
