package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/affectlab/voice-emotion-recognition/client"
	"github.com/affectlab/voice-emotion-recognition/config"
	"github.com/affectlab/voice-emotion-recognition/handler"
	"github.com/affectlab/voice-emotion-recognition/service"
)

func main() {
	// Initialize configuration
	settings, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Load the pretrained emotion model. A failure here is not fatal: the
	// service still starts and serves health checks, predictions answer 503
	// until the process is restarted with a working model.
	var classifier service.FileClassifier
	wav2vec, err := client.NewWav2VecClient(client.Options{
		Source:      settings.ModelSource,
		CacheDir:    settings.ModelCacheDir,
		HubBaseURL:  settings.ModelHubURL,
		LibraryPath: settings.OrtLibraryPath,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to load model", "error", err)
	} else {
		classifier = wav2vec
		defer wav2vec.Close()
	}

	// Initialize service and handler layers
	predictionService := service.NewPredictionService(classifier, logger)
	predictionHandler := handler.NewPredictionHandler(predictionService, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestID(), handler.RequestLogger(logger), handler.Metrics())
	router.MaxMultipartMemory = settings.MaxFileSize

	router.GET("/", predictionHandler.Root)
	router.GET("/health", predictionHandler.Health)
	router.POST("/predict", predictionHandler.Predict)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", settings.Host, settings.Port),
		Handler:      router,
		ReadTimeout:  settings.RequestTimeout(),
		WriteTimeout: settings.RequestTimeout(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting voice emotion recognition service",
			"addr", srv.Addr,
			"model_loaded", predictionService.ModelLoaded())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.RequestTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
