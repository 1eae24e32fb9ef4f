package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"beatempire/internal/config"
	"beatempire/internal/empire"
	"beatempire/internal/eventlog"
	"beatempire/internal/quota"
	"beatempire/internal/server"
	"beatempire/internal/store"
	"beatempire/internal/util"
	"beatempire/pkg/ai"
	"beatempire/pkg/producer"
	"beatempire/pkg/publisher"
	"beatempire/pkg/storage"
)

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config.yaml")
	statusOnly := flag.Bool("status", false, "print empire status and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *statusOnly {
		printStatus(cfg)
		return
	}

	logger := util.InitLogger(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}

	st, err := store.NewGormStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	events, err := eventlog.Open(cfg.EventLogPath)
	if err != nil {
		log.Fatalf("failed to open event log: %v", err)
	}
	defer events.Close()

	artifacts, err := storage.NewFileStore(filepath.Join(cfg.DataDir, "beats"))
	if err != nil {
		log.Fatalf("failed to init artifact store: %v", err)
	}

	var beatProducer producer.Producer
	if cfg.SunoAPIKey != "" {
		beatProducer, err = producer.NewSunoProducer(cfg.SunoAPIKey, cfg.SunoBaseURL)
		if err != nil {
			log.Fatalf("failed to init suno producer: %v", err)
		}
		slog.Info("using suno producer")
	} else {
		beatProducer = &producer.Mock{Dir: filepath.Join(cfg.DataDir, "mock")}
		slog.Warn("no suno api key, using mock producer")
	}

	var beatPublisher publisher.Publisher
	if cfg.UploaderURL != "" {
		beatPublisher, err = publisher.NewHTTPPublisher(cfg.UploaderURL)
		if err != nil {
			log.Fatalf("failed to init uploader client: %v", err)
		}
		slog.Info("using uploader service", "url", cfg.UploaderURL)
	} else {
		beatPublisher = &publisher.Mock{}
		slog.Warn("no uploader url, using mock publisher")
	}

	var copywriter ai.Copywriter = ai.StaticCopywriter{}
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("failed to init gemini client: %v", err)
		}
		copywriter = ai.NewGeminiCopywriter(client, "")
		slog.Info("using gemini copywriter")
	}

	var globalQuota, channelQuota quota.Quota
	if cfg.RedisAddr != "" {
		gq, err := quota.NewRedis(cfg.RedisAddr, cfg.RedisPassword, "beatempire:quota:global", settings.Safety.MaxDailyUploads)
		if err != nil {
			log.Fatalf("failed to init global quota: %v", err)
		}
		cq, err := quota.NewRedis(cfg.RedisAddr, cfg.RedisPassword, "beatempire:quota:channel", settings.Upload.DailyLimitPerChannel)
		if err != nil {
			log.Fatalf("failed to init channel quota: %v", err)
		}
		globalQuota, channelQuota = gq, cq
		slog.Info("using redis quotas", "addr", cfg.RedisAddr)
	} else {
		globalQuota = quota.NewMemory(settings.Safety.MaxDailyUploads)
		channelQuota = quota.NewMemory(settings.Upload.DailyLimitPerChannel)
	}

	var archive storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		archive, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init backup archive: %v", err)
		}
		slog.Info("mirroring backups to object storage", "bucket", cfg.MinioBucket)
	}

	if err := empire.SeedChannels(st, cfg.ChannelSeedPath, time.Now()); err != nil {
		log.Fatalf("failed to seed channels: %v", err)
	}

	emp, err := empire.New(empire.Config{
		Store:        st,
		Producer:     beatProducer,
		Publisher:    beatPublisher,
		Copywriter:   copywriter,
		Artifacts:    artifacts,
		Archive:      archive,
		Events:       events,
		SettingsPath: cfg.SettingsPath,
		Settings:     settings,
		GlobalQuota:  globalQuota,
		ChannelQuota: channelQuota,
		TickInterval: time.Duration(cfg.TickSeconds) * time.Second,
		Workers:      int64(cfg.Workers),
		DBPath:       cfg.DatabasePath,
		BackupDir:    cfg.BackupDir,
	})
	if err != nil {
		log.Fatalf("failed to init empire: %v", err)
	}

	if err := emp.Start(); err != nil {
		log.Fatalf("failed to start empire: %v", err)
	}

	httpServer := server.New(server.Config{Empire: emp, Store: st})
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		slog.Info("status server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	if err := emp.Stop(); err != nil {
		logger.Error("empire stop", "err", err)
	}
}

// printStatus queries the running instance's status API.
func printStatus(cfg config.FileConfig) {
	url := "http://localhost:" + cfg.Port + "/status"
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "empire not reachable at %s: %v\n", url, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var snap empire.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		fmt.Fprintf(os.Stderr, "bad status response: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(snap, "", "  ")
	fmt.Println(string(out))
}
