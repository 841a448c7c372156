package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"qancha/internal/config"
	"qancha/internal/database"
	"qancha/internal/handlers"
	"qancha/internal/logger"
	"qancha/internal/prefs"
	"qancha/internal/seo"
	"qancha/internal/server"
	"qancha/internal/storage"
	"qancha/internal/store"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal(err)
	}
	cfg := config.AppEnv

	zlog, err := logger.Init(logger.Options{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg); err != nil {
		zap.S().Errorf("qancha stopped: %v", err)
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()

	db := client.Database(cfg.DBName)
	zap.S().Infof("MongoDB connected to: %s", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		zap.S().Warnf("product index warning: %v", err)
	}

	renderer, err := seo.NewRenderer(seo.Site{
		Name:         cfg.SiteName,
		URL:          cfg.SiteURL,
		DefaultImage: cfg.DefaultImageURL,
		TwitterSite:  cfg.TwitterSite,
	}, filepath.Join(cfg.SPADistDir, "index.html"))
	if err != nil {
		return err
	}

	router := server.NewRouter(server.Deps{
		Products: store.NewProductStore(db),
		Images:   newImageStorage(cfg),
		Renderer: renderer,
		Prefs:    prefs.NewCookieStore([]byte(cfg.SessionSecret), strings.HasPrefix(cfg.SiteURL, "https://")),

		Admin:     handlers.AdminCredentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTokenTTL,

		PageSize:     cfg.PageSize,
		BulkMaxBytes: cfg.BulkMaxBytes,

		PublicDir: cfg.PublicDir,
		AssetsDir: filepath.Join(cfg.SPADistDir, "assets"),
		UploadDir: uploadDir(cfg),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(":"+cfg.Port, router).Run(ctx)
}

func newImageStorage(cfg config.Config) storage.Storage {
	if cfg.StorageDriver == "supabase" {
		zap.S().Infof("image storage: supabase bucket %s", cfg.SupabaseBucket)
		return storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket, nil)
	}
	zap.S().Infof("image storage: local dir %s", cfg.UploadDir)
	return storage.NewLocal(cfg.UploadDir, "/uploads")
}

func uploadDir(cfg config.Config) string {
	if cfg.StorageDriver == "local" {
		return cfg.UploadDir
	}
	return ""
}
