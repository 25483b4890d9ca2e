package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/store"
	"storefront/internal/upload"
	"storefront/internal/web"
)

// app — собранный сервер и то, что нужно закрыть при остановке
type app struct {
	router *gin.Engine
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func build(ctx context.Context, cfg config.Config, db *gorm.DB, log *slog.Logger) (*app, error) {
	a := &app{}
	products := store.NewProducts(db)

	cartStore, rdb, err := buildCartStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.redis = rdb

	disk, uploadRoot, err := buildDisk(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if uploadRoot != "" {
		log.Info("product images on local disk", "root", uploadRoot, "url", cfg.UploadURL)
	} else {
		log.Info("product images on s3", "bucket", cfg.S3Bucket)
	}

	secret, fallback := cfg.Secret()
	if fallback {
		log.Warn("SESSION_SECRET is empty, using the development fallback")
	}

	r, err := web.NewRouter(web.Deps{
		DB:            db,
		Products:      products,
		Users:         store.NewUsers(db),
		Cart:          cart.NewService(cartStore, products, log),
		Uploads:       upload.New(disk, cfg.UploadMaxBytes),
		Metrics:       metrics.New(),
		Log:           log,
		SessionSecret: secret,
		SecureCookies: cfg.IsProduction(),
		UploadRoot:    uploadRoot,
		UploadURL:     cfg.UploadURL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.router = r
	return a, nil
}

func buildCartStore(ctx context.Context, cfg config.Config) (cart.Store, *redis.Client, error) {
	switch cfg.CartStore {
	case "memory":
		return cart.NewMemoryStore(cfg.CartTTL), nil, nil
	case "redis":
		rdb, err := cart.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return cart.NewRedisStore(rdb, cfg.CartTTL), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unsupported CART_STORE %q (memory, redis)", cfg.CartStore)
	}
}

// buildDisk возвращает диск и каталог для раздачи статикой (пусто для s3)
func buildDisk(ctx context.Context, cfg config.Config) (upload.Disk, string, error) {
	switch cfg.StorageDisk {
	case "local":
		d := upload.NewLocalDisk(cfg.UploadDir, cfg.UploadURL)
		return d, d.Root(), nil
	case "s3":
		d, err := upload.NewS3Disk(ctx, upload.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Prefix:   "productos",
			BaseURL:  cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return d, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported STORAGE_DISK %q (local, s3)", cfg.StorageDisk)
	}
}
