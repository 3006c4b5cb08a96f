package service

import (
	"github.com/redis/go-redis/v9"

	"seller-dashboard/internal/config"
	"seller-dashboard/internal/realtime"
	"seller-dashboard/internal/repository"
	"seller-dashboard/internal/service/auth"
	"seller-dashboard/internal/service/notification"
)

type Services struct {
	Auth         auth.Service
	Notification notification.Service
}

func NewServices(repos *repository.Repositories, hub *realtime.Hub, redis *redis.Client, cfg *config.Config) *Services {
	authService := auth.NewService(cfg)
	notificationService := notification.NewService(repos.Notification, hub, redis, notification.Options{
		Scope:         realtime.ParseScope(cfg.FeedScope),
		CountCacheTTL: cfg.CountCacheTTL,
	})

	return &Services{
		Auth:         authService,
		Notification: notificationService,
	}
}
