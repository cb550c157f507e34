package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/talkincode/productapi/config"
	"github.com/talkincode/productapi/internal/events"
	"github.com/talkincode/productapi/internal/repository"
)

// RepositoryProvider provides product storage access
type RepositoryProvider interface {
	ProductRepo() repository.ProductRepository
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// PublisherProvider provides the product event publisher
type PublisherProvider interface {
	Publisher() events.Publisher
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	RepositoryProvider
	ConfigProvider
	PublisherProvider
	SchedulerProvider

	// Ping checks that the storage backend is reachable
	Ping(ctx context.Context) error
}
