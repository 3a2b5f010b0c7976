package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/boldserve/adminconsole/config"
	"github.com/boldserve/adminconsole/internal/session"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// SessionProvider provides the shared session context
type SessionProvider interface {
	Session() *session.Manager
}

// AppContext combines all provider interfaces for full application context
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	SessionProvider

	MigrateDB(track bool) error
	Release()
}
