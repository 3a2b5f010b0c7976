package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/boldserve/adminconsole/config"
	"github.com/boldserve/adminconsole/internal/adminweb"
	"github.com/boldserve/adminconsole/internal/apiclient"
	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/internal/gate"
	"github.com/boldserve/adminconsole/internal/oprlog"
	"github.com/boldserve/adminconsole/internal/resource"
	"github.com/boldserve/adminconsole/internal/session"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	store     session.TokenStore
	sess      *session.Manager
	pool      *ants.Pool
	recorder  oprlog.Recorder
	resources *resource.Client
	gate      *gate.Gate
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ SessionProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

// DB is nil when no operator log database is configured.
func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Session() *session.Manager {
	return a.sess
}

func (a *Application) Gate() *gate.Gate {
	return a.gate
}

func (a *Application) Resources() *resource.Client {
	return a.resources
}

func (a *Application) Recorder() oprlog.Recorder {
	return a.recorder
}

// Init prepares every long-lived component. Only a missing workdir, an
// unreadable session store or an invalid pool size are fatal; the operator
// log falls back to the logger when its database is unavailable.
func (a *Application) Init() error {
	cfg := a.appConfig
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	if err := cfg.InitDirs(); err != nil {
		return err
	}
	if err := a.initLogger(); err != nil {
		return err
	}

	if a.store == nil {
		bolt, err := session.OpenBoltStore(cfg.GetSessionDbFile())
		if err != nil {
			return errors.Wrap(err, "open session store")
		}
		a.store = bolt
	}
	a.sess = session.NewManager(a.store)

	a.pool, err = ants.NewPool(cfg.Web.Workers, ants.WithNonblocking(true), ants.WithPanicHandler(func(p interface{}) {
		zap.S().Errorf("screen load panic: %v", p)
	}))
	if err != nil {
		return errors.Wrap(err, "create load pool")
	}

	a.initRecorder()

	api := apiclient.NewFromConfig(cfg, a.sess)
	a.resources = resource.New(api, a.sess, a.authenticator(api), cfg.Backend.OrdersPath)
	a.gate, err = gate.New(a.sess, a.resources)
	if err != nil {
		return errors.Wrap(err, "create auth gate")
	}

	zap.L().Info("admin console initialised",
		zap.String("mode", config.BuildMode),
		zap.String("backend", cfg.BaseURL()),
		zap.String("auth", cfg.Auth.Mode),
		zap.Bool("session_restored", a.gate.Authenticated()))

	a.initJob()
	return nil
}

func (a *Application) initLogger() error {
	cfg := a.appConfig
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return errors.Wrap(err, "build logger")
		}
	}
	zap.ReplaceGlobals(logger)
	return nil
}

func (a *Application) authenticator(api *apiclient.Client) resource.Authenticator {
	auth := a.appConfig.Auth
	if auth.Mode == "static" {
		zap.L().Warn("static admin credentials in use; this is a placeholder and not a real authentication mechanism",
			zap.String("admin_id", auth.AdminID))
		return resource.NewStaticAuthenticator(auth.AdminID, auth.AdminPassword, auth.TokenSecret)
	}
	return resource.NewBackendAuthenticator(api)
}

func (a *Application) initRecorder() {
	a.recorder = oprlog.NewLogRecorder(zap.L())
	if a.gormDB == nil && a.appConfig.Database.Dsn != "" {
		db, err := getDatabase(a.appConfig.Database)
		if err != nil {
			zap.S().Errorf("operator log database unavailable, logging actions only: %v", err)
			return
		}
		a.gormDB = db
	}
	if a.gormDB == nil {
		return
	}
	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
		return
	}
	a.recorder = oprlog.NewGormRecorder(a.gormDB)
	zap.S().Infof("Database connection successful, type: %s", a.appConfig.Database.Type)
}

func (a *Application) MigrateDB(track bool) error {
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

// Console builds the screens; root bounds every screen load.
func (a *Application) Console(root context.Context) (*adminweb.Console, error) {
	return adminweb.New(root, a.resources, a.sess, a.gate, adminweb.Options{
		Secret:       a.appConfig.Web.Secret,
		AwaitTimeout: a.appConfig.BackendTimeout() + time.Second,
		Runner:       a.pool,
		Recorder:     a.recorder,
	})
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			zap.S().Errorf("session store close: %v", err)
		}
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
