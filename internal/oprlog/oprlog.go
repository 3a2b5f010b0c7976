// Package oprlog keeps an audit trail of operator actions.
package oprlog

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/boldserve/adminconsole/internal/domain"
	"github.com/boldserve/adminconsole/pkg/common"
)

const (
	ActionLogin         = "login"
	ActionLoginFailed   = "login_failed"
	ActionLogout        = "logout"
	ActionCreateService = "create_service"
	ActionDeleteProduct = "delete_product"
)

// Retention is how long entries are kept before the daily purge.
const Retention = 365 * 24 * time.Hour

// Recorder stores operator actions.
type Recorder interface {
	Record(ctx context.Context, entry domain.SysOprLog) error
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Lister is implemented by recorders that can read their entries back.
type Lister interface {
	List(ctx context.Context, limit int) ([]domain.SysOprLog, error)
}

// NewEntry stamps a new audit entry.
func NewEntry(operator, ip, action, desc string) domain.SysOprLog {
	return domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   common.IfEmptyStr(operator, common.NA),
		OprIp:     ip,
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
}

// GormRecorder persists entries in the sys_opr_log table.
type GormRecorder struct {
	db *gorm.DB
}

var (
	_ Recorder = (*GormRecorder)(nil)
	_ Lister   = (*GormRecorder)(nil)
)

func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, entry domain.SysOprLog) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *GormRecorder) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("opt_time < ?", before).Delete(&domain.SysOprLog{})
	return res.RowsAffected, res.Error
}

// List returns the newest entries first.
func (r *GormRecorder) List(ctx context.Context, limit int) ([]domain.SysOprLog, error) {
	var entries []domain.SysOprLog
	err := r.db.WithContext(ctx).Order("opt_time desc").Limit(limit).Find(&entries).Error
	return entries, err
}

// LogRecorder writes entries to the log only; used when no database is set up.
type LogRecorder struct {
	logger *zap.Logger
}

var _ Recorder = (*LogRecorder)(nil)

func NewLogRecorder(logger *zap.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.Named("oprlog")}
}

func (r *LogRecorder) Record(_ context.Context, e domain.SysOprLog) error {
	r.logger.Info("operator action",
		zap.Int64("id", e.ID),
		zap.String("operator", e.OprName),
		zap.String("ip", e.OprIp),
		zap.String("action", e.OptAction),
		zap.String("desc", e.OptDesc),
		zap.Time("time", e.OptTime))
	return nil
}

func (r *LogRecorder) Purge(context.Context, time.Time) (int64, error) {
	return 0, nil
}

// Safe records without failing the caller's operation.
func Safe(ctx context.Context, r Recorder, entry domain.SysOprLog) {
	if err := r.Record(ctx, entry); err != nil {
		zap.L().Error("operator log write failed", zap.String("action", entry.OptAction), zap.Error(err))
	}
}
