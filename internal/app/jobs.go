package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/internal/oprlog"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@daily", a.SchedPurgeOprLog)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedPurgeOprLog drops operator log entries past retention.
func (a *Application) SchedPurgeOprLog() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := a.recorder.Purge(ctx, time.Now().Add(-oprlog.Retention))
	if err != nil {
		zap.S().Errorf("operator log purge failed: %v", err)
		return
	}
	if n > 0 {
		zap.S().Infof("operator log purge removed %d entries", n)
	}
}
