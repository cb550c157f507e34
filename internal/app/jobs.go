package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talkincode/productapi/pkg/metrics"
)

const statsTaskTimeout = 10 * time.Second

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err := a.sched.AddFunc(a.appConfig.Jobs.StatsInterval, func() {
		go a.SchedCatalogStatsTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedCatalogStatsTask pings storage and refreshes the catalog gauges
func (a *Application) SchedCatalogStatsTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), statsTaskTimeout)
	defer cancel()

	if err := a.Ping(ctx); err != nil {
		metrics.SetStoreUp(false)
		zap.L().Warn("storage ping failed", zap.Error(err))
		return
	}
	metrics.SetStoreUp(true)

	n, err := a.productRepo.Count(ctx)
	if err != nil {
		zap.L().Warn("count products failed", zap.Error(err))
		return
	}
	metrics.SetCatalogSize(n)
}
