package workers

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"referral-rewards-backend/internal/common/logger"
	topupservice "referral-rewards-backend/internal/features/topup/service"
)

// BalanceMonitor refreshes the provider admission state on a fixed cadence so
// read paths can use the cached value instead of hitting the provider.
type BalanceMonitor struct {
	gateway   *topupservice.Service
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewBalanceMonitor(gateway *topupservice.Service, interval time.Duration) *BalanceMonitor {
	return &BalanceMonitor{gateway: gateway, interval: interval}
}

func (m *BalanceMonitor) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	m.scheduler = scheduler

	_, err = scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(func() {
			m.gateway.RefreshAdmission(ctx)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	logger.Info().Dur("interval", m.interval).Msg("Balance monitor started")
	return nil
}

func (m *BalanceMonitor) Stop() {
	if m.scheduler == nil {
		return
	}
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Warn().Err(err).Msg("Balance monitor shutdown failed")
	}
}
