package tasks

import (
	"context"
	"encoding/json"
	"time"

	"slotbook/config"
	"slotbook/models"
	"slotbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeBookingNotify   = "booking:notify"
	TypeBookingCalendar = "booking:calendar"
)

func NewBookingNotifyTask(payload models.EnrichmentPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingNotify, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

func NewBookingCalendarTask(payload models.EnrichmentPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingCalendar, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

// AsynqDispatcher enqueues enrichment work onto the Redis-backed task queue.
// Enqueue failures are logged and swallowed: enrichment never fails a
// confirmed booking.
type AsynqDispatcher struct {
	Client *asynq.Client
}

func NewAsynqDispatcher() *AsynqDispatcher {
	return &AsynqDispatcher{
		Client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskDB,
		}),
	}
}

func (d *AsynqDispatcher) DispatchConfirmed(ctx context.Context, bookingID string) {
	logger := utils.GetLogger()
	payload := models.EnrichmentPayload{BookingID: bookingID}

	builders := []func(models.EnrichmentPayload) (*asynq.Task, []asynq.Option, error){
		NewBookingNotifyTask,
		NewBookingCalendarTask,
	}
	for _, build := range builders {
		task, opts, err := build(payload)
		if err != nil {
			logger.Error("failed to build enrichment task",
				zap.String("bookingID", bookingID), zap.Error(err))
			continue
		}
		if _, err := d.Client.EnqueueContext(ctx, task, opts...); err != nil {
			logger.Error("failed to enqueue enrichment task",
				zap.String("type", task.Type()),
				zap.String("bookingID", bookingID), zap.Error(err))
		}
	}
}
