package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"slotbook/config"
	bookingRepo "slotbook/database/repository/booking"
	hostRepo "slotbook/database/repository/host"
	"slotbook/models"
	"slotbook/services/calendar"
	"slotbook/services/notification"
	"slotbook/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitEnrichmentWorker runs the async enrichment worker and the stale
// booking sweeper in background.
func InitEnrichmentWorker(
	bookings bookingRepo.BookingRepository,
	hosts hostRepo.HostRepository,
	notifier notification.Notifier,
	enricher calendar.CalendarEnricher,
	lockTTL time.Duration,
) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingNotify, handleNotifyTask(bookings, hosts, notifier))
	mux.HandleFunc(tasks.TypeBookingCalendar, handleCalendarTask(bookings, hosts, enricher))

	go monitorRedisConnection()
	go sweepStaleBookings(bookings, lockTTL)

	// Start async worker with retry logic
	go func() {
		log.Println("[EnrichmentWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[EnrichmentWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[EnrichmentWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// loadConfirmed fetches the booking and its host, skipping work when the
// booking is no longer confirmed by the time the task runs.
func loadConfirmed(ctx context.Context, bookings bookingRepo.BookingRepository, hosts hostRepo.HostRepository, raw []byte) (*models.Booking, *models.Host, error) {
	var p models.EnrichmentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil, err
	}
	b, err := bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			log.Printf("[EnrichmentWorker] ⚠️ Booking %s gone, dropping task", p.BookingID)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if b.Status != models.StatusConfirmed {
		log.Printf("[EnrichmentWorker] ⚠️ Booking %s is %s, skipping enrichment", b.ID, b.Status)
		return nil, nil, nil
	}
	host, err := hosts.GetByID(ctx, b.HostID)
	if err != nil {
		return nil, nil, err
	}
	return b, host, nil
}

func handleNotifyTask(bookings bookingRepo.BookingRepository, hosts hostRepo.HostRepository, notifier notification.Notifier) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		b, host, err := loadConfirmed(ctx, bookings, hosts, task.Payload())
		if err != nil || b == nil {
			return err
		}
		if err := notifier.NotifyConfirmed(ctx, b, host); err != nil {
			log.Printf("[EnrichmentWorker] ❌ Failed to notify for booking %s: %v", b.ID, err)
			return err
		}
		return nil
	}
}

func handleCalendarTask(bookings bookingRepo.BookingRepository, hosts hostRepo.HostRepository, enricher calendar.CalendarEnricher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		b, host, err := loadConfirmed(ctx, bookings, hosts, task.Payload())
		if err != nil || b == nil {
			return err
		}
		meetingLink, err := enricher.CreateMeeting(ctx, b, host)
		if err != nil {
			log.Printf("[EnrichmentWorker] ❌ Failed to create meeting for booking %s: %v", b.ID, err)
			return err
		}
		if err := bookings.SetEnrichment(ctx, b.ID, meetingLink, calendar.BookingReference(b.ID)); err != nil {
			log.Printf("[EnrichmentWorker] ❌ Failed to record enrichment for booking %s: %v", b.ID, err)
			return err
		}
		return nil
	}
}

// sweepStaleBookings periodically rewrites pending bookings older than the
// lock TTL to expired, so abandoned checkouts stop blocking their slots.
func sweepStaleBookings(bookings bookingRepo.BookingRepository, lockTTL time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		swept, err := bookings.ExpireStale(ctx, lockTTL)
		cancel()
		if err != nil {
			log.Printf("[EnrichmentWorker] ❌ Stale booking sweep failed: %v", err)
			continue
		}
		if swept > 0 {
			log.Printf("[EnrichmentWorker] ⏰ Expired %d stale pending bookings", swept)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[EnrichmentWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
