package notification

import (
	"context"

	"slotbook/models"
	"slotbook/utils"

	"go.uber.org/zap"
)

// Notifier tells the customer and the host about a confirmed booking.
// Notification is enrichment: it runs after the confirmation has committed
// and its failure never rolls a booking back.
type Notifier interface {
	NotifyConfirmed(ctx context.Context, booking *models.Booking, host *models.Host) error
}

// LogNotifier records the notification instead of delivering it. Delivery
// channels (email, WhatsApp) plug in behind the Notifier interface.
type LogNotifier struct{}

func (n *LogNotifier) NotifyConfirmed(ctx context.Context, booking *models.Booking, host *models.Host) error {
	utils.GetLogger().Info("booking confirmation notice",
		zap.String("bookingID", booking.ID),
		zap.String("hostName", host.Name),
		zap.String("customerEmail", booking.Customer.Email),
		zap.Time("startTime", booking.StartTime))
	return nil
}
