package routes

import (
	"slotbook/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all availability and booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	api := r.Group("/api/bookings")
	{
		api.GET("/slots", h.GetDaySlots)

		api.POST("/orders", h.CreateOrder)
		api.POST("/payu-orders", h.CreatePayUOrder)

		// Gateway callbacks.
		api.POST("/verify-payment", h.VerifyPayment)
		api.POST("/verify-payment-redirect", h.VerifyPaymentRedirect)
		api.POST("/payu-response", h.PayUResponse)
	}
}
