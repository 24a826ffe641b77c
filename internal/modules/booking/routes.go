package booking

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/booking/:id", h.LoadBookingPage)
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBookingRecord)

	// payment-provider redirect landings
	rg.GET("/booking/:id/success", h.PaymentSuccess)
	rg.GET("/booking/cancel", h.PaymentCancel)
}
