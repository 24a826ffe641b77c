package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"moviehouse/internal/database"
	"moviehouse/internal/gateway"
	"moviehouse/internal/middleware"
	"moviehouse/internal/modules/booking"
	"moviehouse/internal/pkg/logger"
	"moviehouse/internal/repository"
)

func main() {
	_ = godotenv.Load()

	apiURL := os.Getenv("CINEMA_API_URL")
	if apiURL == "" {
		log.Fatal("CINEMA_API_URL is empty")
	}
	publicURL := os.Getenv("PUBLIC_URL")
	if publicURL == "" {
		log.Fatal("PUBLIC_URL is empty")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "kiosk.db"
	}

	slogger := logger.New()

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	client := gateway.New(apiURL, slogger)
	records := repository.NewBookingRecordRepository(db)

	cfg := booking.Config{
		PublicURL:          publicURL,
		DefaultPhoneRegion: os.Getenv("DEFAULT_PHONE_REGION"),
	}
	bookingHandler := booking.NewHandler(booking.GatewaysFrom(client), records, cfg, slogger)

	r := gin.New()
	r.Use(middleware.RequestLogger(slogger))
	r.Use(middleware.CORS())

	api := r.Group("/api")
	{
		bookingHandler.RegisterRoutes(api)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slogger.Info("kiosk listening", "port", port, "cinema_api", apiURL)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
