package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wedding-rsvp-backend/config"
	"wedding-rsvp-backend/controllers"
	"wedding-rsvp-backend/models"
	"wedding-rsvp-backend/routes"
	"wedding-rsvp-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := config.ConnectDB(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}

	var store services.Store
	if config.DB != nil {
		config.DB.AutoMigrate(
			&models.RSVPEntry{},
			&models.Guest{},
			&models.Wedding{},
			&models.AdminUser{},
			&models.SerialCounter{},
			&models.DriveFileRecord{},
		)
		store = services.NewGormStore(config.DB)
		log.Println("✅ Database connected, using Postgres store")
	} else {
		store = services.NewMemoryStore()
		log.Println("⚠️  DB_URL not set, using in-memory store (data is lost on restart)")
	}

	excel := services.NewExcelService(os.Getenv("EXPORT_DIR"))
	drive := services.NewDriveService()
	whatsapp := services.NewWhatsAppService()
	notifier := services.NewNotifier()
	rsvp := services.NewRSVPService(store, excel, drive, notifier)

	if notifier.Configured() {
		services.NewDigestService(store, notifier).StartScheduler()
	}

	r := routes.SetupRouter(
		controllers.NewHealthController(whatsapp, drive),
		controllers.NewRSVPController(rsvp, store, excel),
		controllers.NewWhatsAppController(whatsapp, store),
		controllers.NewWebhookController(whatsapp, store),
		controllers.NewWeddingController(store),
		controllers.NewAuthController(store),
	)
	printRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		log.Printf("📱 WhatsApp: %s", configuredLabel(whatsapp.Configured()))
		log.Printf("📤 Google Drive: %s", configuredLabel(drive.Configured()))
		log.Printf("📧 Notifications: %s", configuredLabel(notifier.Configured()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func configuredLabel(ok bool) string {
	if ok {
		return "Configured"
	}
	return "Not Configured"
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
