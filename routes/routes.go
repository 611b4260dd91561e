package routes

import (
	"os"
	"strings"
	"time"

	"wedding-rsvp-backend/config"
	"wedding-rsvp-backend/controllers"
	"wedding-rsvp-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	hc *controllers.HealthController,
	rc *controllers.RSVPController,
	wac *controllers.WhatsAppController,
	whc *controllers.WebhookController,
	wdc *controllers.WeddingController,
	ac *controllers.AuthController,
) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = 50 << 20
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger())

	// Provider webhook lives at the root, per Meta's callback contract.
	r.GET("/webhook", whc.Verify)
	r.POST("/webhook", whc.Receive)

	api := r.Group("/api")
	{
		api.GET("/health", hc.Check)

		auth := api.Group("/auth")
		{
			auth.POST("/register", ac.Register)
			auth.POST("/login", ac.Login)

			auth.Use(utils.AuthMiddleware())
			auth.GET("/me", ac.Me)
		}

		rsvp := api.Group("/rsvp")
		{
			rsvp.POST("/submit", rc.Submit)
			rsvp.GET("/all", rc.GetAll)
			rsvp.GET("/stats", rc.GetStats)
			rsvp.GET("/download", rc.Download)
			rsvp.GET("/drive-link", rc.DriveLink)
		}

		// Admin surface. Protected when a JWT secret is configured;
		// single-couple deployments without one keep the open original
		// behavior.
		whatsapp := api.Group("/whatsapp")
		wedding := api.Group("/wedding")
		if os.Getenv("JWT_SECRET") != "" {
			whatsapp.Use(utils.AuthMiddleware())
			wedding.Use(utils.AuthMiddleware())
		}
		{
			whatsapp.POST("/send-invitation", wac.SendInvitation)
			whatsapp.POST("/send-template-invitation", wac.SendTemplateInvitation)
			whatsapp.POST("/send-confirmation", wac.SendConfirmation)
			whatsapp.POST("/send-bulk", wac.SendBulk)
			whatsapp.GET("/incoming-messages", wac.IncomingMessages)
			whatsapp.GET("/guests", wac.ListGuests)
		}
		{
			wedding.GET("", wdc.Get)
			wedding.PUT("", wdc.Update)
		}
	}

	return r
}
