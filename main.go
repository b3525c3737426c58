package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/meddesk/appointment-api/auth"
	"github.com/meddesk/appointment-api/config"
	"github.com/meddesk/appointment-api/controllers"
	"github.com/meddesk/appointment-api/cron"
	"github.com/meddesk/appointment-api/db"
	"github.com/meddesk/appointment-api/payments"
	"github.com/meddesk/appointment-api/redis"
	"github.com/meddesk/appointment-api/routes"
	"github.com/meddesk/appointment-api/scheduling"
	"github.com/meddesk/appointment-api/utils"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		log.Fatal(err)
	}

	cache := scheduling.NewDayCache(redis.Connect(cfg.RedisAddr))
	gateway := payments.NewStripeGateway(cfg.StripeSecretKey)
	service := scheduling.NewService(scheduling.NewStore(gdb), gateway, cache, cfg.AppointmentFee)

	mailer := utils.Mailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.EmailUser,
		Pass: cfg.EmailPass,
	}
	reminders := cron.StartReminderJobs(gdb, mailer)
	defer reminders.Stop()

	authHandler := &controllers.AuthHandler{
		DB:     gdb,
		Hasher: auth.NewPasswordHasher(),
		Tokens: auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, cfg.RefreshTTL),
	}
	appointmentHandler := &controllers.AppointmentHandler{Scheduler: service}

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	routes.SetupAuthRoutes(app, authHandler, cfg.JWTSecret)
	routes.SetupAppointmentRoutes(app, appointmentHandler, cfg.JWTSecret)

	log.Fatal(app.Listen(":" + cfg.Port))
}
