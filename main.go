package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"loyalty-points-system/config"
	"loyalty-points-system/handlers"
	"loyalty-points-system/models"
	"loyalty-points-system/services"
	"loyalty-points-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		AppName: "loyalty-points-system",
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Name",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.PointRecord{},
		&models.CheckinCycle{},
		&models.UserCheckinConfig{},
		&models.Team{},
		&models.TeamMember{},
		&models.Product{},
		&models.ProductExchange{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	timeControlEnabled := strings.EqualFold(os.Getenv("TIME_CONTROL_ENABLED"), "true")
	timeService := services.NewTimeService(clockwork.NewRealClock(), timeControlEnabled)

	userService := services.NewUserService(db, timeService)
	ledgerService := services.NewLedgerService(db, timeService)
	checkinService := services.NewCheckinService(db, timeService, ledgerService, config.DefaultCheckinConfig)
	teamService := services.NewTeamService(db, timeService, ledgerService, config.DefaultTeamConfig)
	expireService := services.NewPointExpireService(db, timeService, ledgerService, config.DefaultPointExpireConfig)
	productService := services.NewProductService(db, timeService, ledgerService)

	scheduler := services.NewScheduler(checkinService, expireService, productService)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler:", err)
	}

	// Catch up on the current week in case the process was down on Monday.
	if err := checkinService.GenerateWeeklyCycles(); err != nil {
		log.Printf("⚠️  Initial cycle generation failed: %v", err)
	}

	// Product routes carry the only public endpoint, so they register
	// first, ahead of the user-context groups.
	handlers.SetupProductRoutes(app, productService)
	handlers.SetupUserRoutes(app, userService)
	handlers.SetupCheckinRoutes(app, checkinService)
	handlers.SetupTeamRoutes(app, teamService)
	handlers.SetupPointRoutes(app, ledgerService, expireService)
	handlers.SetupTimeControlRoutes(app, timeService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)
	if timeControlEnabled {
		log.Println("⚠️  Time control endpoints ENABLED — do not run this in production")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
