package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/ppdb/admissions-backend/internal/config"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/middleware"
	"github.com/ppdb/admissions-backend/internal/modules/account"
	"github.com/ppdb/admissions-backend/internal/modules/auth"
	"github.com/ppdb/admissions-backend/internal/modules/notification"
	"github.com/ppdb/admissions-backend/internal/modules/period"
	"github.com/ppdb/admissions-backend/internal/modules/registration"
	"github.com/ppdb/admissions-backend/internal/modules/selection"
	"github.com/ppdb/admissions-backend/internal/modules/tenant"
	"github.com/ppdb/admissions-backend/internal/modules/verification"
	"github.com/ppdb/admissions-backend/internal/policy"
	"github.com/ppdb/admissions-backend/internal/shared/database"
	"github.com/ppdb/admissions-backend/internal/shared/fcm"
	"github.com/ppdb/admissions-backend/internal/shared/redis"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connected successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	redisClient, err := redis.Connect(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Redis connected successfully")

	fcmClient, err := fcm.NewClient(cfg.FCM)
	if err != nil {
		log.Printf("Warning: Failed to initialize FCM client: %v", err)
		fcmClient = &fcm.Client{}
	}
	if fcmClient.IsInitialized() {
		log.Println("FCM client initialized successfully")
	} else {
		log.Println("FCM client not configured, push notifications disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "PPDB Admissions API",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(httpx.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:request_id}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Tenant-ID",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "ppdb-admissions-api",
		})
	})

	api := app.Group("/api/v1")
	accessPolicy := policy.NewAccessPolicy()

	// Notification module wired first: auth (verification/reset emails) and
	// selection (acceptance/rejection/announcement emails) both depend on it.
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, redisClient)
	notificationHandler := notification.NewHandler(notificationService)

	notificationWorker := notification.NewWorkerWithConfig(redisClient, fcmClient, notificationRepo, notification.RetryConfig{
		MaxRetries:    cfg.Notification.MaxRetries,
		InitialDelay:  time.Duration(cfg.Notification.BaseBackoffSeconds) * time.Second,
		MaxDelay:      5 * time.Minute,
		BackoffFactor: 2.0,
	})
	notificationWorker.Start()

	// Auth module
	jwtManager := auth.NewJWTManager(cfg.JWT)
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(
		authRepo,
		jwtManager,
		notificationService,
		time.Duration(cfg.Selection.PasswordResetTTLMinutes)*time.Minute,
	)
	authHandler := auth.NewHandler(authService)

	authHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.AuthMiddleware(jwtManager, authService))
	authHandler.RegisterProtectedRoutes(protected)

	notificationHandler.RegisterRoutes(protected)

	// Super-admin-only school catalog (cross-tenant by nature, no school scoping).
	tenantRepo := tenant.NewRepository(db)
	tenantService := tenant.NewService(tenantRepo)
	tenantHandler := tenant.NewHandler(tenantService)

	superAdminRoutes := protected.Group("", middleware.RoleMiddleware(models.RoleSuperAdmin))
	tenantHandler.RegisterRoutes(superAdminRoutes)

	// Everything below is tenant-scoped via store.Scope bound in AuthMiddleware;
	// per-action authorization happens inside each handler against policy.AccessPolicy.
	accountRepo := account.NewRepository(db)
	accountService := account.NewService(accountRepo)
	accountHandler := account.NewHandler(accountService, accessPolicy)
	accountHandler.RegisterRoutes(protected)

	periodRepo := period.NewRepository(db)
	periodService := period.NewService(periodRepo)
	periodHandler := period.NewHandler(periodService, accessPolicy)
	periodHandler.RegisterRoutes(protected)

	documentStore := registration.NewLocalDocumentStore(cfg.Server.DocumentStoreDir)
	registrationRepo := registration.NewRepository(db)
	registrationService := registration.NewService(registrationRepo, documentStore)
	registrationHandler := registration.NewHandler(registrationService, accessPolicy)
	registrationHandler.RegisterRoutes(protected)

	verificationRepo := verification.NewRepository(db)
	verificationService := verification.NewService(verificationRepo)
	verificationHandler := verification.NewHandler(verificationService, accessPolicy)
	verificationHandler.RegisterRoutes(protected)

	selectionRepo := selection.NewRepository(db)
	selectionService := selection.NewService(selectionRepo, notificationService)
	selectionHandler := selection.NewHandler(selectionService, accessPolicy)
	selectionHandler.RegisterRoutes(protected)

	// Public result check — no auth middleware, the registration number +
	// NISN pair is its own credential.
	selectionHandler.RegisterPublicRoutes(api)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		notificationWorker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
