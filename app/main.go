package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/metrics"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/services/notification/delivery"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/services/notification/repository"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/services/notification/usecase"
)

var log *logrus.Logger
var wg sync.WaitGroup

const usecaseTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Fatalf("Error loading .env file")
	}

	log = config.GetLogrusInstance()

	startHTTP()
}

func startHTTP() {
	log.Info("Starting HTTP")
	app := fiber.New(config.GetFiberConfig())

	// CORS Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	ctx := context.Background()

	pool, err := config.BootDB(ctx)
	if err != nil {
		log.Fatalf("Failed to boot DB: %v", err)
		return
	}

	gormDB, err := config.BootGormDB()
	if err != nil {
		log.Fatalf("Failed to boot gorm DB: %v", err)
		return
	}

	meowClient, smtpAuth, smtpAddr, emailSender, err := config.InitBroadcast()
	if err != nil {
		log.Fatalf("Failed to initialize broadcast channels: %v", err)
		return
	}

	gateway, err := repository.NewGatewayRepository(ctx, pool)
	if err != nil {
		log.Fatalf("Failed to initialize gateway: %v", err)
		return
	}
	authRepo := repository.NewAuthRepository(gormDB)
	broadcaster := repository.NewBroadcastRepository(meowClient, smtpAuth, *smtpAddr, *emailSender)

	resolverUC := usecase.NewResolverUseCase(gateway, usecaseTimeout)
	composerUC := usecase.NewComposerUseCase(gateway, resolverUC, usecaseTimeout)
	coordinatorUC := usecase.NewCoordinatorUseCase(gateway, broadcaster, usecaseTimeout)
	diagnosticUC := usecase.NewDiagnosticUseCase(gateway, usecaseTimeout)
	authUC := usecase.NewAuthUseCase(authRepo, usecaseTimeout)

	delivery.NewAuthDelivery(app, authUC)
	delivery.NewNotifyDelivery(app, composerUC)
	delivery.NewCoordinatorDelivery(app, coordinatorUC)
	delivery.NewDiagnosticDelivery(app, diagnosticUC)

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("Starting HTTP server for Public on port %s", config.GetFiberHttpPort())
		if err := app.Listen(config.GetFiberListenAddress()); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)

	<-signalChan

	log.Info("Shutting down the server...")

	if err := app.Shutdown(); err != nil {
		log.Errorf("Error during server shutdown: %v", err)
	}

	if meowClient != nil {
		meowClient.Disconnect()
	}
	pool.Close()

	wg.Wait()
	log.Info("Server shut down gracefully")
}
