package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/divesh330/timevault/internal/api"
	"github.com/divesh330/timevault/internal/audit"
	"github.com/divesh330/timevault/internal/cache"
	"github.com/divesh330/timevault/internal/config"
	"github.com/divesh330/timevault/internal/db"
	"github.com/divesh330/timevault/internal/email"
	"github.com/divesh330/timevault/internal/payment"
	"github.com/divesh330/timevault/internal/repository"
	"github.com/divesh330/timevault/internal/repository/memory"
	"github.com/divesh330/timevault/internal/services"
	"github.com/divesh330/timevault/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var (
		repos     *repository.Repositories
		processor payment.Processor
		notifier  services.TransactionNotifier
		recorder  audit.Recorder
	)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	var backgroundTaskSrv *asynq.Server

	if cfg.DemoMode {
		// Demo mode runs entirely in-process: in-memory store, simulated
		// payments, logged notifications. No Mongo, Redis or worker needed.
		fmt.Println("Demo mode: using in-memory store and simulated services.")
		repos = memory.NewRepositories()
		processor = payment.NewSimulator(cfg.PaymentSimDelay, cfg.PaymentSimSuccessRate)
		notifier = tasks.LogNotifier{}
		recorder = audit.NewStoreRecorder(repos.SerialAudits)
	} else {
		mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			if err := db.DisconnectDB(mongoClient); err != nil {
				log.Printf("Error disconnecting from MongoDB: %v", err)
			}
		}()

		if err := db.EnsureIndexes(context.Background(), mongoDb); err != nil {
			log.Fatalf("Failed to ensure database indexes: %v", err)
		}

		redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			if err := cache.DisconnectRedis(redisClient); err != nil {
				log.Printf("Error disconnecting from Redis: %v", err)
			}
		}()

		repos = repository.NewMongoRepositories(mongoDb)

		if cfg.PaymentSimEnabled {
			processor = payment.NewSimulator(cfg.PaymentSimDelay, cfg.PaymentSimSuccessRate)
		} else {
			processor = payment.NoopProcessor{}
		}

		taskClient := tasks.NewClient(redisClient)
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()
		notifier = tasks.NewAsynqNotifier(taskClient)
		recorder = audit.NewAsynqRecorder(taskClient)

		if cfg.RunMode == "bg" || cfg.RunMode == "all" {
			emailSender := email.NewSMTPSender(cfg)
			taskProcessor := tasks.NewTaskProcessor(cfg, repos, emailSender)
			srv, mux := tasks.SetupServer(redisClient, taskProcessor)
			backgroundTaskSrv = srv
			wg.Add(1)
			go func() {
				defer wg.Done()
				fmt.Println("Background task server starting...")
				if err := backgroundTaskSrv.Run(mux); err != nil {
					log.Fatalf("Background task server error: %v", err)
				}
				fmt.Println("Background task server stopped.")
			}()
		}
	}

	var mainApiSrv *http.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	if cfg.RunMode == "api" || cfg.RunMode == "all" || cfg.DemoMode {
		mainApiRouter := api.SetupRouter(cfg, repos, processor, notifier, recorder)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("API ListenAndServe error: %v", err)
			}
			fmt.Println("API server stopped.")
		}()
	}

	if mainApiSrv == nil && backgroundTaskSrv == nil {
		log.Fatalf("Invalid run mode specified: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		fmt.Println("Shutting down API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}
	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down background task server...")
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	fmt.Println("Application shut down.")
}
