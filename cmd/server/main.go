package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaiminPatel345/make-my-buddy/internal/config"
	"github.com/JaiminPatel345/make-my-buddy/internal/database"
	"github.com/JaiminPatel345/make-my-buddy/internal/events"
	"github.com/JaiminPatel345/make-my-buddy/internal/handlers"
	"github.com/JaiminPatel345/make-my-buddy/internal/logger"
	"github.com/JaiminPatel345/make-my-buddy/internal/middleware"
	"github.com/JaiminPatel345/make-my-buddy/internal/otp"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
	"github.com/JaiminPatel345/make-my-buddy/internal/routes"
	"github.com/JaiminPatel345/make-my-buddy/internal/server"
	"github.com/JaiminPatel345/make-my-buddy/internal/services"
	"github.com/JaiminPatel345/make-my-buddy/internal/sms"
	"github.com/JaiminPatel345/make-my-buddy/internal/token"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.App.Env)
	defer func() {
		_ = zlog.Sync()
	}()
	sugar := zlog.Sugar()
	sugar.Infof("Starting make-my-buddy in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	if cfg.InsecureJWTSecret {
		sugar.Warn("JWT_SECRET not set, using the built-in development secret. Do NOT run this in production.")
	}

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	idxCtx, cancelIdx := context.WithTimeout(context.Background(), 15*time.Second)
	if err := repository.EnsureUserIndexes(idxCtx, db, cfg.Mongo.UsersCollection); err != nil {
		sugar.Fatalf("failed to ensure user indexes: %v", err)
	}
	if err := repository.EnsureRequestIndexes(idxCtx, db, cfg.Mongo.RequestsCollection); err != nil {
		sugar.Fatalf("failed to ensure request indexes: %v", err)
	}
	cancelIdx()

	smsClient := sms.NewTwilioClient(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.From)
	if !smsClient.IsConfigured() {
		sugar.Warn("SMS client not fully configured. OTP delivery will be skipped.")
	}

	var pub events.Publisher = events.Nop{}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
		pub = kafkaPub
		sugar.Infof("Kafka publisher configured for topic %s", cfg.Kafka.Topic)
	} else {
		sugar.Warn("No Kafka brokers configured. Relationship events will be dropped.")
	}

	tokens := token.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTTLDays)*24*time.Hour)
	otpStore := otp.NewStore(otp.NewRedisKV(rdb), zlog)

	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.UsersCollection)
	requestRepo := repository.NewMongoRequestRepo(db, cfg.Mongo.RequestsCollection)

	dir := services.NewUserDirectory(userRepo)
	authSvc := services.NewAuthService(userRepo, otpStore, smsClient, tokens, zlog)
	buddySvc := services.NewBuddyService(userRepo, requestRepo, dir, pub, zlog)
	adminSvc := services.NewAdminService(userRepo, pub, zlog)
	suggestionSvc := services.NewSuggestionService(userRepo, dir)

	h := routes.Handlers{
		Auth:  handlers.NewAuthHandler(authSvc, dir),
		User:  handlers.NewUserHandler(dir, suggestionSvc),
		Buddy: handlers.NewBuddyHandler(buddySvc),
		Admin: handlers.NewAdminHandler(adminSvc),
	}

	app := server.New(cfg, h, middleware.Auth(tokens), middleware.AdminOnly(dir), zlog)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			sugar.Errorf("Kafka writer close error: %v", err)
		}
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		sugar.Errorf("Redis client close error: %v", err)
	}

	sugar.Info("Graceful shutdown complete.")
}
