package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/AmmarC10/ContractinGO-BE/config"
	"github.com/AmmarC10/ContractinGO-BE/db"
	"github.com/AmmarC10/ContractinGO-BE/logger"
	"github.com/AmmarC10/ContractinGO-BE/realtime"
	"github.com/AmmarC10/ContractinGO-BE/server"
	"github.com/AmmarC10/ContractinGO-BE/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zapLogger, err := logger.New(conf.Env != "production")
	if err != nil {
		log.Fatalf("error initializing logger: %v", err)
	}
	defer zapLogger.Sync()

	gormDB := db.GetDB(conf)
	if err := db.SeedAdTypes(gormDB.DB); err != nil {
		zapLogger.Fatalf("error seeding ad types: %v", err)
	}

	authRepo := db.NewAuthRepo(gormDB)
	adRepo := db.NewAdRepo(gormDB)
	conversationRepo := db.NewConversationRepo(gormDB)

	hub := realtime.NewHub(zapLogger)
	var broker realtime.Broker = hub
	if conf.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
		})
		broker = realtime.NewRedisBroker(context.Background(), rdb, hub, zapLogger)
		zapLogger.Infof("broadcasting through redis at %s", conf.RedisAddr)
	}

	var notifier services.Notifier
	if conf.GoogleApplicationCredentials != "" {
		notifier, err = services.NewFCMNotifier(context.Background(), conf.GoogleApplicationCredentials, zapLogger)
		if err != nil {
			zapLogger.Warnf("push notifications disabled: %v", err)
			notifier = nil
		}
	} else {
		zapLogger.Warn("no firebase credentials configured, push notifications disabled")
	}

	authService := services.NewAuthService(authRepo, conf, zapLogger)
	adService := services.NewAdService(adRepo, conf, zapLogger)
	messagingService := services.NewMessagingService(conversationRepo, authRepo, adRepo, broker, notifier, conf, zapLogger)
	mediaService := services.NewMediaService(conf, zapLogger)

	s := &server.Server{
		Config:                 conf,
		Logger:                 zapLogger,
		AuthRepository:         authRepo,
		ConversationRepository: conversationRepo,
		AdRepository:           adRepo,
		AuthService:            authService,
		AdService:              adService,
		MessagingService:       messagingService,
		MediaService:           mediaService,
		Broker:                 broker,
		DB:                     *gormDB,
	}
	s.Start()
}
