package main

import (
	"context"
	"os"
	"time"

	cataloghandler "voyago/internal/catalog/handler"
	catalogrepository "voyago/internal/catalog/repository"
	catalogservice "voyago/internal/catalog/service"
	catalogvalidator "voyago/internal/catalog/validator"
	reservationhandler "voyago/internal/reservations/handler"
	"voyago/internal/reservations/index"
	reservationrepository "voyago/internal/reservations/repository"
	reservationservice "voyago/internal/reservations/service"
	reservationvalidator "voyago/internal/reservations/validator"
	"voyago/pkg/app"
	"voyago/pkg/config"
	"voyago/pkg/kafka"
	kafka_config "voyago/pkg/kafka/config"
	"voyago/pkg/scheduler"

	"github.com/julienschmidt/httprouter"
)

const (
	ServiceName = "availability"

	reservationEventsTopic = "reservation-events"
	reservationDLQTopic    = "reservation-events-dlq"
)

type apiHandler struct {
	resources    *cataloghandler.ResourceHandler
	reservations *reservationhandler.ReservationHandler
}

func (h *apiHandler) RegisterRoutes(router *httprouter.Router) {
	h.resources.RegisterRoutes(router)
	h.reservations.RegisterRoutes(router)
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")

	catalogSvc := initCatalog(cfg)
	reservationSvc, producer := initReservations(cfg, catalogSvc)

	ctx := context.Background()
	if err := reservationSvc.WarmIndex(ctx); err != nil {
		cfg.Log.Fatal("Failed to warm availability index", "error", err)
	}

	expirySweep := scheduler.New("expiry-sweep", cfg.ExpirySweepInterval, func(now time.Time) {
		count, err := reservationSvc.ExpirePendingHolds(context.Background(), now)
		if err != nil {
			cfg.Log.Error("Expiry sweep failed", "error", err)
			return
		}
		if count > 0 {
			cfg.Log.Info("Expiry sweep completed", "expired", count)
		}
	}, cfg.Log)
	expirySweep.Start()

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(&apiHandler{
		resources:    cataloghandler.NewResourceHandler(catalogSvc, cfg.Log),
		reservations: reservationhandler.NewReservationHandler(reservationSvc, cfg.Log),
	})
	serverApp.OnShutdown("expiry-sweep", expirySweep.Stop)
	if producer != nil {
		serverApp.OnShutdown("kafka-producer", func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}
	serverApp.OnShutdown("mongo", cfg.GracefulShutdown)
	serverApp.Run()
}

func initCatalog(cfg *config.Config) catalogservice.ResourceService {
	resourceValidator := catalogvalidator.NewResourceValidator(cfg.Log)
	resourceRepo := catalogrepository.NewMongoResourceRepository(cfg)
	resourceService := catalogservice.NewResourceService(
		resourceRepo,
		resourceValidator,
		cfg,
	)

	cfg.Log.Info("Catalog service initialized", "database", cfg.MongoDatabaseName)
	return resourceService
}

func initReservations(cfg *config.Config, catalogSvc catalogservice.ResourceService) (reservationservice.ReservationService, *kafka.Producer) {
	reservationRepo := reservationrepository.NewMongoReservationRepository(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := reservationRepo.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to ensure reservation indexes", "error", err)
	}

	var publisher reservationservice.EventPublisher
	var producer *kafka.Producer
	if os.Getenv(kafka_config.EnvKafkaBrokers) != "" {
		kafkaCfg := kafka_config.Load()
		var err error
		producer, err = kafka.NewProducer(kafkaCfg, reservationEventsTopic, reservationDLQTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		publisher = producer
		cfg.Log.Info("Reservation event publishing enabled", "topic", reservationEventsTopic)
	} else {
		cfg.Log.Info("Reservation event publishing disabled, no brokers configured")
	}

	reservationService := reservationservice.NewReservationService(
		reservationRepo,
		catalogSvc,
		index.New(),
		reservationvalidator.NewReservationValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservations service initialized", "database", cfg.MongoDatabaseName)
	return reservationService, producer
}
