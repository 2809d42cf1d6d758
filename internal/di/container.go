package di

import (
	"github.com/gatherly-app/backend-rsvp/internal/handler"
	"github.com/gatherly-app/backend-rsvp/internal/repository"
	"github.com/gatherly-app/backend-rsvp/internal/service"
	"github.com/gatherly-app/backend-rsvp/pkg/config"
	"github.com/gatherly-app/backend-rsvp/pkg/database"
	"github.com/gatherly-app/backend-rsvp/pkg/redis"
)

// Container holds all dependencies for the RSVP service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	TxManager       repository.TxManager
	EventRepo       repository.EventRepository
	PersonRepo      repository.PersonRepository
	ReservationRepo repository.ReservationRepository
	PaymentRepo     repository.PaymentRepository
	OccupancyCache  repository.OccupancyCache

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	RSVPService  service.RSVPService
	EventService service.EventService

	// Handlers
	HealthHandler *handler.HealthHandler
	RSVPHandler   *handler.RSVPHandler
	EventHandler  *handler.EventHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	RSVP           *config.RSVPConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	pool := c.DB.Pool()
	c.TxManager = repository.NewPgxTxManager(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.PersonRepo = repository.NewPostgresPersonRepository(pool)
	c.ReservationRepo = repository.NewPostgresReservationRepository(pool)
	c.PaymentRepo = repository.NewPostgresPaymentRepository(pool)

	if c.Redis != nil {
		var ttl = repository.DefaultOccupancyCacheTTL
		if cfg.RSVP != nil && cfg.RSVP.OccupancyCacheTTL > 0 {
			ttl = cfg.RSVP.OccupancyCacheTTL
		}
		c.OccupancyCache = repository.NewRedisOccupancyCache(c.Redis, ttl)
	}

	c.RSVPService = service.NewRSVPService(
		c.TxManager,
		c.EventRepo,
		c.PersonRepo,
		c.ReservationRepo,
		c.PaymentRepo,
		c.OccupancyCache,
		c.EventPublisher,
	)
	plusOnesCeiling := 0
	if cfg.RSVP != nil {
		plusOnesCeiling = cfg.RSVP.MaxPlusOnesCeiling
	}
	c.EventService = service.NewEventService(
		c.EventRepo,
		c.ReservationRepo,
		c.OccupancyCache,
		plusOnesCeiling,
	)

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.RSVPHandler = handler.NewRSVPHandler(c.RSVPService)
	c.EventHandler = handler.NewEventHandler(c.EventService)

	return c
}
