package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/api"
	"github.com/nekogravitycat/room-rental-backend/internal/auth"
	"github.com/nekogravitycat/room-rental-backend/internal/availability"
	"github.com/nekogravitycat/room-rental-backend/internal/event"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/cache"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/clock"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-rental-backend/internal/rental"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
	"github.com/nekogravitycat/room-rental-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Token        auth.TokenConfig
	BcryptCost   int
	Logger       *zap.Logger

	// Publisher receives rental events. Nil discards them.
	Publisher event.Publisher
	// Redis backs the availability cache. Nil disables caching.
	Redis    *redis.Client
	CacheTTL time.Duration
	// Clock defaults to the wall clock.
	Clock clock.Clock
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router        *gin.Engine
	JWTManager    *auth.JWTManager
	UserService   user.Service
	RoomService   room.Service
	RentalService rental.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = event.NopPublisher{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	response.SetLogger(cfg.Logger)

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.Token, cfg.Clock)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, cfg.Logger.Named("user"))

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, userService, cfg.Logger.Named("room"))

	// Rental Module
	rentalRepo := rental.NewPgxRepository(cfg.DBPool)
	rentalService := rental.NewService(rentalRepo, roomService, cfg.Publisher, cfg.Clock, cfg.Logger.Named("rental"))

	// Availability Module
	availabilityService := availability.NewService(roomService, rentalService)
	availabilityCache := cache.NewResponseCache(cfg.Redis, "availability", cfg.CacheTTL, cfg.Logger.Named("cache"))

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              cfg.Logger,
		UserService:         userService,
		RoomService:         roomService,
		RentalService:       rentalService,
		AvailabilityService: availabilityService,
		JWTManager:          jwtManager,
		AvailabilityCache:   availabilityCache,
	})

	return &Container{
		Router:        router,
		JWTManager:    jwtManager,
		UserService:   userService,
		RoomService:   roomService,
		RentalService: rentalService,
	}
}
