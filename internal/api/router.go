package api

import (
	"context"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/auth"
	"github.com/nekogravitycat/room-rental-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/room-rental-backend/internal/availability/http"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/cache"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/logger"
	"github.com/nekogravitycat/room-rental-backend/internal/rental"
	rentalHttp "github.com/nekogravitycat/room-rental-backend/internal/rental/http"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
	roomHttp "github.com/nekogravitycat/room-rental-backend/internal/room/http"
	"github.com/nekogravitycat/room-rental-backend/internal/user"
	userHttp "github.com/nekogravitycat/room-rental-backend/internal/user/http"
)

// Config carries everything the router needs to assemble handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	UserService         user.Service
	RoomService         room.Service
	RentalService       rental.Service
	AvailabilityService availability.Service
	JWTManager          *auth.JWTManager

	// AvailabilityCache may be disabled (nil client); its handlers then pass through.
	AvailabilityCache *cache.ResponseCache
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Structured access log through zap.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.GinMiddleware(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates the JWT and loads the caller's current role.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, auth.RoleResolverFunc(func(ctx context.Context, id string) (string, error) {
		identity, err := cfg.UserService.Resolve(ctx, id)
		if err != nil {
			return "", err
		}
		return string(identity.Role), nil
	}))
	// adminMiddleware: Further checks if the authenticated user is an admin.
	adminMiddleware := auth.RequireRole(string(user.RoleAdmin))

	// Writes that change which rooms are bookable drop cached availability.
	purgeAvailability := cfg.AvailabilityCache.PurgeOnSuccess()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	roomHandler := roomHttp.NewHandler(cfg.RoomService, cfg.Logger)
	rentalHandler := rentalHttp.NewHandler(cfg.RentalService, cfg.RoomService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, purgeAvailability)
		rentalHttp.RegisterRoutes(v1, rentalHandler, authMiddleware, adminMiddleware, purgeAvailability)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, cfg.AvailabilityCache.Handler())
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
