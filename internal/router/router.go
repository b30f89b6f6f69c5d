package router

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/raiser-connect/backend/internal/handlers"
	"github.com/raiser-connect/backend/internal/middleware"
	"github.com/raiser-connect/backend/internal/repositories"
	"github.com/raiser-connect/backend/pkg/config"
)

// SetupMiddleware configures global Echo middleware and the envelope error
// handler
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = envelopeErrorHandler
	log.Println("Global middleware configured.")
}

// envelopeErrorHandler renders every error in the uniform response envelope.
// Unclassified errors surface as 500 with the raw error text passed through.
func envelopeErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	body := echo.Map{"success": false, "message": message}
	if code == http.StatusInternalServerError {
		body["error"] = message
	}
	if jsonErr := c.JSON(code, body); jsonErr != nil {
		log.Printf("Error writing error response: %v\n", jsonErr)
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, store *config.Store, cfg *config.Config) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Raiser Connect API"})
	})

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(store.Database)
	postRepo := repositories.NewMongoPostRepository(store.Database)
	commentRepo := repositories.NewMongoCommentRepository(store.Database)
	followRepo := repositories.NewMongoFollowRepository(store.Database)

	protect := middleware.Protect(cfg.JWTSecret)

	// Auth routes
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authGroup := e.Group("/api/auth")
	authHandler.RegisterAuthRoutes(authGroup)
	authProtected := e.Group("/api/auth", protect)
	authHandler.RegisterProtectedAuthRoutes(authProtected)
	log.Println("Auth routes configured.")

	// User routes
	userHandler := handlers.NewUserHandler(userRepo, postRepo)
	userProtected := e.Group("/api/users", protect)
	userHandler.RegisterProtectedUserRoutes(userProtected)
	userGroup := e.Group("/api/users")
	userHandler.RegisterUserRoutes(userGroup)
	log.Println("User routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, store)
	postProtected := e.Group("/api/posts", protect)
	postHandler.RegisterProtectedPostRoutes(postProtected)
	postGroup := e.Group("/api/posts")
	postHandler.RegisterPostRoutes(postGroup)
	log.Println("Post routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, store)
	followProtected := e.Group("/api/follow", protect)
	followHandler.RegisterProtectedFollowRoutes(followProtected)
	followGroup := e.Group("/api/follow")
	followHandler.RegisterFollowRoutes(followGroup)
	log.Println("Follow routes configured.")

	// Geolocation routes (all protected)
	geoHandler := handlers.NewGeolocationHandler(userRepo, postRepo, followRepo)
	geoGroup := e.Group("/api/geolocation", protect)
	geoHandler.RegisterGeolocationRoutes(geoGroup)
	log.Println("Geolocation routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, store)
	commentProtected := e.Group("/api/comments", protect)
	commentHandler.RegisterProtectedCommentRoutes(commentProtected)
	commentGroup := e.Group("/api/comments")
	commentHandler.RegisterCommentRoutes(commentGroup)
	log.Println("Comment routes configured.")

	// Search routes
	searchHandler := handlers.NewSearchHandler(userRepo, postRepo)
	searchGroup := e.Group("/api/search")
	searchHandler.RegisterSearchRoutes(searchGroup)
	log.Println("Search routes configured.")

	log.Println("All routes configured.")
}
