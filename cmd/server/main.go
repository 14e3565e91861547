package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"staffchat/infrastructure/cache"
	"staffchat/infrastructure/db"
	httpHandler "staffchat/internal/delivery/http"
	"staffchat/internal/repository"
	"staffchat/internal/usecase"
	"staffchat/pkg/jwt"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("godotenv: error loading .env file")
	}

	ctx := context.Background()

	mongoDbHost := os.Getenv("MONGODB_URI")
	mongoDbName := os.Getenv("MONGODB_DATABASE")
	mongoDb, err := db.NewMongoStore(ctx, mongoDbHost, mongoDbName)
	if err != nil {
		panic(err)
	}

	log.Println("Connected to MongoDB")

	if err := mongoDb.EnsureIndexes(ctx); err != nil {
		log.Printf("Warning: could not ensure indexes: %v", err)
	}

	// Initialize repositories
	staffDir := repository.NewStaffDirectory(*mongoDb.DB)
	messageRepo := repository.NewMessageRepository(*mongoDb.DB)

	// Refresh tokens live in Redis when configured, otherwise in Mongo.
	var refreshTokenRepo repository.RefreshTokenRepository
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr != "" {
		log.Printf("Using Redis refresh token store at %s", redisAddr)
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			panic(err)
		}
		refreshTokenRepo = repository.NewRedisRefreshTokenRepository(redisClient)
	} else {
		log.Println("Using Mongo refresh token store")
		refreshTokenRepo = repository.NewRefreshTokenRepository(*mongoDb.DB)
	}

	// Initialize JWT manager
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-this-in-production" // Default for development
		log.Println("Warning: Using default JWT secret. Set JWT_SECRET in .env for production")
	}

	// Access token: 15 minutes, Refresh token: 30 days
	jwtManager := jwt.NewJWTManager(jwtSecret, 15*time.Minute, 30*24*time.Hour)

	// The staff directory changes rarely; cache the roster's active
	// list between client polls.
	dirCache := cache.NewMemCache(time.Minute)
	defer dirCache.Close()

	// Initialize use cases
	authUc := usecase.NewAuthUsecase(staffDir, refreshTokenRepo, jwtManager)
	convUc := usecase.NewConversationUsecase(messageRepo, staffDir)
	rosterUc := usecase.NewRosterUsecase(staffDir, convUc, dirCache, 30*time.Second)

	// CORS middleware
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			// Handle preflight requests
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Initialize handlers
	chatH := httpHandler.NewChatHandler(convUc, rosterUc)
	authH := httpHandler.NewAuthHandler(authUc)
	authMiddleware := httpHandler.NewAuthMiddleware(authUc)

	// Map routes
	httpHandler.MapHttpRoutes(router, *chatH, *authH, authMiddleware)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP server is running on :%s", port)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
