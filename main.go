package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"storefinder/handlers"
	"storefinder/middleware"
	"storefinder/repositories"
	"storefinder/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Fatal("REDIS_ADDR environment variable is not set")
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	if err := client.Ping(context.Background(), nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")
	db := client.Database("storefinder")

	// Redis
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Mail; when SMTP settings are absent the mailer is disabled and reset
	// requests will fail with a notification error.
	mailer, err := services.NewSMTPMailer(
		os.Getenv("SMTP_HOST"),
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
		os.Getenv("SMTP_FROM"),
		os.Getenv("SMTP_SKIP_VERIFY") == "1",
	)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	// Repositories and services
	userRepo := repositories.NewUserMongoRepository(db)
	storeRepo := repositories.NewStoreMongoRepository(db)
	sessions := services.NewRedisSessionStore(redisClient)
	authService := services.NewAuthService(userRepo, sessions, jwtSecret)
	resetService := services.NewResetService(userRepo, authService, mailer, baseURL)
	storeService := services.NewStoreService(storeRepo, userRepo)

	authHandler := handlers.NewAuthHandler(authService, resetService, jwtSecret)
	storeHandler := handlers.NewStoreHandler(storeService)

	r := mux.NewRouter()

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Recover())

	requireAuth := middleware.RequireAuth(jwtSecret, authService)

	// Auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	// Account routes
	r.HandleFunc("/account/forgot", authHandler.Forgot).Methods("POST", "OPTIONS")
	r.HandleFunc("/account/reset/{token}", authHandler.ValidateReset).Methods("GET", "OPTIONS")
	r.HandleFunc("/account/reset/{token}", authHandler.CompleteReset).Methods("POST", "OPTIONS")
	accountRouter := r.PathPrefix("/account").Subrouter()
	accountRouter.Use(requireAuth)
	accountRouter.HandleFunc("", authHandler.Account).Methods("GET", "OPTIONS")
	accountRouter.HandleFunc("", authHandler.UpdateAccount).Methods("POST", "OPTIONS")

	// Store routes
	r.HandleFunc("/stores", storeHandler.ListStores).Methods("GET", "OPTIONS")
	r.HandleFunc("/stores/page/{page}", storeHandler.ListStores).Methods("GET", "OPTIONS")
	r.HandleFunc("/store/{slug}", storeHandler.GetStoreBySlug).Methods("GET", "OPTIONS")
	r.HandleFunc("/tags", storeHandler.GetStoresByTag).Methods("GET", "OPTIONS")
	r.HandleFunc("/tags/{tag}", storeHandler.GetStoresByTag).Methods("GET", "OPTIONS")
	r.HandleFunc("/top", storeHandler.TopStores).Methods("GET", "OPTIONS")

	r.Handle("/stores", requireAuth(http.HandlerFunc(storeHandler.CreateStore))).Methods("POST", "OPTIONS")
	r.Handle("/stores/{id}/edit", requireAuth(http.HandlerFunc(storeHandler.EditStore))).Methods("GET", "OPTIONS")
	r.Handle("/stores/{id}", requireAuth(http.HandlerFunc(storeHandler.UpdateStore))).Methods("POST", "OPTIONS")
	r.Handle("/hearts", requireAuth(http.HandlerFunc(storeHandler.HeartedStores))).Methods("GET", "OPTIONS")
	r.Handle("/reviews/{id}", requireAuth(http.HandlerFunc(storeHandler.AddReview))).Methods("POST", "OPTIONS")

	// API routes
	r.HandleFunc("/api/search", storeHandler.SearchStores).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/stores/near", storeHandler.MapStores).Methods("GET", "OPTIONS")
	r.Handle("/api/stores/{id}/heart", requireAuth(http.HandlerFunc(storeHandler.HeartStore))).Methods("POST", "OPTIONS")

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
