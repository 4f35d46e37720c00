// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"llm-chat-backend/internal/config"
	"llm-chat-backend/internal/domain"
	"llm-chat-backend/internal/handlers"
	"llm-chat-backend/internal/middleware"
	chatrepo "llm-chat-backend/internal/repository/chat"
	messagerepo "llm-chat-backend/internal/repository/message"
	tokenrepo "llm-chat-backend/internal/repository/token"
	userrepo "llm-chat-backend/internal/repository/user"
	"llm-chat-backend/internal/services"
	"llm-chat-backend/internal/services/ai"
	"llm-chat-backend/internal/services/token"
	"llm-chat-backend/internal/services/user_services"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("server")

	jwtSecret := cfg.JWTSecretKey
	if jwtSecret == "" {
		log.Println("WARNING: JWT_SECRET_KEY not set, using an insecure development secret")
		jwtSecret = "insecure-dev-secret"
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}, &domain.RefreshToken{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)
	tokenStore := tokenrepo.NewGormTokenStore(db)

	// --- Services ---
	tokenService, err := token.NewService(&token.Config{
		SecretKey:  jwtSecret,
		AccessTTL:  time.Duration(cfg.AccessTokenTTL) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTokenTTL) * 24 * time.Hour,
	}, tokenStore, services.NewLogger("token"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Token Service: %v", err)
	}

	aiConfig := ai.DefaultConfig()
	aiConfig.BaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	aiConfig.Timeout = time.Duration(cfg.LLMTimeout) * time.Second
	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Completion Provider: %v", err)
	}

	chatService, err := services.NewChatService(userRepo, chatRepo, messageRepo, provider, services.NewLogger("chat"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	authService := user_services.NewAuthService(userRepo, tokenService, services.NewLogger("auth"))

	fileService, err := services.NewFileService(cfg.UploadDir, userRepo, chatRepo, messageRepo, services.NewLogger("files"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize File Service: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, tokenService)
	chatHandler := handlers.NewChatHandler(chatService)
	fileHandler := handlers.NewFileHandler(fileService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")
	r.HandleFunc("/users", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")

	// --- Protected Routes ---
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/users/me", authHandler.GetMe).Methods("GET")
	protected.HandleFunc("/users/me", authHandler.UpdateMe).Methods("PATCH")
	protected.HandleFunc("/stats", chatHandler.GetStats).Methods("GET")

	protected.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	protected.HandleFunc("/chats", chatHandler.GetUserChats).Methods("GET")
	protected.HandleFunc("/chats/{id:[0-9]+}", chatHandler.GetChat).Methods("GET")
	protected.HandleFunc("/chats/{id:[0-9]+}", chatHandler.RenameChat).Methods("PATCH")
	protected.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")

	protected.HandleFunc("/send/{chat_id:[0-9]+}", chatHandler.Send).Methods("POST")
	protected.HandleFunc("/chats/{id:[0-9]+}/continue", chatHandler.Continue).Methods("POST")
	protected.HandleFunc("/chats/{id:[0-9]+}/regenerate", chatHandler.Regenerate).Methods("POST")
	protected.HandleFunc("/{chat_id:[0-9]+}/messages/{message_id:[0-9]+}", chatHandler.EditMessage).Methods("PATCH")
	protected.HandleFunc("/messages/{id:[0-9]+}", chatHandler.DeleteMessage).Methods("DELETE")

	protected.HandleFunc("/upload/{chat_id:[0-9]+}", fileHandler.Upload).Methods("POST")
	protected.HandleFunc("/files/{id:[0-9]+}", fileHandler.Download).Methods("GET")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	logger.Info("server starting", "port", cfg.ServerPort, "model", cfg.LLMModel, "database", cfg.DatabasePath)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
