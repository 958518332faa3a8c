package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/dongapp/dong/internal/api"
	"github.com/dongapp/dong/internal/auth"
	"github.com/dongapp/dong/internal/groupid"
	"github.com/dongapp/dong/internal/service"
	"github.com/dongapp/dong/internal/storage/sqlite"
	"github.com/dongapp/dong/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/dong.db")
	port := getEnv("PORT", "8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	jwtHours, err := strconv.Atoi(getEnv("JWT_DURATION_HOURS", "72"))
	if err != nil {
		slog.Error("Invalid JWT_DURATION_HOURS", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, time.Duration(jwtHours)*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	alloc := groupid.NewAllocator(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	users := service.NewUserService(authenticator, jwtManager, store, slog.Default())
	groups := service.NewGroupService(store, alloc, slog.Default())
	expenses := service.NewExpenseService(store, slog.Default())

	handler := api.New(users, groups, expenses).Router(jwtManager)

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
