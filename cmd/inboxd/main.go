// inboxd is the reference inbox backend used for local development and
// integration testing of the sync client.
package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/peoplekit/inbox-sync/internal/logging"
	"github.com/peoplekit/inbox-sync/internal/server"
)

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	addr := getenv("INBOXD_ADDR", ":8080")
	dbPath := getenv("INBOXD_DB", "inboxd.db")
	secret := os.Getenv("INBOXD_JWT_SECRET")
	if secret == "" {
		logging.Error("INBOXD_JWT_SECRET must be set")
		os.Exit(1)
	}

	storage, err := server.NewStorage(dbPath)
	if err != nil {
		logging.Error("opening storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = storage.Close() }()

	tokens := server.NewTokenService(secret, 24*time.Hour)
	srv := server.NewServer(storage, tokens)
	defer srv.Close()

	if err := srv.Run(addr); err != nil {
		logging.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
