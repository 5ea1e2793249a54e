package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/blitzuno/blitzuno/internal/auth"
	"github.com/blitzuno/blitzuno/internal/cache"
	"github.com/blitzuno/blitzuno/internal/handlers"
	"github.com/blitzuno/blitzuno/internal/middleware"
	"github.com/blitzuno/blitzuno/internal/room"
)

func main() {
	// Persistent signing keys keep reconnect tokens valid across restarts;
	// without them a fresh pair is generated per process.
	privPath := os.Getenv("AUTH_PRIVATE_KEY_FILE")
	pubPath := os.Getenv("AUTH_PUBLIC_KEY_FILE")
	if privPath != "" && pubPath != "" {
		if err := auth.InitFromPath(privPath, pubPath); err != nil {
			log.Fatalf("failed to load signing keys: %v", err)
		}
	} else {
		auth.Init()
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	store := room.NewStore()
	if err := cache.ConnectRedis(); err != nil {
		// Rooms work without redis; action history and avatars do not.
		logger.Warnf("redis unavailable, history and avatars disabled: %v", err)
	} else {
		store.Sink = cache.Sink{}
	}

	mux := http.NewServeMux()

	// room websocket
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.RoomWSHandler(logger, store),
	)))

	// avatar endpoints
	mux.Handle("/avatar/upload", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.UploadAvatarHandler(logger),
	)))
	mux.Handle("/avatar/from-url", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.AvatarFromURLHandler(logger),
	)))
	mux.Handle("/avatars/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ServeAvatarHandler(logger),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
