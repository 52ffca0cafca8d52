package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/parleychat/parley/internal/auth"
	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/handlers"
	"github.com/parleychat/parley/internal/middleware"
	"github.com/parleychat/parley/internal/presence"
	"github.com/parleychat/parley/internal/store"
	"github.com/parleychat/parley/internal/store/memstore"
	"github.com/parleychat/parley/internal/store/sqlstore"
	"github.com/parleychat/parley/internal/ws"
)

var addr = flag.String("addr", "", "listen address (overrides PARLEY_ADDR)")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log := newLogger(cfg.LogLevel)

	var users store.UserStore
	var convs store.ConversationStore
	switch cfg.StoreDriver {
	case "sqlite3":
		s, err := sqlstore.New(cfg.StoreDSN)
		if err != nil {
			log.Error("open store", "dsn", cfg.StoreDSN, "error", err)
			os.Exit(1)
		}
		defer s.Close()
		users, convs = s, s
	default:
		m := memstore.New()
		users, convs = m, m
	}

	signer := auth.NewSigner([]byte(cfg.JWTSecret), cfg.TokenTTL)
	authSvc := auth.NewService(users, signer)
	pres := presence.NewManager(users, log)
	router := chat.NewRouter(pres, convs, users, cfg.MaxMessageLen, cfg.StoreOffline, log)
	typing := chat.NewRelay(pres)

	hub := ws.NewHub(pres, router, typing, log)
	go hub.Run()

	authHandler := &handlers.AuthHandler{Auth: authSvc, Presence: pres, Log: log}

	r := mux.NewRouter()
	r.Use(middleware.Logging(log))

	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.Handle("/users", middleware.Auth(authSvc)(http.HandlerFunc(authHandler.Users))).Methods("GET")
	r.HandleFunc("/ws", ws.Handler(hub, authSvc))

	log.Info("starting server", "addr", cfg.Addr, "store", cfg.StoreDriver)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
