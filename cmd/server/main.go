package main

import (
	"net/http"

	"dual-dm/internal/config"
	"dual-dm/internal/db"
	"dual-dm/internal/server"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warnf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	addr := ":" + cfg.Port
	srv := server.New(conn, cfg)
	log.Infof("dual-dm server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
