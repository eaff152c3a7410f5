package server

import (
	"fmt"
	"net/http"
	"time"

	"dual-dm/internal/config"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	db       *gorm.DB
	cfg      config.Config
	narrator *narratorClient
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		db:       conn,
		cfg:      cfg,
		narrator: newNarratorClient(cfg),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(httprate.LimitByIP(s.cfg.RequestsPerMinute, time.Minute))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/start", s.handleStart)
		r.Post("/turn", s.handleTurn)
		r.Get("/history/{gameID}", s.handleHistory)
		r.Get("/games", s.handleListGames)
		r.Delete("/games/{gameID}", s.handleDeleteGame)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "static/index.html")
	})
	return r
}

// recoverer maps a panic during request handling to a 500 response
// carrying the panic value's message.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Errorf("panic while handling %s %s: %v", req.Method, req.URL.Path, v)
				writeError(w, http.StatusInternalServerError, fmt.Sprint(v))
			}
		}()
		next.ServeHTTP(w, req)
	})
}
