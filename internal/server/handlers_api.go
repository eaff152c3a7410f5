package server

import (
	"errors"
	"net/http"
	"strconv"

	"dual-dm/internal/db"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type startRequest struct {
	SystemPrompt string `json:"systemPrompt"`
}

type turnRequest struct {
	GameID     uint   `json:"gameId"`
	UserAction string `json:"userAction"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStart creates a game and generates both narrators' introductions
// from an empty history.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := db.CreateGame(s.db, req.SystemPrompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create game")
		return
	}

	fast, smart := s.playBothBranches(r.Context(), game, introTrigger)
	if fast.storeErr != nil || smart.storeErr != nil {
		writeError(w, http.StatusInternalServerError, "failed to save introduction")
		return
	}

	log.Infof("game created game_id=%d", game.ID)
	s.recordEvent(game.ID, "game_created", eventPayload{
		SystemPrompt: game.SystemPrompt,
		FastFailed:   fast.Failed,
		SmartFailed:  smart.Failed,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"gameId":  game.ID,
		"message": "new game started",
		"dm1":     fast.Text,
		"dm2":     smart.Text,
	})
}

// handleTurn persists the shared user action, then runs both narrator
// branches concurrently. A failed model call surfaces as placeholder
// text in its branch, never as an HTTP error.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := db.FindGame(s.db, req.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load game")
		return
	}

	// The user action lands in the shared branch before either call is
	// issued, so both branch histories include it.
	if _, err := db.AppendMessage(s.db, game.ID, db.BranchShared, db.RoleUser, req.UserAction); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save action")
		return
	}

	fast, smart := s.playBothBranches(r.Context(), game, "")
	if fast.storeErr != nil || smart.storeErr != nil {
		writeError(w, http.StatusInternalServerError, "failed to save reply")
		return
	}

	log.Infof("turn played game_id=%d", game.ID)
	s.recordEvent(game.ID, "turn_played", eventPayload{
		Action:      req.UserAction,
		FastFailed:  fast.Failed,
		SmartFailed: smart.Failed,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"dm1": fast.Text,
		"dm2": smart.Text,
	})
}

// handleHistory returns the raw message rows for a game. An unknown game
// id yields an empty list, not an error.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	messages, err := db.GameMessages(s.db, gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := db.ListGames(s.db)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load games")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := parseID(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	deleted, err := db.DeleteGame(s.db, gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete game")
		return
	}
	log.Infof("game deleted game_id=%d", gameID)
	s.recordEvent(gameID, "game_deleted", eventPayload{Deleted: deleted})
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "game deleted",
		"deleted": deleted,
	})
}

func parseID(raw string) (uint, error) {
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
