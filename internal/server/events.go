package server

import (
	"encoding/json"
	"time"

	"dual-dm/internal/db"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type eventPayload struct {
	SystemPrompt string `json:"system_prompt,omitempty"`
	Action       string `json:"action,omitempty"`
	FastFailed   bool   `json:"fast_failed,omitempty"`
	SmartFailed  bool   `json:"smart_failed,omitempty"`
	Deleted      int64  `json:"deleted,omitempty"`
}

// recordEvent appends an audit row. Best effort: a failed event write is
// logged and never fails the request that produced it.
func (s *Server) recordEvent(gameID uint, eventType string, payload eventPayload) {
	if s.db == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to encode event payload type=%s game_id=%d: %v", eventType, gameID, err)
		return
	}
	record := db.Event{
		GameID:    gameID,
		Type:      eventType,
		Payload:   datatypes.JSON(raw),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Errorf("failed to record event type=%s game_id=%d: %v", eventType, gameID, err)
	}
}
