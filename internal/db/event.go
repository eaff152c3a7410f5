package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event is an append-only audit row. Events outlive the game they
// reference; deleting a game does not delete its events.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	GameID    uint           `gorm:"index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
