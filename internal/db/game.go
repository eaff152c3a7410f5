package db

import (
	"time"

	"gorm.io/gorm"
)

type Game struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SystemPrompt string    `gorm:"type:text;not null" json:"system_prompt"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	Messages     []Message `json:"-"`
}

// CreateGame inserts a new game with the given system prompt. The prompt
// is immutable for the game's lifetime.
func CreateGame(conn *gorm.DB, systemPrompt string) (*Game, error) {
	record := Game{
		SystemPrompt: systemPrompt,
		CreatedAt:    time.Now().UTC(),
	}
	if err := conn.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindGame looks up a game by id. Returns gorm.ErrRecordNotFound when the
// id is absent.
func FindGame(conn *gorm.DB, id uint) (*Game, error) {
	var record Game
	if err := conn.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListGames returns all games, newest first.
func ListGames(conn *gorm.DB) ([]Game, error) {
	games := []Game{}
	if err := conn.Order("created_at DESC, id DESC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// DeleteGame removes every message owned by the game, then the game row
// itself. The two deletes are not wrapped in a transaction; a crash in
// between leaves orphaned messages. Returns the row count of the final
// delete.
func DeleteGame(conn *gorm.DB, id uint) (int64, error) {
	if err := conn.Where("game_id = ?", id).Delete(&Message{}).Error; err != nil {
		return 0, err
	}
	result := conn.Delete(&Game{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
