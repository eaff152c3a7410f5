package db

import (
	"time"

	"gorm.io/gorm"
)

// Branch tags. Branch 0 holds shared user messages visible to both
// narrators; branches 1 and 2 hold each narrator's own replies.
const (
	BranchShared = 0
	BranchFast   = 1
	BranchSmart  = 2
)

// Stored message roles. The stored role "model" is rewritten to
// "assistant" when a conversation is assembled for a backend call.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameID    uint      `gorm:"index;not null" json:"game_id"`
	BranchID  int       `gorm:"not null" json:"branch_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// AppendMessage inserts one message row. The auto-assigned id is the
// canonical ordering key; the timestamp is informational.
func AppendMessage(conn *gorm.DB, gameID uint, branch int, role, content string) (*Message, error) {
	record := Message{
		GameID:    gameID,
		BranchID:  branch,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := conn.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GameMessages returns every message row for the game, oldest first.
func GameMessages(conn *gorm.DB, gameID uint) ([]Message, error) {
	messages := []Message{}
	err := conn.Where("game_id = ?", gameID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// BranchHistory returns the conversation visible to one narrator branch:
// all shared messages plus that branch's own, ordered by id ascending.
// This is exactly the sequence the branch's model has seen.
func BranchHistory(conn *gorm.DB, gameID uint, branch int) ([]Message, error) {
	var messages []Message
	err := conn.Where("game_id = ? AND branch_id IN ?", gameID, []int{BranchShared, branch}).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
