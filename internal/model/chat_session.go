package model

import "time"

const (
	SessionTypeStudy    = "study"
	SessionTypePractice = "practice"
)

type ChatSession struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Type      string     `gorm:"size:16;not null;default:study" json:"type"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `gorm:"index" json:"updatedAt"`
	Materials []Material `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"materials"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func ValidSessionType(t string) bool {
	return t == SessionTypeStudy || t == SessionTypePractice
}
