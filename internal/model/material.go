package model

import "time"

const (
	MaterialTypePDF  = "pdf"
	MaterialTypeText = "text"

	// PreviewLimit bounds the content stored on the row, in runes. The full
	// text is served by the content endpoint.
	PreviewLimit = 5000
)

type Material struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID string    `gorm:"size:36;not null;index" json:"sessionId"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	MimeType  string    `gorm:"size:128" json:"mimeType,omitempty"`
	FilePath  string    `gorm:"size:1024;not null" json:"filePath"`
	Content   string    `gorm:"type:text" json:"content"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Material) TableName() string {
	return "chat_materials"
}

func ValidMaterialType(t string) bool {
	return t == MaterialTypePDF || t == MaterialTypeText
}

// Preview truncates s to PreviewLimit runes.
func Preview(s string) string {
	if len(s) <= PreviewLimit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= PreviewLimit {
		return s
	}
	return string(runes[:PreviewLimit])
}

// UploadPlaceholder is the preview of an uploaded file until its text has
// been extracted.
func UploadPlaceholder(name string) string {
	return "[File: " + name + "]"
}

// ExtractionJob asks the worker to refresh a material's preview from its file.
type ExtractionJob struct {
	MaterialID string `json:"materialId"`
}
