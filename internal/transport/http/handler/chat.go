package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studyai/internal/app"
	"studyai/internal/logging"
	"studyai/internal/transport/http/response"
)

const msgInvalidFileType = "Invalid file type. Only PDFs, TXT, and DOCX allowed."

type ChatHandler struct {
	chatService *app.ChatService
	logger      *zap.Logger
}

type CreateChatRequest struct {
	Title string `json:"title" binding:"max=255"`
	Type  string `json:"type"`
}

type UpdateChatRequest struct {
	Title string `json:"title" binding:"max=255"`
}

type AddMaterialRequest struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

func NewChatHandler(chatService *app.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logging.OrNop(logger)}
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		h.internal(c, "Error fetching chats", err)
		return
	}
	response.OK(c, sessions)
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	// An empty body creates a chat with the default title.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.chatService.CreateSession(app.CreateSessionInput{
		Title: req.Title,
		Type:  req.Type,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid chat type. Use study or practice.")
		default:
			h.internal(c, "Error creating chat", err)
		}
		return
	}
	response.OK(c, session)
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	session, err := h.chatService.GetSession(c.Param("id"))
	if err != nil {
		h.sessionError(c, "Error fetching chat", err)
		return
	}
	response.OK(c, session)
}

func (h *ChatHandler) UpdateChat(c *gin.Context) {
	var req UpdateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		response.Error(c, http.StatusBadRequest, "Missing required fields: title")
		return
	}

	session, err := h.chatService.UpdateSession(c.Param("id"), req.Title)
	if err != nil {
		h.sessionError(c, "Error updating chat", err)
		return
	}
	response.OK(c, session)
}

func (h *ChatHandler) DeleteChat(c *gin.Context) {
	if err := h.chatService.DeleteSession(c.Param("id")); err != nil {
		h.sessionError(c, "Error deleting chat", err)
		return
	}
	response.Message(c, "Chat deleted successfully")
}

func (h *ChatHandler) UploadMaterial(c *gin.Context) {
	maxBytes := h.chatService.MaxUploadBytes()
	// Leave room for the multipart envelope; the service enforces the file cap.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusBadRequest, fileTooLargeMessage(maxBytes))
			return
		}
		response.Error(c, http.StatusBadRequest, "No file provided")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	material, err := h.chatService.UploadMaterial(c.Request.Context(), app.UploadInput{
		SessionID:   c.Param("id"),
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        f,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedFileType):
			response.Error(c, http.StatusBadRequest, msgInvalidFileType)
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, fileTooLargeMessage(maxBytes))
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "No file provided")
		default:
			h.sessionError(c, "Error uploading file", err)
		}
		return
	}
	response.OK(c, material)
}

func (h *ChatHandler) AddMaterial(c *gin.Context) {
	var req AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if missing := missingFields(
		field{"name", req.Name},
		field{"content", req.Content},
	); len(missing) > 0 {
		response.Error(c, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	material, err := h.chatService.AddTextMaterial(app.AddTextMaterialInput{
		SessionID: c.Param("id"),
		Name:      req.Name,
		Type:      req.Type,
		Content:   req.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid material type. Use pdf or text.")
		default:
			h.sessionError(c, "Error adding material", err)
		}
		return
	}
	response.OK(c, material)
}

func (h *ChatHandler) MaterialContent(c *gin.Context) {
	content, err := h.chatService.MaterialContent(c.Param("id"))
	if err != nil {
		h.materialError(c, "Error reading material", err)
		return
	}
	response.OK(c, gin.H{"content": content})
}

func (h *ChatHandler) DeleteMaterial(c *gin.Context) {
	if err := h.chatService.DeleteMaterial(c.Param("id")); err != nil {
		h.materialError(c, "Error deleting material", err)
		return
	}
	response.Message(c, "Material deleted successfully")
}

func (h *ChatHandler) sessionError(c *gin.Context, message string, err error) {
	if errors.Is(err, app.ErrSessionNotFound) {
		response.Error(c, http.StatusNotFound, "Chat not found")
		return
	}
	h.internal(c, message, err)
}

func (h *ChatHandler) materialError(c *gin.Context, message string, err error) {
	if errors.Is(err, app.ErrMaterialNotFound) {
		response.Error(c, http.StatusNotFound, "Material not found")
		return
	}
	h.internal(c, message, err)
}

func (h *ChatHandler) internal(c *gin.Context, message string, err error) {
	h.logger.Error(message, zap.String("path", c.Request.URL.Path), zap.Error(err))
	response.Error(c, http.StatusInternalServerError, message)
}

func fileTooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("File too large. Maximum size is %d MB.", maxBytes>>20)
}
