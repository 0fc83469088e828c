package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyai/internal/logging"
	"studyai/internal/model"
	"studyai/internal/pkg/textextract"
	"studyai/internal/repository"
	"studyai/internal/storage"
)

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

var allowedMimeTypes = map[string]bool{
	textextract.MimePDF:    true,
	textextract.MimeText:   true,
	textextract.MimeDOCX:   true,
	textextract.MimeMSWord: true,
}

// ExtractionDispatcher hands text extraction off to a background worker.
type ExtractionDispatcher interface {
	PublishExtraction(ctx context.Context, job model.ExtractionJob) error
}

type ChatService struct {
	sessionRepo  *repository.SessionRepository
	materialRepo *repository.MaterialRepository
	files        *storage.FileStore
	dispatcher   ExtractionDispatcher
	maxUpload    int64
	logger       *zap.Logger
	now          func() time.Time
}

type CreateSessionInput struct {
	Title string
	Type  string
}

type AddTextMaterialInput struct {
	SessionID string
	Name      string
	Type      string
	Content   string
}

type UploadInput struct {
	SessionID   string
	FileName    string
	ContentType string
	// Size is the declared size; the body is still capped while copying.
	Size int64
	Body io.Reader
}

// NewChatService wires the material store. A nil dispatcher makes uploads
// extract their text inline.
func NewChatService(
	sessionRepo *repository.SessionRepository,
	materialRepo *repository.MaterialRepository,
	files *storage.FileStore,
	dispatcher ExtractionDispatcher,
	maxUpload int64,
	logger *zap.Logger,
) *ChatService {
	if maxUpload <= 0 {
		maxUpload = 50 << 20
	}
	return &ChatService{
		sessionRepo:  sessionRepo,
		materialRepo: materialRepo,
		files:        files,
		dispatcher:   dispatcher,
		maxUpload:    maxUpload,
		logger:       logging.OrNop(logger),
		now:          time.Now,
	}
}

func (s *ChatService) MaxUploadBytes() int64 {
	return s.maxUpload
}

func (s *ChatService) ListSessions() ([]model.ChatSession, error) {
	return s.sessionRepo.List()
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.ChatSession, error) {
	sessionType := strings.TrimSpace(input.Type)
	if sessionType == "" {
		sessionType = model.SessionTypeStudy
	}
	if !model.ValidSessionType(sessionType) {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Chat " + s.now().Format("2006-01-02")
	}

	session := &model.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		Type:      sessionType,
		Materials: []model.Material{},
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) GetSession(id string) (*model.ChatSession, error) {
	session, err := s.sessionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *ChatService) UpdateSession(id, title string) (*model.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	ok, err := s.sessionRepo.UpdateTitle(id, title, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.GetSession(id)
}

// DeleteSession unlinks every material file, then the session directory, then
// the rows. File errors are logged and never stop the delete.
func (s *ChatService) DeleteSession(id string) error {
	session, err := s.sessionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	for _, m := range session.Materials {
		if err := s.files.Remove(m.FilePath); err != nil {
			s.logger.Warn("remove material file failed",
				zap.String("session_id", id),
				zap.String("material_id", m.ID),
				zap.String("path", m.FilePath),
				zap.Error(err))
		}
	}
	if err := s.files.RemoveSessionDir(id); err != nil {
		s.logger.Warn("remove session dir failed", zap.String("session_id", id), zap.Error(err))
	}
	return s.sessionRepo.Delete(id)
}

func (s *ChatService) AddTextMaterial(input AddTextMaterialInput) (*model.Material, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.Content) == "" {
		return nil, ErrInvalidInput
	}
	materialType := strings.TrimSpace(input.Type)
	if materialType == "" {
		materialType = model.MaterialTypeText
	}
	if !model.ValidMaterialType(materialType) {
		return nil, ErrInvalidInput
	}
	if err := s.requireSession(input.SessionID); err != nil {
		return nil, err
	}

	fileName := name
	if !strings.HasSuffix(strings.ToLower(fileName), ".txt") {
		fileName += ".txt"
	}

	id := uuid.NewString()
	path, n, err := s.files.Save(input.SessionID, id, fileName, strings.NewReader(input.Content))
	if err != nil {
		return nil, err
	}

	material := &model.Material{
		ID:        id,
		SessionID: input.SessionID,
		Name:      name,
		Type:      materialType,
		MimeType:  textextract.MimeText,
		FilePath:  path,
		Content:   model.Preview(input.Content),
		Size:      n,
	}
	if err := s.createMaterial(material); err != nil {
		return nil, err
	}
	return material, nil
}

// UploadMaterial stores an uploaded file and schedules its text extraction.
// The MIME check runs before anything touches the disk.
func (s *ChatService) UploadMaterial(ctx context.Context, input UploadInput) (*model.Material, error) {
	if input.Body == nil || strings.TrimSpace(input.FileName) == "" {
		return nil, ErrInvalidInput
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(input.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}
	head = head[:n]

	mimeType := detectMimeType(input.ContentType, head)
	if !allowedMimeTypes[mimeType] {
		return nil, ErrUnsupportedFileType
	}
	if input.Size > s.maxUpload {
		return nil, ErrFileTooLarge
	}
	if err := s.requireSession(input.SessionID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), input.Body), s.maxUpload+1)
	path, size, err := s.files.Save(input.SessionID, id, input.FileName, body)
	if err != nil {
		return nil, err
	}
	if size > s.maxUpload {
		_ = s.files.Remove(path)
		return nil, ErrFileTooLarge
	}

	materialType := model.MaterialTypeText
	if mimeType == textextract.MimePDF {
		materialType = model.MaterialTypePDF
	}
	material := &model.Material{
		ID:        id,
		SessionID: input.SessionID,
		Name:      input.FileName,
		Type:      materialType,
		MimeType:  mimeType,
		FilePath:  path,
		Content:   model.UploadPlaceholder(input.FileName),
		Size:      size,
	}
	if err := s.createMaterial(material); err != nil {
		return nil, err
	}

	s.scheduleExtraction(ctx, material)
	return material, nil
}

// MaterialContent returns the full text behind a material.
func (s *ChatService) MaterialContent(id string) (string, error) {
	material, err := s.materialRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	if material == nil {
		return "", ErrMaterialNotFound
	}
	return s.fullText(material)
}

func (s *ChatService) DeleteMaterial(id string) error {
	material, err := s.materialRepo.GetByID(id)
	if err != nil {
		return err
	}
	if material == nil {
		return ErrMaterialNotFound
	}
	if err := s.files.Remove(material.FilePath); err != nil {
		s.logger.Warn("remove material file failed",
			zap.String("material_id", id),
			zap.String("path", material.FilePath),
			zap.Error(err))
	}
	return s.materialRepo.Delete(id)
}

// RefreshPreview replaces a material's stored preview with its extracted
// text. Empty extractions keep the current preview.
func (s *ChatService) RefreshPreview(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	material, err := s.materialRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	if material == nil {
		return "", ErrMaterialNotFound
	}
	text, err := s.fullText(material)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return material.Content, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	preview := model.Preview(text)
	if err := s.materialRepo.UpdateContent(id, preview); err != nil {
		return "", err
	}
	return preview, nil
}

// SessionMaterialText concatenates the full text of every material in a
// session, each under a header naming it.
func (s *ChatService) SessionMaterialText(sessionID string) (string, error) {
	if err := s.requireSession(sessionID); err != nil {
		return "", err
	}
	materials, err := s.materialRepo.ListBySessionID(sessionID)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(materials))
	for i := range materials {
		m := &materials[i]
		text, err := s.fullText(m)
		if err != nil {
			s.logger.Warn("read material for quiz failed, using preview",
				zap.String("material_id", m.ID),
				zap.Error(err))
			text = m.Content
		}
		label := "Context"
		if m.Type == model.MaterialTypePDF {
			label = "PDF"
		}
		parts = append(parts, fmt.Sprintf("[%s: %s]\n%s", label, m.Name, text))
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *ChatService) fullText(m *model.Material) (string, error) {
	data, err := s.files.Read(m.FilePath)
	if err != nil {
		return "", err
	}
	mimeType := m.MimeType
	if mimeType == "" && m.Type == model.MaterialTypePDF {
		mimeType = textextract.MimePDF
	}
	text, err := textextract.Extract(mimeType, data)
	if errors.Is(err, textextract.ErrUnsupported) {
		return m.Content, nil
	}
	if err != nil {
		return "", fmt.Errorf("extract material text failed: %w", err)
	}
	return text, nil
}

func (s *ChatService) scheduleExtraction(ctx context.Context, m *model.Material) {
	if s.dispatcher != nil {
		err := s.dispatcher.PublishExtraction(ctx, model.ExtractionJob{MaterialID: m.ID})
		if err == nil {
			return
		}
		s.logger.Warn("enqueue extraction failed, extracting inline",
			zap.String("material_id", m.ID),
			zap.Error(err))
	}

	preview, err := s.RefreshPreview(ctx, m.ID)
	if err != nil {
		s.logger.Warn("extract material text failed",
			zap.String("material_id", m.ID),
			zap.Error(err))
		return
	}
	m.Content = preview
}

func (s *ChatService) createMaterial(m *model.Material) error {
	if err := s.materialRepo.Create(m); err != nil {
		_ = s.files.Remove(m.FilePath)
		return err
	}
	if err := s.sessionRepo.Touch(m.SessionID, s.now()); err != nil {
		s.logger.Warn("touch session failed", zap.String("session_id", m.SessionID), zap.Error(err))
	}
	return nil
}

func (s *ChatService) requireSession(id string) error {
	ok, err := s.sessionRepo.Exists(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// detectMimeType trusts the declared type unless it is missing or generic.
func detectMimeType(declared string, head []byte) string {
	mediaType := baseMediaType(declared)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = baseMediaType(mimetype.Detect(head).String())
	}
	return mediaType
}

func baseMediaType(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(v)
	}
	return mediaType
}
