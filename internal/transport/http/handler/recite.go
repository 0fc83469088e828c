package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"studyai/internal/ai"
	"studyai/internal/app"
	"studyai/internal/logging"
	"studyai/internal/transport/http/response"
)

// maxFieldBytes bounds each text field of a multipart recitation.
const maxFieldBytes = 1 << 20

var errFieldTooLarge = errors.New("form field too large")

type ReciteHandler struct {
	reciteService *app.ReciteService
	maxMediaBytes int64
	maxBodyBytes  int64
	logger        *zap.Logger
}

type RecitationRequest struct {
	RecitedText  string `json:"recitedText"`
	ExpectedText string `json:"expectedText"`
}

// NewReciteHandler caps the media part at maxMediaBytes and the whole
// multipart body at maxBodyBytes. Oversized media is dropped, an oversized
// body is rejected.
func NewReciteHandler(reciteService *app.ReciteService, maxMediaBytes, maxBodyBytes int64, logger *zap.Logger) *ReciteHandler {
	return &ReciteHandler{
		reciteService: reciteService,
		maxMediaBytes: maxMediaBytes,
		maxBodyBytes:  maxBodyBytes,
		logger:        logging.OrNop(logger),
	}
}

// Evaluate accepts JSON, or multipart form fields plus an optional "media"
// file for body-language analysis.
func (h *ReciteHandler) Evaluate(c *gin.Context) {
	var (
		req   RecitationRequest
		media *ai.Media
	)

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
		m, err := h.bindMultipart(c, &req)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(c, http.StatusBadRequest, fmt.Sprintf("Request body too large. Maximum size is %d MB.", h.maxBodyBytes>>20))
				return
			}
			response.Error(c, http.StatusBadRequest, "Invalid request body")
			return
		}
		media = m
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(missingFields(
		field{"recitedText", req.RecitedText},
		field{"expectedText", req.ExpectedText},
	)) > 0 {
		response.Error(c, http.StatusBadRequest, "Missing recitedText or expectedText")
		return
	}

	evaluation, err := h.reciteService.Evaluate(c.Request.Context(), app.RecitationInput{
		RecitedText:  req.RecitedText,
		ExpectedText: req.ExpectedText,
		Media:        media,
	})
	if err != nil {
		h.logger.Error("recitation evaluation failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "AI analysis failed")
		return
	}
	response.OK(c, evaluation)
}

// bindMultipart streams the form so the media part is never buffered unless
// the service will use it. Unread parts are discarded by NextPart.
func (h *ReciteHandler) bindMultipart(c *gin.Context, req *RecitationRequest) (*ai.Media, error) {
	reader, err := c.Request.MultipartReader()
	if err != nil {
		return nil, err
	}

	var media *ai.Media
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return media, nil
		}
		if err != nil {
			return nil, err
		}

		switch part.FormName() {
		case "recitedText":
			req.RecitedText, err = readField(part)
		case "expectedText":
			req.ExpectedText, err = readField(part)
		case "media":
			if h.reciteService.AnalyzesMedia() {
				media, err = h.readMedia(part)
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

func readField(part *multipart.Part) (string, error) {
	data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxFieldBytes {
		return "", errFieldTooLarge
	}
	return string(data), nil
}

// readMedia returns nil media, not an error, for parts that cannot be used;
// the text evaluation goes ahead without body-language analysis.
func (h *ReciteHandler) readMedia(part *multipart.Part) (*ai.Media, error) {
	data, err := io.ReadAll(io.LimitReader(part, h.maxMediaBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxMediaBytes {
		h.logger.Warn("recitation media too large, skipping analysis",
			zap.String("filename", part.FileName()),
			zap.Int64("limit_bytes", h.maxMediaBytes))
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	mimeType := part.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	return &ai.Media{MimeType: mimeType, Data: data}, nil
}
