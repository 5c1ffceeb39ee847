package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/deposia/avatar-api/internal/extract"
	"github.com/deposia/avatar-api/internal/pipeline"
	"github.com/gin-gonic/gin"

	"github.com/deposia/avatar-api/internal/prompt"
)

// uploads above this size are rejected before buffering
const maxUploadBytes = 20 << 20 // 20 MiB per file

// AvatarHandler exposes the avatar pipeline over HTTP
type AvatarHandler struct {
	service *pipeline.Service
}

// NewAvatarHandler creates a new avatar handler
func NewAvatarHandler(service *pipeline.Service) *AvatarHandler {
	return &AvatarHandler{service: service}
}

// createRequest is the JSON body for text-only requests. Document uploads
// arrive as multipart form data instead.
type createRequest struct {
	TextQuery  string `json:"text_query"`
	ExpertType string `json:"expert_type"`
}

// Create generates an expert witness persona without a portrait image.
// POST /avatar/create
func (h *AvatarHandler) Create(c *gin.Context) {
	request, ok := h.parseRequest(c)
	if !ok {
		return
	}

	outcome := h.service.RunPersonaOnly(c.Request.Context(), request)
	c.JSON(http.StatusOK, outcome)
}

// CreateImage generates a persona plus a portrait image.
// POST /avatar/create-image
func (h *AvatarHandler) CreateImage(c *gin.Context) {
	request, ok := h.parseRequest(c)
	if !ok {
		return
	}

	outcome := h.service.RunFullAvatar(c.Request.Context(), request)
	c.JSON(http.StatusOK, outcome)
}

// ValidateConfig checks that an avatar configuration payload is a JSON
// object. Validation failures are reported in the envelope, not as HTTP
// errors.
// POST /avatar/validate
func (h *AvatarHandler) ValidateConfig(c *gin.Context) {
	var config map[string]interface{}
	if err := c.ShouldBindJSON(&config); err != nil || config == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  pipeline.StatusError,
			"message": "Configuration must be a JSON object",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  pipeline.StatusOK,
		"message": "Avatar configuration is valid",
	})
}

// parseRequest accepts either a JSON body (text query only) or multipart
// form data (text query plus PDF uploads). It enforces the at-least-one-
// input precondition before the pipeline runs; the pipeline defends
// against empty input independently.
func (h *AvatarHandler) parseRequest(c *gin.Context) (pipeline.Request, bool) {
	var request pipeline.Request

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			h.badRequest(c, "invalid multipart form: "+err.Error())
			return request, false
		}

		request.RawQuery = strings.TrimSpace(c.PostForm("text_query"))
		request.ExpertType = c.PostForm("expert_type")

		for _, header := range form.File["files"] {
			doc, err := readUpload(header)
			if err != nil {
				h.badRequest(c, "failed to read upload "+header.Filename+": "+err.Error())
				return request, false
			}
			request.Documents = append(request.Documents, doc)
		}
	} else {
		var body createRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, "invalid request body: "+err.Error())
			return request, false
		}
		request.RawQuery = strings.TrimSpace(body.TextQuery)
		request.ExpertType = body.ExpertType
	}

	if request.ExpertType != "" && !prompt.IsValidExpertType(request.ExpertType) {
		h.badRequest(c, "invalid expert_type (allowed: "+strings.Join(prompt.ExpertTypes, ", ")+")")
		return request, false
	}

	if request.RawQuery == "" && len(request.Documents) == 0 {
		h.badRequest(c, "provide a text_query or at least one PDF file")
		return request, false
	}

	return request, true
}

func readUpload(header *multipart.FileHeader) (extract.Document, error) {
	var doc extract.Document
	if header.Size > maxUploadBytes {
		return doc, fmt.Errorf("file exceeds the %d MiB upload limit", maxUploadBytes>>20)
	}

	file, err := header.Open()
	if err != nil {
		return doc, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return doc, err
	}

	return extract.Document{Filename: header.Filename, Data: data}, nil
}

func (h *AvatarHandler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  pipeline.StatusError,
		"message": message,
	})
}
