package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Vivek-yadav01/CollabRoom/internal/hub"
	"github.com/Vivek-yadav01/CollabRoom/internal/service"
	"github.com/Vivek-yadav01/CollabRoom/internal/storage"
)

// allowedExtensions mirrors the upload policy: images, PDFs and plain
// document formats only.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// RoomBroadcaster fans an event out to every member of a room.
type RoomBroadcaster interface {
	BroadcastToRoom(roomCode, event string, payload interface{})
}

// UploadHandler accepts multipart file uploads bound for a room. Uploads
// ride HTTP rather than the realtime transport; on success the room is
// notified through a file-uploaded broadcast.
type UploadHandler struct {
	collabService *service.CollaborationService
	files         storage.FileStore
	broadcaster   RoomBroadcaster
	maxBytes      int64
}

// NewUploadHandler creates an UploadHandler instance.
func NewUploadHandler(collabService *service.CollaborationService, files storage.FileStore, broadcaster RoomBroadcaster, maxBytes int64) *UploadHandler {
	if collabService == nil {
		panic("CollaborationService cannot be nil for UploadHandler")
	}
	if files == nil {
		panic("FileStore cannot be nil for UploadHandler")
	}
	if broadcaster == nil {
		panic("RoomBroadcaster cannot be nil for UploadHandler")
	}
	return &UploadHandler{
		collabService: collabService,
		files:         files,
		broadcaster:   broadcaster,
		maxBytes:      maxBytes,
	}
}

// Upload handles POST /upload with a multipart body of {file, roomCode}.
// Validation failures never mutate room state; a room that died while the
// bytes were in flight yields 404 without resurrecting anything.
func (h *UploadHandler) Upload(c *gin.Context) {
	roomCode := c.PostForm("roomCode")
	if roomCode == "" {
		ErrorResponse(c, http.StatusBadRequest, "roomCode is required")
		return
	}
	logCtx := logrus.WithField("room_code", roomCode)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "No file selected!")
		return
	}
	if fileHeader.Size > h.maxBytes {
		ErrorResponse(c, http.StatusBadRequest, service.ErrFileTooLarge.Error())
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		ErrorResponse(c, http.StatusBadRequest, service.ErrFileType.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		logCtx.WithError(err).Error("Upload: failed to open multipart file")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	defer src.Close()

	info, err := h.files.Store(c.Request.Context(), src, fileHeader.Filename)
	if err != nil {
		logCtx.WithError(err).Error("Upload: failed to store file")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to store file")
		return
	}

	if err := h.collabService.AttachFile(c.Request.Context(), roomCode, info); err != nil {
		HandleServiceError(c, err)
		return
	}

	h.broadcaster.BroadcastToRoom(roomCode, hub.EvtFileUploaded, info)
	logCtx.WithField("file", info.Filename).Info("Upload: file stored and attached")
	SuccessResponse(c, http.StatusOK, info)
}
