package document

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chakri8826/Student-Interview-App/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type Handler struct {
	repo  Repository
	store ObjectStore
}

func NewHandler(db *sqlx.DB, store ObjectStore) *Handler {
	return &Handler{
		repo:  NewRepository(db),
		store: store,
	}
}

// Upload godoc
// @Summary      Upload a CV
// @Description  Stores the file in the object store and records its metadata.
// @Tags         documents
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CV file"
// @Success      201   {object}  CV
// @Failure      400   {object}  gin.H
// @Failure      500   {object}  gin.H
// @Router       /cv/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	key := fmt.Sprintf("%d/%s%s", userID,
		strings.ReplaceAll(uuid.NewString(), "-", ""), filepath.Ext(fileHeader.Filename))

	storageURL, err := h.store.Put(c.Request.Context(), key, data, contentTypeFor(fileHeader.Filename))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	cv, err := h.repo.Create(c.Request.Context(), userID, fileHeader.Filename, storageURL, fileHeader.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record CV"})
		return
	}

	c.JSON(http.StatusCreated, cv)
}

// List godoc
// @Summary      List my CVs
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   CV
// @Failure      500  {object}  gin.H
// @Router       /cv [get]
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cvs, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch CVs"})
		return
	}

	c.JSON(http.StatusOK, cvs)
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt", ".md":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
