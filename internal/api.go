package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png"
	"github.com/rm-hull/png-bitmap/internal/png/stage"
)

const DefaultMaxBodyBytes = 64 << 20

type BitmapHandler struct {
	adapter      *png.Adapter
	maxBodyBytes int64
}

func NewBitmapHandler(adapter *png.Adapter, maxBodyBytes int64) *BitmapHandler {
	if adapter == nil {
		adapter = png.DefaultAdapter
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &BitmapHandler{adapter: adapter, maxBodyBytes: maxBodyBytes}
}

func (h *BitmapHandler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/bitmap", h.decode)
	v1.POST("/png", h.encode)
}

// decode converts an uploaded PNG into raw bitmap bytes, rows bottom-to-top.
func (h *BitmapHandler) decode(c *gin.Context) {
	format, err := bitmap.ParseFormat(c.DefaultQuery("format", "rgba"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", png.ErrInvalidFormat, err))
		return
	}

	stages, err := stage.ParseStages(c.Query("filters"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	bm, err := h.adapter.Decode(body, format, stages...)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer h.adapter.Free(bm)

	c.Header("X-Bitmap-Width", strconv.Itoa(bm.Width()))
	c.Header("X-Bitmap-Height", strconv.Itoa(bm.Height()))
	c.Header("X-Bitmap-Format", bm.Format().String())
	c.Data(http.StatusOK, "application/octet-stream", bm.Data())
}

// encode converts raw bitmap bytes, rows bottom-to-top, into a PNG.
func (h *BitmapHandler) encode(c *gin.Context) {
	format, err := bitmap.ParseFormat(c.Query("format"))
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %w", png.ErrInvalidFormat, err))
		return
	}

	width, errW := strconv.Atoi(c.Query("width"))
	height, errH := strconv.Atoi(c.Query("height"))
	if err := errors.Join(errW, errH); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "width and height must be integers"})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		abortWithError(c, err)
		return
	}

	bm, err := bitmap.New(width, height, format, data)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := h.adapter.Encode(&buf, bm); err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, png.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, png.ErrDecode), errors.Is(err, png.ErrEncode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, png.ErrCodecInternal):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
