package apihandlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"textclassifier/internal/costtracker"
	"textclassifier/internal/results"
	"textclassifier/internal/textinput"
	"textclassifier/pkg/classifier"
)

const (
	DefaultMaxBatchSize   = 100
	DefaultMaxUploadBytes = 16 << 20
)

// Options configures an APIHandler.
type Options struct {
	Provider       string
	Usage          costtracker.CostTracker
	MaxBatchSize   int
	MaxUploadBytes int64
}

type APIHandler struct {
	classifier classifier.Classifier
	opts       Options
}

// NewAPIHandler serves c over HTTP. Zero limits take the package defaults.
func NewAPIHandler(c classifier.Classifier, opts Options) *APIHandler {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Usage == nil {
		opts.Usage = costtracker.Noop()
	}
	return &APIHandler{classifier: c, opts: opts}
}

type ClassifyRequest struct {
	Text string `json:"text"`
}

type ClassifyBatchRequest struct {
	Texts []string `json:"texts"`
}

type BatchResponse struct {
	Results []classifier.Result `json:"results"`
	Count   int                 `json:"count"`
}

type DownloadRequest struct {
	Results []classifier.Result `json:"results"`
}

type StatusResponse struct {
	Status   string              `json:"status"`
	Labels   []string            `json:"labels"`
	Model    string              `json:"model"`
	Provider string              `json:"provider"`
	Fallback string              `json:"fallback"`
	Usage    costtracker.Summary `json:"usage"`
}

func (h *APIHandler) ClassifyHandler(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		BadRequest(c, "No text provided")
		return
	}
	c.JSON(http.StatusOK, h.classifier.Classify(c.Request.Context(), text))
}

func (h *APIHandler) ClassifyBatchHandler(c *gin.Context) {
	var req ClassifyBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "No texts provided or invalid format")
		return
	}
	h.respondWithBatch(c, req.Texts, "batch")
}

func (h *APIHandler) ClassifyFileHandler(c *gin.Context) {
	if c.Request.ContentLength > h.opts.MaxUploadBytes {
		PayloadTooLarge(c, fmt.Sprintf("File exceeds the %d byte upload limit", h.opts.MaxUploadBytes))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			PayloadTooLarge(c, fmt.Sprintf("File exceeds the %d byte upload limit", h.opts.MaxUploadBytes))
			return
		}
		BadRequest(c, "No file provided")
		return
	}
	if fileHeader.Filename == "" {
		BadRequest(c, "No file selected")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		Internal(c, fmt.Sprintf("ClassifyFileHandler: failed to open upload: %v", err))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		Internal(c, fmt.Sprintf("ClassifyFileHandler: failed to read upload: %v", err))
		return
	}
	if textinput.IsLikelyBinary(content) {
		BadRequest(c, "File does not contain text")
		return
	}

	texts := textinput.ParseTexts(content)
	if len(texts) == 0 {
		BadRequest(c, "No valid texts found in file")
		return
	}
	h.respondWithBatch(c, texts, "file")
}

// respondWithBatch enforces the batch limits and writes {results, count}.
func (h *APIHandler) respondWithBatch(c *gin.Context, texts []string, kind string) {
	if len(texts) == 0 {
		BadRequest(c, "No texts provided or invalid format")
		return
	}
	if len(texts) > h.opts.MaxBatchSize {
		BadRequest(c, fmt.Sprintf("Maximum %d texts per %s", h.opts.MaxBatchSize, kind))
		return
	}
	out := h.classifier.ClassifyBatch(c.Request.Context(), texts)
	c.JSON(http.StatusOK, BatchResponse{Results: out, Count: len(out)})
}

func (h *APIHandler) StatusHandler(c *gin.Context) {
	st := h.classifier.Status()
	usage, err := h.opts.Usage.Summary(c.Request.Context())
	if err != nil {
		log.Warnf("StatusHandler: failed to read usage summary: %v", err)
	}
	c.JSON(http.StatusOK, StatusResponse{
		Status:   "ready",
		Labels:   st.Labels,
		Model:    st.Model,
		Provider: h.opts.Provider,
		Fallback: st.Fallback,
		Usage:    usage,
	})
}

func (h *APIHandler) DownloadResultsHandler(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Results) == 0 {
		BadRequest(c, "No results to download")
		return
	}
	data, err := results.Marshal(req.Results)
	if err != nil {
		Internal(c, fmt.Sprintf("DownloadResultsHandler: %v", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", results.DownloadFilename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
