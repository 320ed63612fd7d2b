package apihandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textclassifier/internal/costtracker"
	"textclassifier/pkg/classifier"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeClassifier labels texts containing "?" as Inquiry and everything else as Other.
type fakeClassifier struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) classifier.Result {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return classifier.Result{Text: text, PredictedLabel: "Other", Error: "Empty text provided"}
	}
	label := "Other"
	if strings.Contains(text, "?") {
		label = "Inquiry"
	}
	confidence := 0.9
	return classifier.Result{Text: text, PredictedLabel: label, Confidence: &confidence}
}

func (f *fakeClassifier) ClassifyBatch(ctx context.Context, texts []string) []classifier.Result {
	out := make([]classifier.Result, len(texts))
	for i, t := range texts {
		out[i] = f.Classify(ctx, t)
	}
	return out
}

func (f *fakeClassifier) Status() classifier.Status {
	return classifier.Status{Labels: classifier.DefaultLabels(), Model: "gpt-3.5-turbo", Fallback: "Other"}
}

func newTestRouter(t *testing.T, opts Options) (*gin.Engine, *fakeClassifier) {
	t.Helper()
	fake := &fakeClassifier{}
	return NewRouter(NewAPIHandler(fake, opts)), fake
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Message
}

func TestClassifyHandler(t *testing.T) {
	router, fake := newTestRouter(t, Options{})

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantLabel  string
		wantMsg    string
	}{
		{"question", `{"text": "Where is my order?"}`, http.StatusOK, "Inquiry", ""},
		{"padded question", `{"text": "  Where is my order?\n"}`, http.StatusOK, "Inquiry", ""},
		{"blank text", `{"text": "   "}`, http.StatusBadRequest, "", "No text provided"},
		{"missing text", `{}`, http.StatusBadRequest, "", "No text provided"},
		{"malformed body", `{"text":`, http.StatusBadRequest, "", "Invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/classify", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus != http.StatusOK {
				assert.Contains(t, errorMessage(t, w), tc.wantMsg)
				return
			}
			var res classifier.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, tc.wantLabel, res.PredictedLabel)
			assert.Equal(t, "Where is my order?", res.Text)
		})
	}
	assert.Equal(t, 2, fake.calls, "rejected requests never reach the classifier")
}

func TestClassifyBatchHandler(t *testing.T) {
	router, fake := newTestRouter(t, Options{MaxBatchSize: 3})

	t.Run("ordered results", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/classify-batch", `{"texts": ["a?", "", "b"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp BatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 3, resp.Count)
		assert.Equal(t, "Inquiry", resp.Results[0].PredictedLabel)
		assert.Equal(t, "Empty text provided", resp.Results[1].Error)
		assert.Equal(t, "b", resp.Results[2].Text)
	})

	before := fake.calls
	for name, body := range map[string]string{
		"empty list":   `{"texts": []}`,
		"wrong type":   `{"texts": "abc"}`,
		"missing key":  `{}`,
		"over the cap": `{"texts": ["1", "2", "3", "4"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/classify-batch", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Equal(t, before, fake.calls)

	w := doJSON(router, http.MethodPost, "/api/classify-batch", `{"texts": ["1", "2", "3", "4"]}`)
	assert.Equal(t, "Maximum 3 texts per batch", errorMessage(t, w))
}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/classify-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestClassifyFileHandler(t *testing.T) {
	router, _ := newTestRouter(t, Options{MaxBatchSize: 3, MaxUploadBytes: 1024})

	testCases := []struct {
		name       string
		field      string
		content    []byte
		wantStatus int
		wantCount  int
		wantMsg    string
	}{
		{"lines", "file", []byte("hello?\n\nworld\n"), http.StatusOK, 2, ""},
		{"json array", "file", []byte(`["one", 2]`), http.StatusOK, 2, ""},
		{"blank file", "file", []byte("\n  \n"), http.StatusBadRequest, 0, "No valid texts found in file"},
		{"too many lines", "file", []byte("1\n2\n3\n4\n"), http.StatusBadRequest, 0, "Maximum 3 texts per file"},
		{"binary", "file", []byte{'a', 0, 'b'}, http.StatusBadRequest, 0, "File does not contain text"},
		{"wrong field", "upload", []byte("hello"), http.StatusBadRequest, 0, "No file provided"},
		{"too large", "file", bytes.Repeat([]byte("x"), 2048), http.StatusRequestEntityTooLarge, 0, "upload limit"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartUpload(t, tc.field, "texts.txt", tc.content))

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus != http.StatusOK {
				assert.Contains(t, errorMessage(t, w), tc.wantMsg)
				return
			}
			var resp BatchResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCount, resp.Count)
		})
	}
}

func TestStatusHandler(t *testing.T) {
	tracker := costtracker.New()
	require.NoError(t, tracker.RecordCost(context.Background(), costtracker.CostEvent{InputTokens: 10, OutputTokens: 2, AmountUSD: 0.25}))
	router, _ := newTestRouter(t, Options{Provider: "openai", Usage: tracker})

	w := doJSON(router, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, "gpt-3.5-turbo", resp.Model)
	assert.Equal(t, "Other", resp.Fallback)
	assert.Equal(t, []string{"Complaint", "Inquiry", "Feedback", "Other"}, resp.Labels)
	assert.Equal(t, 1, resp.Usage.Calls)
	assert.InDelta(t, 0.25, resp.Usage.TotalUSD, 1e-9)
}

func TestDownloadResultsHandler(t *testing.T) {
	router, _ := newTestRouter(t, Options{})

	w := doJSON(router, http.MethodPost, "/api/download-results",
		`{"results": [{"text": "a <b>", "predicted_label": "Other", "error": "Empty text provided"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="classification_results.json"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), `"text": "a <b>"`)

	for _, body := range []string{`{"results": []}`, `{}`, `not json`} {
		w := doJSON(router, http.MethodPost, "/api/download-results", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "No results to download", errorMessage(t, w))
	}
}

func TestHealthAndNoRoute(t *testing.T) {
	router, _ := newTestRouter(t, Options{})

	w := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}
