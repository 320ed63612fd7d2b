// Package results persists and renders classification results.
package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"textclassifier/pkg/classifier"
)

// DownloadFilename is the attachment name offered by the HTTP API.
const DownloadFilename = "classification_results.json"

// maxTableText is the number of runes of each text shown in a table row.
const maxTableText = 60

// Marshal renders results as an indented JSON array without HTML escaping.
func Marshal(results []classifier.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes results to w as an indented JSON array.
func Encode(w io.Writer, results []classifier.Result) error {
	if results == nil {
		results = []classifier.Result{}
	}
	return encodeJSON(w, results)
}

// EncodeOne writes a single result as an indented JSON object.
func EncodeOne(w io.Writer, result classifier.Result) error {
	return encodeJSON(w, result)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// WriteFile atomically replaces path with the encoded results, creating the
// parent directory when needed.
func WriteFile(path string, results []classifier.Result) error {
	data, err := Marshal(results)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp results file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp results file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("chmod temp results file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp results file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("replace results file %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a results file written by WriteFile.
func ReadFile(path string) ([]classifier.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file %s: %w", path, err)
	}
	var out []classifier.Result
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode results file %s: %w", path, err)
	}
	return out, nil
}

// PathFor returns the output path for a background job.
func PathFor(dir, jobID string) string {
	return filepath.Join(dir, jobID+".json")
}

// RenderTable writes results to w as a bordered table.
func RenderTable(w io.Writer, results []classifier.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Text", "Label", "Confidence", "Error"})
	table.SetBorder(true)
	table.SetRowLine(true)
	table.SetAutoWrapText(false)

	for i, r := range results {
		confidence := "-"
		if r.Confidence != nil {
			confidence = strconv.FormatFloat(*r.Confidence, 'f', 2, 64)
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			truncate(r.Text, maxTableText),
			r.PredictedLabel,
			confidence,
			r.Error,
		})
	}
	table.Render()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
