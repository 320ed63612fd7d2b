// Package textinput turns uploaded or on-disk content into the list of texts
// a batch classification runs over.
package textinput

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

const maxBinaryCheckBytes = 512

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrBinaryContent is returned for content that does not look like text.
var ErrBinaryContent = errors.New("content appears to be binary")

// IsLikelyBinary reports whether the leading bytes contain a NUL.
func IsLikelyBinary(content []byte) bool {
	head := content
	if len(head) > maxBinaryCheckBytes {
		head = head[:maxBinaryCheckBytes]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// Clean strips a UTF-8 byte order mark and replaces invalid sequences with
// U+FFFD. src only labels the log line.
func Clean(content []byte, src string) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		log.WithField("source", src).Warn("Invalid UTF-8, replacing invalid chars")
		content = bytes.ToValidUTF8(content, []byte(string(utf8.RuneError)))
	}
	return string(content)
}

// ParseTexts splits content into texts. A JSON array yields one text per
// element, with non-string elements rendered as compact JSON. Any other JSON
// value yields the whole content as a single text. Anything else yields one
// text per non-empty trimmed line.
func ParseTexts(content []byte) []string {
	str := Clean(content, "input")
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return nil
	}

	if json.Valid([]byte(trimmed)) {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return []string{trimmed}
		}
		texts := make([]string, 0, len(items))
		for _, item := range items {
			texts = append(texts, elementText(item))
		}
		return texts
	}

	var texts []string
	for _, line := range strings.Split(str, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			texts = append(texts, line)
		}
	}
	return texts
}

func elementText(item json.RawMessage) string {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, item); err != nil {
		return string(item)
	}
	return compact.String()
}

// ReadFile loads path and parses it with ParseTexts.
func ReadFile(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input file '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input '%s' is a directory, not a file", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file '%s': %w", path, err)
	}
	if IsLikelyBinary(content) {
		return nil, fmt.Errorf("input file '%s': %w", path, ErrBinaryContent)
	}
	return ParseTexts(content), nil
}
