package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// ClassificationDocument is the optional JSON or YAML file that carries the
// label set and prompt template.
type ClassificationDocument struct {
	Labels         []string `mapstructure:"labels"`
	PromptTemplate string   `mapstructure:"prompt_template"`
}

// LoadClassificationDocument reads the document at path. A missing file is
// not an error: a warning is logged and nil is returned so defaults apply.
func LoadClassificationDocument(path string) (*ClassificationDocument, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.WithField("path", path).Warn("Classifier config file not found, using defaults")
			return nil, nil
		}
		return nil, fmt.Errorf("stat classifier config %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading classifier config %s: %w", path, err)
	}

	var doc ClassificationDocument
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("error decoding classifier config %s: %w", path, err)
	}
	return &doc, nil
}

// Classification is the resolved label set and template the engine runs with.
// Nil Labels and an empty PromptTemplate mean "use the built-in defaults".
type Classification struct {
	Labels         []string
	PromptTemplate string
}

// ResolveClassification merges the classification sources. Labels come from
// --labels, then the document, then config.yaml. The template comes from the
// document, then classifier.prompt_template_file, then classifier.prompt_template.
func (c *Config) ResolveClassification() (Classification, error) {
	doc, err := LoadClassificationDocument(c.Classifier.ConfigFile)
	if err != nil {
		return Classification{}, err
	}
	if doc == nil {
		doc = &ClassificationDocument{}
	}

	var out Classification
	switch {
	case len(cleanLabels(c.Classifier.LabelOverride)) > 0:
		out.Labels = cleanLabels(c.Classifier.LabelOverride)
	case len(doc.Labels) > 0:
		out.Labels = doc.Labels
	case len(c.Classifier.Labels) > 0:
		out.Labels = c.Classifier.Labels
	}

	switch {
	case strings.TrimSpace(doc.PromptTemplate) != "":
		out.PromptTemplate = doc.PromptTemplate
	case c.Classifier.PromptTemplateFile != "":
		content, err := LoadPromptContent(c.Classifier.PromptTemplateFile)
		if err != nil {
			return Classification{}, err
		}
		out.PromptTemplate = content
	default:
		out.PromptTemplate = c.Classifier.PromptTemplate
	}
	return out, nil
}

// cleanLabels trims a comma-split flag value and drops empty entries.
func cleanLabels(raw []string) []string {
	var labels []string
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
