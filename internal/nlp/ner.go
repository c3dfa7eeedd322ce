// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nlp recognizes biomedical entity mentions in profile text using a
// transformer token-classification model run through ONNX.
// Implements: prd006-web (R4.1-R4.3);
//
//	docs/ARCHITECTURE.md § Entity Recognition.
package nlp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/pdiddy/compound-engine/pkg/types"
)

const (
	// defaultModelName is an NER model distilled for entity recognition,
	// published in ONNX form so the pure-Go backend can run it.
	defaultModelName = "KnightsAnalytics/distilbert-NER"
	defaultModelDir  = "./models"
)

// Entity is one recognized mention with its position in the source text.
type Entity struct {
	// Label is the entity class with the BIO prefix stripped (e.g. "MISC").
	Label string `json:"label"`

	// Text is the mention as it appears in the input.
	Text string `json:"text"`

	// Score is the model confidence for this mention.
	Score float64 `json:"score"`

	// Start and End are byte offsets into the input text.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Annotator holds a loaded recognition pipeline. The zero value is unusable;
// construct with NewAnnotator and release with Close.
type Annotator struct {
	session *hugot.Session
	run     func(text string) ([]Entity, error)
}

// NewAnnotator prepares a token-classification pipeline for the model named
// by cfg, downloading the model on first use. Recognition is optional
// decoration: when this fails, callers degrade to undecorated text rather
// than failing the profile.
func NewAnnotator(cfg types.NLPConfig) (*Annotator, error) {
	modelPath, err := PrepareModel(cfg)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("creating inference session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "entity-recognition",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	ner, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("creating recognition pipeline: %w (cleanup: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("creating recognition pipeline: %w", err)
	}

	a := &Annotator{session: session}
	a.run = func(text string) ([]Entity, error) {
		result, err := ner.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("running entity recognition: %w", err)
		}
		if len(result.Entities) == 0 {
			return nil, nil
		}

		out := make([]Entity, 0, len(result.Entities[0]))
		for _, e := range result.Entities[0] {
			out = append(out, Entity{
				Label: normalizeLabel(e.Entity),
				Text:  strings.TrimSpace(e.Word),
				Score: float64(e.Score),
				Start: int(e.Start),
				End:   int(e.End),
			})
		}
		return out, nil
	}
	return a, nil
}

// Entities runs recognition over text and returns the mentions found, in
// order of appearance. An empty input yields no entities without touching
// the model.
func (a *Annotator) Entities(text string) ([]Entity, error) {
	if text == "" {
		return nil, nil
	}
	return a.run(text)
}

// Close releases the inference session.
func (a *Annotator) Close() error {
	if a.session == nil {
		return nil
	}
	return a.session.Destroy()
}

// PrepareModel ensures the configured model exists under cfg.ModelDir,
// downloading it from the Hugging Face hub on first use, and returns its
// local path.
func PrepareModel(cfg types.NLPConfig) (string, error) {
	modelDir := cfg.ModelDir
	if modelDir == "" {
		modelDir = defaultModelDir
	}
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = defaultModelName
	}

	// Downloaded models are stored under the hub name with slashes flattened.
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	}

	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return "", fmt.Errorf("creating model directory: %w", err)
	}
	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "model.onnx"
	path, err := hugot.DownloadModel(modelName, modelDir, opts)
	if err != nil {
		return "", fmt.Errorf("downloading model %s: %w", modelName, err)
	}
	return path, nil
}

// normalizeLabel strips the BIO tagging prefix ("B-" begins a mention,
// "I-" continues one) so callers see bare class labels.
func normalizeLabel(label string) string {
	if strings.HasPrefix(label, "B-") || strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
