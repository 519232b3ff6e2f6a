package scriptgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/storage"
	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// keyTimestampLayout timestamps artifact keys so regeneration never
// overwrites an earlier script.
const keyTimestampLayout = "20060102T150405"

// Metadata is the sidecar document uploaded next to each script. It is
// intentionally non-secret: target URL and username only, never a password.
type Metadata struct {
	Suite       string    `json:"suite"`
	CaseID      string    `json:"case_id"`
	CaseTitle   string    `json:"case_title"`
	StepCount   int       `json:"step_count"`
	GeneratedAt time.Time `json:"generated_at"`
	TargetURL   string    `json:"target_url"`
	Username    string    `json:"username,omitempty"`
}

// Materializer renders test cases through a Generator and persists the
// resulting scripts plus metadata sidecars in blob storage.
type Materializer struct {
	generator Generator
	blobs     storage.BlobStorage
	logger    logger.Logger

	// now is swapped in tests to pin artifact keys.
	now func() time.Time
}

func NewMaterializer(generator Generator, blobs storage.BlobStorage, log logger.Logger) *Materializer {
	return &Materializer{
		generator: generator,
		blobs:     blobs,
		logger:    log,
		now:       time.Now,
	}
}

// ScriptKey builds the blob-storage key for a case's script artifact.
func ScriptKey(suiteName, caseID, caseTitle string, generatedAt time.Time) string {
	return fmt.Sprintf("scripts/%s_%s_%s_%s.py",
		SafeTitle(suiteName), SafeTitle(caseID), SafeTitle(caseTitle),
		generatedAt.UTC().Format(keyTimestampLayout))
}

// Materialize generates the script for one case and uploads it together
// with its metadata sidecar (<key>.json). It returns the script key.
func (m *Materializer) Materialize(ctx context.Context, suiteName string, testCase suite.TestCase, target Target) (string, error) {
	script, err := m.generator.Generate(testCase, target)
	if err != nil {
		return "", fmt.Errorf("generating script for case %s: %w", testCase.ID, err)
	}

	generatedAt := m.now().UTC()
	key := ScriptKey(suiteName, testCase.ID, testCase.Title, generatedAt)

	if err := m.blobs.Upload(ctx, key, bytes.NewReader(script)); err != nil {
		return "", fmt.Errorf("uploading script %s: %w", key, err)
	}

	meta := Metadata{
		Suite:       suiteName,
		CaseID:      testCase.ID,
		CaseTitle:   testCase.Title,
		StepCount:   len(testCase.Steps),
		GeneratedAt: generatedAt,
		TargetURL:   target.TargetURL,
		Username:    target.Username,
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding metadata for %s: %w", key, err)
	}
	if err := m.blobs.Upload(ctx, key+".json", bytes.NewReader(metaJSON)); err != nil {
		return "", fmt.Errorf("uploading metadata %s.json: %w", key, err)
	}

	m.logger.Info(ctx, "materialized script", map[string]interface{}{
		"suite":   suiteName,
		"case_id": testCase.ID,
		"key":     key,
		"bytes":   len(script),
	})
	return key, nil
}

// MaterializeAll materializes every case of a suite and returns the case
// id to script key mapping. A failing case aborts the batch; callers decide
// whether to persist partial results.
func (m *Materializer) MaterializeAll(ctx context.Context, suiteName string, cases []suite.TestCase, target Target) (suite.Scripts, error) {
	scripts := suite.Scripts{}
	for _, tc := range cases {
		key, err := m.Materialize(ctx, suiteName, tc, target)
		if err != nil {
			return scripts, err
		}
		scripts[tc.ID] = key
	}
	return scripts, nil
}
