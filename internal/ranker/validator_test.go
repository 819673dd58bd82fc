package ranker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestDataset writes a manifest and dataset with the given contents and
// returns their paths.
func writeTestDataset(t *testing.T, manifest, dataset string) (datasetPath, metadataPath string) {
	t.Helper()
	dir := t.TempDir()
	datasetPath = filepath.Join(dir, "dataset_github.jsonl")
	metadataPath = filepath.Join(dir, "dataset_github.manifest.json")
	if err := os.WriteFile(metadataPath, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(datasetPath, []byte(dataset), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return datasetPath, metadataPath
}

const testManifest = `{
  "version": "1.0",
  "featureNames": ["clarity", "impact"],
  "embeddingModel": "test-model",
  "embeddingDim": 2,
  "metricsDim": 2,
  "platform": "github",
  "datasetHash": "abc"
}`

func validRow() string {
	return `{"a_metrics":[0.9,0.8],"b_metrics":[0.2,0.3],"a_embedding":[0.1,0.2],"b_embedding":[0,0],"label":1,"reason_tags":[],"source":"benchmark"}`
}

func TestValidateDatasetValid(t *testing.T) {
	datasetPath, metadataPath := writeTestDataset(t, testManifest, validRow()+"\n"+validRow()+"\n")

	report := ValidateDataset(datasetPath, metadataPath)
	if !report.Valid {
		t.Errorf("Valid = false, issues: %v", report.Issues)
	}
	if report.Stats.RowCount != 2 || report.Stats.RowsChecked != 2 {
		t.Errorf("stats = %+v, want 2 rows counted and checked", report.Stats)
	}
}

func TestValidateDatasetIssues(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		dataset  string
		wantHint string
	}{
		{
			name:     "metrics dimension mismatch",
			manifest: testManifest,
			dataset:  `{"a_metrics":[0.9],"b_metrics":[0.2,0.3],"a_embedding":[0.1,0.2],"b_embedding":[0,0],"label":1}` + "\n",
			wantHint: "a_metrics has 1 values",
		},
		{
			name:     "embedding dimension mismatch",
			manifest: testManifest,
			dataset:  `{"a_metrics":[0.9,0.8],"b_metrics":[0.2,0.3],"a_embedding":[0.1],"b_embedding":[0,0],"label":1}` + "\n",
			wantHint: "a_embedding has 1 values",
		},
		{
			name:     "label out of range",
			manifest: testManifest,
			dataset:  `{"a_metrics":[0.9,0.8],"b_metrics":[0.2,0.3],"a_embedding":[0.1,0.2],"b_embedding":[0,0],"label":2}` + "\n",
			wantHint: "label 2 outside",
		},
		{
			name:     "unparsable row",
			manifest: testManifest,
			dataset:  `not json at all` + "\n",
			wantHint: "unparsable",
		},
		{
			name: "inconsistent manifest dims",
			manifest: `{
  "featureNames": ["clarity", "impact", "relevance"],
  "embeddingDim": 2,
  "metricsDim": 2
}`,
			dataset:  validRow() + "\n",
			wantHint: "does not match featureNames length",
		},
		{
			name:     "unparsable manifest",
			manifest: `{broken`,
			dataset:  validRow() + "\n",
			wantHint: "cannot parse manifest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			datasetPath, metadataPath := writeTestDataset(t, tt.manifest, tt.dataset)
			report := ValidateDataset(datasetPath, metadataPath)
			if report.Valid {
				t.Fatal("Valid = true, want false")
			}
			found := false
			for _, issue := range report.Issues {
				if strings.Contains(issue, tt.wantHint) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("issues %v do not mention %q", report.Issues, tt.wantHint)
			}
		})
	}
}

func TestValidateDatasetMissingFiles(t *testing.T) {
	t.Run("missing manifest", func(t *testing.T) {
		report := ValidateDataset("/nonexistent/data.jsonl", "/nonexistent/manifest.json")
		if report.Valid {
			t.Error("Valid = true for missing manifest")
		}
		if len(report.Issues) == 0 || !strings.Contains(report.Issues[0], "cannot read manifest") {
			t.Errorf("issues = %v, want a manifest read issue", report.Issues)
		}
	})

	t.Run("missing dataset", func(t *testing.T) {
		_, metadataPath := writeTestDataset(t, testManifest, "")
		report := ValidateDataset("/nonexistent/data.jsonl", metadataPath)
		if report.Valid {
			t.Error("Valid = true for missing dataset")
		}
		found := false
		for _, issue := range report.Issues {
			if strings.Contains(issue, "cannot read dataset") {
				found = true
			}
		}
		if !found {
			t.Errorf("issues = %v, want a dataset read issue", report.Issues)
		}
	})
}

func TestValidateDatasetCapsInspection(t *testing.T) {
	rows := make([]string, 0, maxRowsChecked+20)
	for i := 0; i < maxRowsChecked+20; i++ {
		rows = append(rows, validRow())
	}
	datasetPath, metadataPath := writeTestDataset(t, testManifest, strings.Join(rows, "\n")+"\n")

	report := ValidateDataset(datasetPath, metadataPath)
	if !report.Valid {
		t.Errorf("Valid = false, issues: %v", report.Issues)
	}
	if report.Stats.RowsChecked != maxRowsChecked {
		t.Errorf("RowsChecked = %d, want %d", report.Stats.RowsChecked, maxRowsChecked)
	}
	if report.Stats.RowCount != maxRowsChecked+20 {
		t.Errorf("RowCount = %d, want %d", report.Stats.RowCount, maxRowsChecked+20)
	}
}
