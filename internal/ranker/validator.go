package ranker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// maxRowsChecked bounds how many dataset rows the validator inspects.
const maxRowsChecked = 100

// maxRowBytes bounds a single JSONL line; sized for two wide embedding
// vectors plus metrics.
const maxRowBytes = 4 << 20

// ValidationStats summarizes what the validator saw.
type ValidationStats struct {
	MetricsDim   int `json:"metrics_dim"`
	EmbeddingDim int `json:"embedding_dim"`
	RowCount     int `json:"row_count"`
	RowsChecked  int `json:"rows_checked"`
}

// Report is the outcome of a dataset validation. Findings are data, never
// errors: a structurally broken dataset yields Valid=false with issues, not
// a failure of the validation call itself.
type Report struct {
	Valid  bool            `json:"valid"`
	Issues []string        `json:"issues"`
	Stats  ValidationStats `json:"stats"`
}

// ValidateDataset independently re-checks an exported dataset/manifest pair
// for structural integrity. It has no dependency on live pipeline state, so
// it works against datasets produced elsewhere. It never returns an error;
// unreadable or unparsable files are reported as issues.
func ValidateDataset(datasetPath, metadataPath string) *Report {
	report := &Report{Issues: []string{}}

	manifestJSON, err := os.ReadFile(metadataPath)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("cannot read manifest: %v", err))
		return report
	}
	var manifest DatasetMetadata
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("cannot parse manifest: %v", err))
		return report
	}

	report.Stats.MetricsDim = manifest.MetricsDim
	report.Stats.EmbeddingDim = manifest.EmbeddingDim

	if manifest.MetricsDim != len(manifest.FeatureNames) {
		report.Issues = append(report.Issues,
			fmt.Sprintf("manifest metricsDim %d does not match featureNames length %d",
				manifest.MetricsDim, len(manifest.FeatureNames)))
	}

	f, err := os.Open(datasetPath)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("cannot read dataset: %v", err))
		return report
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRowBytes)

	rowNum := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rowNum++
		if rowNum > maxRowsChecked {
			continue // keep counting rows, stop inspecting them
		}
		report.Stats.RowsChecked++

		var row DatasetRow
		if err := json.Unmarshal(line, &row); err != nil {
			report.Issues = append(report.Issues, fmt.Sprintf("row %d: unparsable: %v", rowNum, err))
			continue
		}
		if len(row.AMetrics) != manifest.MetricsDim {
			report.Issues = append(report.Issues,
				fmt.Sprintf("row %d: a_metrics has %d values, want %d", rowNum, len(row.AMetrics), manifest.MetricsDim))
		}
		if len(row.BMetrics) != manifest.MetricsDim {
			report.Issues = append(report.Issues,
				fmt.Sprintf("row %d: b_metrics has %d values, want %d", rowNum, len(row.BMetrics), manifest.MetricsDim))
		}
		if len(row.AEmbedding) != manifest.EmbeddingDim {
			report.Issues = append(report.Issues,
				fmt.Sprintf("row %d: a_embedding has %d values, want %d", rowNum, len(row.AEmbedding), manifest.EmbeddingDim))
		}
		if len(row.BEmbedding) != manifest.EmbeddingDim {
			report.Issues = append(report.Issues,
				fmt.Sprintf("row %d: b_embedding has %d values, want %d", rowNum, len(row.BEmbedding), manifest.EmbeddingDim))
		}
		if row.Label != LabelBPreferred && row.Label != LabelEqual && row.Label != LabelAPreferred {
			report.Issues = append(report.Issues,
				fmt.Sprintf("row %d: label %d outside {-1, 0, 1}", rowNum, row.Label))
		}
	}
	if err := scanner.Err(); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("dataset read failed: %v", err))
		return report
	}

	report.Stats.RowCount = rowNum
	report.Valid = len(report.Issues) == 0
	return report
}
