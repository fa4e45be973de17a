package episode

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"voxelbrain/internal/model"
)

const (
	summaryFile    = "summary.json"
	actuationsFile = "actuations.csv"
)

// WriteArtifacts stores the summary and the per-round actuation trace of r
// under baseDir/<episode id> and returns that directory.
func WriteArtifacts(baseDir string, r Result) (string, error) {
	if r.ID == "" {
		return "", fmt.Errorf("episode id is required")
	}

	dir := filepath.Join(baseDir, r.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, summaryFile), r.Summary()); err != nil {
		return "", err
	}
	if err := writeActuations(filepath.Join(dir, actuationsFile), r); err != nil {
		return "", err
	}
	return dir, nil
}

// ReadSummary loads the summary written by WriteArtifacts.
func ReadSummary(baseDir, id string) (model.EpisodeSummary, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, id, summaryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.EpisodeSummary{}, false, nil
		}
		return model.EpisodeSummary{}, false, err
	}
	var summary model.EpisodeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.EpisodeSummary{}, false, err
	}
	return summary, true, nil
}

func writeActuations(path string, r Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := make([]string, 0, len(r.Cells)+1)
	header = append(header, "t")
	for _, c := range r.Cells {
		header = append(header, fmt.Sprintf("cell_%d_%d", c.X, c.Y))
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for step, row := range r.Actuations {
		record := make([]string, 0, len(row)+1)
		record = append(record, strconv.FormatFloat(float64(step)*r.DT, 'f', -1, 64))
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
