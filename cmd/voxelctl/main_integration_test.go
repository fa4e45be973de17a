//go:build sqlite

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"voxelbrain/internal/model"
)

func TestSaveShowAndRunStoredParamsSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "voxelbrain.db")
	common := []string{"--store", "sqlite", "--db-path", dbPath, "--log-level", "error"}

	var out bytes.Buffer
	if err := run(ctx, append([]string{"save-params", "--name", "biped"}, common...), &out); err != nil {
		t.Fatalf("save-params: %v", err)
	}
	line := strings.TrimSpace(out.String())
	fields := strings.Fields(strings.TrimPrefix(line, "saved params "))
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "id=") {
		t.Fatalf("unexpected save output: %q", line)
	}
	id := strings.TrimPrefix(fields[0], "id=")

	out.Reset()
	if err := run(ctx, append([]string{"show-params", "--id", id}, common...), &out); err != nil {
		t.Fatalf("show-params: %v", err)
	}
	var record model.ParamRecord
	if err := json.Unmarshal(out.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Name != "biped" || len(record.Params) == 0 {
		t.Fatalf("unexpected record: %+v", record)
	}

	out.Reset()
	if err := run(ctx, append([]string{"run", "--params-id", id, "--steps", "4", "--save", "--json"}, common...), &out); err != nil {
		t.Fatalf("run with stored params: %v", err)
	}
	var summary model.EpisodeSummary
	if err := json.Unmarshal(out.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ParamsID != id {
		t.Fatalf("expected summary linked to %s, got %q", id, summary.ParamsID)
	}

	out.Reset()
	if err := run(ctx, append([]string{"episodes", "--params-id", id, "--json"}, common...), &out); err != nil {
		t.Fatalf("episodes: %v", err)
	}
	var episodes []model.EpisodeSummary
	if err := json.Unmarshal(out.Bytes(), &episodes); err != nil {
		t.Fatalf("decode episodes: %v", err)
	}
	if len(episodes) != 1 || episodes[0].ID != summary.ID {
		t.Fatalf("unexpected episodes for %s: %+v", id, episodes)
	}
}
