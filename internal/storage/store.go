package storage

import (
	"context"

	"github.com/google/uuid"

	"voxelbrain/internal/model"
)

// Store persists controller parameters and episode summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveParams(ctx context.Context, record model.ParamRecord) error
	GetParams(ctx context.Context, id string) (model.ParamRecord, bool, error)
	ListParams(ctx context.Context) ([]model.ParamRecord, error)
	SaveEpisode(ctx context.Context, summary model.EpisodeSummary) error
	GetEpisode(ctx context.Context, id string) (model.EpisodeSummary, bool, error)
	// ListEpisodes returns the episodes driven with the given parameter
	// record, oldest first. An empty paramsID lists every episode.
	ListEpisodes(ctx context.Context, paramsID string) ([]model.EpisodeSummary, error)
}

// NewRecordID returns a fresh identifier for a stored record.
func NewRecordID() string {
	return uuid.NewString()
}

// Versioned stamps the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}
