package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"voxelbrain/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeParams(r model.ParamRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeParams(data []byte) (model.ParamRecord, error) {
	var record model.ParamRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.ParamRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.ParamRecord{}, err
	}
	return record, nil
}

func EncodeEpisode(s model.EpisodeSummary) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeEpisode(data []byte) (model.EpisodeSummary, error) {
	var summary model.EpisodeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.EpisodeSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.EpisodeSummary{}, err
	}
	return summary, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
