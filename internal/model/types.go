package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ParamRecord stores a controller parameter vector together with the
// configuration it belongs to.
type ParamRecord struct {
	VersionedRecord
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Config    string    `json:"config"`
	Params    []float64 `json:"params"`
	CreatedAt time.Time `json:"created_at"`
}

// EpisodeSummary records the outcome of one driven episode.
type EpisodeSummary struct {
	VersionedRecord
	ID            string    `json:"id"`
	ParamsID      string    `json:"params_id,omitempty"`
	Steps         int       `json:"steps"`
	DT            float64   `json:"dt"`
	MeanAbs       float64   `json:"mean_abs"`
	StdActuation  float64   `json:"std_actuation"`
	FinalActuate  []float64 `json:"final_actuation"`
	BrokenSignals int       `json:"broken_signals"`
	CreatedAt     time.Time `json:"created_at"`
}
