package storage

import (
	"errors"
	"testing"

	"voxelbrain/internal/model"
)

func TestParamsCodecRoundTrip(t *testing.T) {
	record := model.ParamRecord{
		VersionedRecord: Versioned(),
		ID:              "p1",
		Params:          []float64{1, 2, 3},
	}
	data, err := EncodeParams(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeParams(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "p1" || len(decoded.Params) != 3 || decoded.Params[2] != 3 {
		t.Fatalf("unexpected decoded record: %+v", decoded)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	data, err := EncodeParams(model.ParamRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion},
		ID:              "p1",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeParams(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}

	data, err = EncodeEpisode(model.EpisodeSummary{ID: "e1"})
	if err != nil {
		t.Fatalf("encode episode: %v", err)
	}
	if _, err := DecodeEpisode(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeParams([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
