package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"voxelbrain/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	params      map[string]model.ParamRecord
	episodes    map[string]model.EpisodeSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.params = make(map[string]model.ParamRecord)
	s.episodes = make(map[string]model.EpisodeSummary)
	return nil
}

func (s *MemoryStore) SaveParams(_ context.Context, record model.ParamRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	record.Params = append([]float64(nil), record.Params...)
	s.params[record.ID] = record
	return nil
}

func (s *MemoryStore) GetParams(_ context.Context, id string) (model.ParamRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.ParamRecord{}, false, errNotInitialized
	}
	record, ok := s.params[id]
	record.Params = append([]float64(nil), record.Params...)
	return record, ok, nil
}

func (s *MemoryStore) ListParams(_ context.Context) ([]model.ParamRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]model.ParamRecord, 0, len(s.params))
	for _, record := range s.params {
		out = append(out, record)
	}
	sortParams(out)
	return out, nil
}

func (s *MemoryStore) SaveEpisode(_ context.Context, summary model.EpisodeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.episodes[summary.ID] = summary
	return nil
}

func (s *MemoryStore) GetEpisode(_ context.Context, id string) (model.EpisodeSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.EpisodeSummary{}, false, errNotInitialized
	}
	summary, ok := s.episodes[id]
	return summary, ok, nil
}

func (s *MemoryStore) ListEpisodes(_ context.Context, paramsID string) ([]model.EpisodeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	out := make([]model.EpisodeSummary, 0)
	for _, summary := range s.episodes {
		if paramsID == "" || summary.ParamsID == paramsID {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func sortParams(records []model.ParamRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
