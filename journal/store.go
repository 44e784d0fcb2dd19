package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileStore stores journals as files: one directory per run under
// <base>/runs/<runID> containing meta.json and journal.json. Active runs
// are buffered in memory and flushed on EndRun.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
	active  map[string]*Journal
}

// StoreConfig holds configuration for journal storage.
type StoreConfig struct {
	BaseDir string
}

// NewFileStore creates a file-based journal store.
func NewFileStore(config StoreConfig) (*FileStore, error) {
	runsDir := filepath.Join(config.BaseDir, "runs")
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{
		baseDir: config.BaseDir,
		active:  make(map[string]*Journal),
	}, nil
}

// StartRun begins a new journal.
func (s *FileStore) StartRun(runID string, meta RunMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[runID]; exists {
		return ErrRunAlreadyExists
	}
	if _, err := os.Stat(s.runDir(runID)); err == nil {
		return ErrRunAlreadyExists
	}
	if err := os.MkdirAll(s.runDir(runID), 0755); err != nil {
		return err
	}

	journal := &Journal{
		RunID: runID,
		Meta: Meta{
			RunID:     runID,
			Kind:      meta.Kind,
			FlowID:    meta.FlowID,
			ItemID:    meta.ItemID,
			Input:     meta.Input,
			Status:    RunRunning,
			StartedAt: time.Now(),
		},
		Entries: make([]Entry, 0),
	}
	if err := s.writeMeta(runID, &journal.Meta); err != nil {
		return err
	}

	s.active[runID] = journal
	return nil
}

// Record appends an entry to an active run.
func (s *FileStore) Record(runID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, ok := s.active[runID]
	if !ok {
		return ErrRunNotStarted
	}

	entry.ID = len(journal.Entries) + 1
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	journal.Entries = append(journal.Entries, entry)
	journal.Meta.EntryCount = len(journal.Entries)

	if entry.Kind == EntryTurn && entry.Turn != nil {
		journal.Meta.TokensIn += entry.Turn.TokensIn
		journal.Meta.TokensOut += entry.Turn.TokensOut
	}
	return nil
}

// EndRun completes a journal and flushes it to disk.
func (s *FileStore) EndRun(runID string, status RunStatus) error {
	return s.finish(runID, status, "")
}

// EndRunWithError completes a journal as failed, recording the error.
func (s *FileStore) EndRunWithError(runID string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return s.finish(runID, RunFailed, message)
}

func (s *FileStore) finish(runID string, status RunStatus, errMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	journal, ok := s.active[runID]
	if !ok {
		return ErrRunNotStarted
	}

	journal.Meta.Status = status
	journal.Meta.EndedAt = time.Now()
	journal.Meta.Error = errMessage

	if err := s.writeJournal(runID, journal); err != nil {
		return err
	}
	if err := s.writeMeta(runID, &journal.Meta); err != nil {
		return err
	}

	delete(s.active, runID)
	return nil
}

// Load retrieves a stored journal. Active runs are returned from memory.
func (s *FileStore) Load(runID string) (*Journal, error) {
	s.mu.RLock()
	if journal, ok := s.active[runID]; ok {
		defer s.mu.RUnlock()
		copied := *journal
		copied.Entries = append([]Entry(nil), journal.Entries...)
		return &copied, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "journal.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	var journal Journal
	if err := json.Unmarshal(data, &journal); err != nil {
		return nil, fmt.Errorf("parse journal %s: %w", runID, err)
	}
	return &journal, nil
}

// LoadMeta retrieves a run's metadata.
func (s *FileStore) LoadMeta(runID string) (*Meta, error) {
	s.mu.RLock()
	if journal, ok := s.active[runID]; ok {
		defer s.mu.RUnlock()
		meta := journal.Meta
		return &meta, nil
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "meta.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse meta %s: %w", runID, err)
	}
	return &meta, nil
}

// List returns stored run metadata matching the filter, newest first.
func (s *FileStore) List(filter ListFilter) ([]Meta, error) {
	runsDir := filepath.Join(s.baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var metas []Meta
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.LoadMeta(entry.Name())
		if err != nil {
			continue
		}
		if !matchesFilter(*meta, filter) {
			continue
		}
		metas = append(metas, *meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].StartedAt.After(metas[j].StartedAt)
	})

	if filter.Limit > 0 && len(metas) > filter.Limit {
		metas = metas[:filter.Limit]
	}
	return metas, nil
}

// Delete removes a stored journal.
func (s *FileStore) Delete(runID string) error {
	s.mu.Lock()
	delete(s.active, runID)
	s.mu.Unlock()
	return os.RemoveAll(s.runDir(runID))
}

func matchesFilter(meta Meta, filter ListFilter) bool {
	if filter.Kind != "" && meta.Kind != filter.Kind {
		return false
	}
	if filter.FlowID != "" && meta.FlowID != filter.FlowID {
		return false
	}
	if filter.ItemID != "" && meta.ItemID != filter.ItemID {
		return false
	}
	if filter.Status != "" && meta.Status != filter.Status {
		return false
	}
	if !filter.After.IsZero() && meta.StartedAt.Before(filter.After) {
		return false
	}
	if !filter.Before.IsZero() && meta.StartedAt.After(filter.Before) {
		return false
	}
	return true
}

func (s *FileStore) runDir(runID string) string {
	return filepath.Join(s.baseDir, "runs", runID)
}

func (s *FileStore) writeMeta(runID string, meta *Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.runDir(runID), "meta.json"), data, 0644)
}

func (s *FileStore) writeJournal(runID string, journal *Journal) error {
	data, err := json.MarshalIndent(journal, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.runDir(runID), "journal.json"), data, 0644)
}
