package handlers

import (
	"fmt"
	"sync"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/services"
)

// ProjectStore caches loaded document models and serializes access to
// each one. The document core is not safe for concurrent use, so every
// request touching a project runs under that project's mutex.
type ProjectStore struct {
	mu      sync.Mutex
	entries map[string]*projectEntry
}

type projectEntry struct {
	mu      sync.Mutex
	project *services.Project
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{entries: map[string]*projectEntry{}}
}

func (s *ProjectStore) entry(id string) *projectEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		entry = &projectEntry{}
		s.entries[id] = entry
	}
	return entry
}

// View runs fn with the record's document loaded, without writing the
// model back.
func (s *ProjectStore) View(record *core.Record, fn func(*services.Project) error) error {
	entry := s.entry(record.Id)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.load(record); err != nil {
		return err
	}
	return fn(entry.project)
}

// Mutate runs fn and, when it succeeds, persists the resulting model
// into the record.
func (s *ProjectStore) Mutate(app *pocketbase.PocketBase, record *core.Record, fn func(*services.Project) error) error {
	entry := s.entry(record.Id)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := entry.load(record); err != nil {
		return err
	}
	if err := fn(entry.project); err != nil {
		return err
	}

	model, err := entry.project.Model()
	if err != nil {
		return fmt.Errorf("store: serialize project %s: %w", record.Id, err)
	}
	record.Set("model", string(model))
	if err := app.Save(record); err != nil {
		return fmt.Errorf("store: save project %s: %w", record.Id, err)
	}
	return nil
}

// Evict drops the cached document, if any. Called when the project
// record is deleted.
func (s *ProjectStore) Evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// load materializes the document from the record's model field on first
// access. A missing model means a freshly created project.
func (e *projectEntry) load(record *core.Record) error {
	if e.project != nil {
		return nil
	}
	model := record.GetString("model")
	if model == "" {
		e.project = services.NewProject()
		e.project.Update()
		return nil
	}
	project, err := services.LoadProject([]byte(model))
	if err != nil {
		return fmt.Errorf("store: load project %s: %w", record.Id, err)
	}
	e.project = project
	return nil
}
