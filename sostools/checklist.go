package sostools

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// checklistFile is the on-disk shape, matching the backend's checklist
// payload: {"checklist": [...], "checkedItems": [...]}.
type checklistFile struct {
	Checklist    []string `json:"checklist"`
	CheckedItems []bool   `json:"checkedItems"`
}

// ChecklistStore is a file-backed emergency checklist. Appends keep the
// item list and the checked-state list in step.
type ChecklistStore struct {
	mu   sync.Mutex
	path string
}

// NewChecklistStore creates a store persisting to the given path. The file
// is created on first append.
func NewChecklistStore(path string) *ChecklistStore {
	return &ChecklistStore{path: path}
}

// Append adds one unchecked item. Blank items are rejected.
func (s *ChecklistStore) Append(item string) error {
	if strings.TrimSpace(item) == "" {
		return errors.New("checklist item must not be blank")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}
	list.Checklist = append(list.Checklist, item)
	list.CheckedItems = append(list.CheckedItems, false)
	return s.save(list)
}

// Items returns the current checklist entries.
func (s *ChecklistStore) Items() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	return list.Checklist, nil
}

func (s *ChecklistStore) load() (checklistFile, error) {
	var list checklistFile
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return list, nil
	}
	if err != nil {
		return list, fmt.Errorf("read checklist: %w", err)
	}
	if err := json.Unmarshal(data, &list); err != nil {
		return list, fmt.Errorf("parse checklist: %w", err)
	}
	return list, nil
}

func (s *ChecklistStore) save(list checklistFile) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write checklist: %w", err)
	}
	return nil
}
