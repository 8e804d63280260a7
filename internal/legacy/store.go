// Package legacy reads and writes the JSON data directory used by the first
// version of the planner: one users.json with every member's stars and one
// <name>_tasks.json per member.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"household-planner/internal/model"
)

const usersFile = "users.json"

// ErrMemberNotFound is returned when users.json has no entry for a name.
var ErrMemberNotFound = errors.New("member not found")

type userRecord struct {
	Stars          int               `json:"stars"`
	StarHistory    []model.StarEntry `json:"star_history"`
	ProfilePicture *string           `json:"profile_picture"`
}

// Store is a directory of JSON files. Missing or corrupt files read as empty.
type Store struct {
	dir    string
	logger zerolog.Logger
	// mu serialises users.json read-modify-write cycles.
	mu sync.Mutex
}

func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %q: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger.With().Str("component", "legacy").Logger()}, nil
}

// Tasks exposes the store through the task collection contract.
func (s *Store) Tasks() *TaskFiles { return &TaskFiles{store: s} }

// Profiles exposes the store through the star profile contract.
func (s *Store) Profiles() *ProfileFile { return &ProfileFile{store: s} }

func (s *Store) taskPath(member string) string {
	return filepath.Join(s.dir, strings.ToLower(member)+"_tasks.json")
}

// ListNames returns members in users.json order.
func (s *Store) ListNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, _ := s.readUsers()
	return names, nil
}

// Add registers a member with a zero balance and an empty task file.
func (s *Store) Add(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, records := s.readUsers()
	if _, ok := records[name]; !ok {
		names = append(names, name)
		records[name] = userRecord{StarHistory: []model.StarEntry{}}
	}
	if err := s.writeUsers(names, records); err != nil {
		return err
	}
	if _, err := os.Stat(s.taskPath(name)); errors.Is(err, os.ErrNotExist) {
		return writeJSONFile(s.taskPath(name), []model.Task{})
	}
	return nil
}

// Remove drops a member from users.json and deletes their task file.
func (s *Store) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, records := s.readUsers()
	if _, ok := records[name]; !ok {
		return ErrMemberNotFound
	}
	delete(records, name)
	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	if err := s.writeUsers(kept, records); err != nil {
		return err
	}
	if err := os.Remove(s.taskPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove task file: %w", err)
	}
	return nil
}

// readUsers returns member names in file order and their records.
func (s *Store) readUsers() ([]string, map[string]userRecord) {
	records := make(map[string]userRecord)
	data, err := os.ReadFile(filepath.Join(s.dir, usersFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Msg("read users file")
		}
		return nil, records
	}

	names, err := decodeOrdered(data, records)
	if err != nil {
		s.logger.Warn().Err(err).Msg("users file is corrupt, treating as empty")
		return nil, make(map[string]userRecord)
	}
	return names, records
}

func (s *Store) writeUsers(names []string, records map[string]userRecord) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, name := range names {
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		value, err := json.MarshalIndent(records[name], "    ", "    ")
		if err != nil {
			return fmt.Errorf("encode member %s: %w", name, err)
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
	}
	buf.WriteString("\n}\n")
	return writeFileAtomic(filepath.Join(s.dir, usersFile), buf.Bytes())
}

// decodeOrdered decodes a JSON object of records, keeping key order.
func decodeOrdered(data []byte, into map[string]userRecord) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("users file: expected object")
	}
	var names []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("users file: expected member name")
		}
		var rec userRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("users file: member %s: %w", name, err)
		}
		if _, seen := into[name]; !seen {
			names = append(names, name)
		}
		into[name] = rec
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return names, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
