// Package store persists session summaries as one JSON artifact per file
// under a conversations directory, and enumerates and reloads them for the
// resumption flow.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"persona-chat/internal/chat"
)

var (
	ErrPersistence      = errors.New("persistence failed")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrCorruptArtifact  = errors.New("corrupt artifact")
)

const (
	filePrefix  = "conversation_"
	fileSuffix  = ".json"
	timeLayout  = "2006-01-02-15-04"
	filePattern = filePrefix + "*" + fileSuffix
)

// Store owns artifact lifecycle in one directory: naming, existence checks,
// reads and writes. Nothing else touches the persistence medium.
type Store struct {
	dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Save writes the summary as an indented JSON file named after the current
// minute. When two saves land in the same minute, an incrementing " (N)"
// counter disambiguates; the process is single-threaded, so a sequential
// check-then-create resolves the name.
func (s *Store) Save(summary chat.Summary) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: ensure dir: %v", ErrPersistence, err)
	}

	stamp := s.now().Format(timeLayout)
	name := filePrefix + stamp + fileSuffix
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(s.dir, name)); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s%s (%d)%s", filePrefix, stamp, counter, fileSuffix)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %v", ErrPersistence, name, err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return "", fmt.Errorf("%w: encode %s: %v", ErrPersistence, name, err)
	}
	log.Debug().Str("artifact", name).Str("dir", s.dir).Msg("saved conversation")
	return name, nil
}

// List enumerates artifact ids (base filenames) matching the naming
// convention, sorted so two successive calls on an unchanged store agree.
// A missing directory is an empty store, not an error.
func (s *Store) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, filePattern))
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrPersistence, err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, filepath.Base(m))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) Load(id string) (chat.Summary, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return chat.Summary{}, fmt.Errorf("%w: %s", ErrArtifactNotFound, id)
		}
		return chat.Summary{}, fmt.Errorf("%w: read %s: %v", ErrPersistence, id, err)
	}
	var summary chat.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return chat.Summary{}, fmt.Errorf("%w: %s: %v", ErrCorruptArtifact, id, err)
	}
	return summary, nil
}
