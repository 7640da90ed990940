// Package store persists season snapshots. FileStore keeps a save
// directory of YAML files for single-player use; PgStore keeps snapshots in
// Postgres next to the notification outbox.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/season"
)

var ErrNotFound = errors.New("no saved game")

const (
	leagueFile        = "league.yaml"
	historyFile       = "history.yaml"
	mailboxFile       = "mailbox.yaml"
	notificationsFile = "notifications.yaml"
	summariesDir      = "summaries"
)

// history is the part of a snapshot that only grows
type history struct {
	TransferHistory []models.TransferRecord `yaml:"transfer_history,omitempty"`
	Favorites       []uuid.UUID             `yaml:"favorites,omitempty"`
	Achievements    []models.Achievement    `yaml:"achievements,omitempty"`
	CareerHistory   []models.CareerEntry    `yaml:"career_history,omitempty"`
}

type mailbox struct {
	Mailbox []models.MailMessage `yaml:"mailbox,omitempty"`
}

// FileStore saves a game as a directory of YAML files. The live league,
// the history and the mailbox are separate files staged in parallel;
// notifications are appended to a log of YAML documents. A save is only
// visible once the league file is replaced, and that happens last.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the save directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, summariesDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save implements season.Repository
func (s *FileStore) Save(ctx context.Context, snap season.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	league := *snap.State
	league.TransferHistory = nil
	league.Favorites = nil
	league.Achievements = nil
	league.CareerHistory = nil
	league.Mailbox = nil

	staged := map[string]any{
		historyFile: history{
			TransferHistory: snap.State.TransferHistory,
			Favorites:       snap.State.Favorites,
			Achievements:    snap.State.Achievements,
			CareerHistory:   snap.State.CareerHistory,
		},
		mailboxFile: mailbox{Mailbox: snap.State.Mailbox},
		leagueFile:  &league,
	}
	if snap.Summary != nil {
		staged[summaryPath(snap.Summary.Season)] = snap.Summary
	}

	g, _ := errgroup.WithContext(ctx)
	for name, v := range staged {
		g.Go(func() error {
			return stageYAML(filepath.Join(s.dir, name), v)
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(staged)
		return err
	}
	if err := s.appendNotifications(snap.Notifications); err != nil {
		s.discard(staged)
		return err
	}

	// the league file commits the snapshot, so it is replaced last
	for name := range staged {
		if name == leagueFile {
			continue
		}
		if err := commit(filepath.Join(s.dir, name)); err != nil {
			s.discard(staged)
			return err
		}
	}
	return commit(filepath.Join(s.dir, leagueFile))
}

// discard removes whatever temporary files a failed save left behind
func (s *FileStore) discard(staged map[string]any) {
	for name := range staged {
		os.Remove(filepath.Join(s.dir, name) + ".tmp")
	}
}

// Load implements season.Repository
func (s *FileStore) Load(ctx context.Context) (*models.SeasonState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		state models.SeasonState
		hist  history
		mail  mailbox
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return readYAML(filepath.Join(s.dir, leagueFile), &state) })
	g.Go(func() error { return readOptionalYAML(filepath.Join(s.dir, historyFile), &hist) })
	g.Go(func() error { return readOptionalYAML(filepath.Join(s.dir, mailboxFile), &mail) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state.TransferHistory = hist.TransferHistory
	state.Favorites = hist.Favorites
	state.Achievements = hist.Achievements
	state.CareerHistory = hist.CareerHistory
	state.Mailbox = mail.Mailbox
	return &state, nil
}

// Notifications returns every notification saved so far, oldest first
func (s *FileStore) Notifications() ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, notificationsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	var out []models.Notification
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var n models.Notification
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode notification: %w", err)
		}
		out = append(out, n)
	}
}

// Summary returns the saved end-of-season summary for a season label
func (s *FileStore) Summary(label string) (*rewards.Summary, error) {
	var sum rewards.Summary
	if err := readYAML(filepath.Join(s.dir, summaryPath(label)), &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *FileStore) appendNotifications(notes []models.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, n := range notes {
		if err := enc.Encode(n); err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, notificationsFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open notifications: %w", err)
	}
	defer f.Close()
	// every document after the first needs a separator
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		if _, err := f.WriteString("---\n"); err != nil {
			return fmt.Errorf("failed to append notifications: %w", err)
		}
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to append notifications: %w", err)
	}
	return nil
}

func summaryPath(label string) string {
	return filepath.Join(summariesDir, strings.NewReplacer("/", "-", " ", "_").Replace(label)+".yaml")
}

// stageYAML writes v next to path; commit moves it into place
func stageYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path+".tmp", data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func commit(path string) error {
	if err := os.Rename(path+".tmp", path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readOptionalYAML(path string, out any) error {
	if err := readYAML(path, out); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
