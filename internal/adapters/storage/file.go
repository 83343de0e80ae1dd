package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/google/renameio/v2"
)

// Nombres de los documentos dentro del directorio de datos.
const (
	PositionsFile = "positions.json"
	ScanLogFile   = "scan_log.json"
	StateFile     = "state.json"
)

// FileStore implementa ports.StateStore con un documento JSON por entidad.
// Cada escritura reemplaza el fichero completo vía temp + rename, así que un
// lector nunca ve un documento a medio escribir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore crea el directorio si no existe.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewFileStore: mkdir %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir devuelve el directorio de datos.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) LoadPositions(_ context.Context) ([]domain.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make([]domain.Position, 0)
	if err := s.read(PositionsFile, &positions); err != nil {
		return nil, fmt.Errorf("storage.LoadPositions: %w", err)
	}
	return positions, nil
}

func (s *FileStore) UpdatePositions(_ context.Context, fn func([]domain.Position) ([]domain.Position, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	positions := make([]domain.Position, 0)
	if err := s.read(PositionsFile, &positions); err != nil {
		return fmt.Errorf("storage.UpdatePositions: %w", err)
	}
	next, err := fn(positions)
	if err != nil {
		return err
	}
	if next == nil {
		next = []domain.Position{}
	}
	if err := s.write(PositionsFile, next); err != nil {
		return fmt.Errorf("storage.UpdatePositions: %w", err)
	}
	return nil
}

func (s *FileStore) LoadScanLog(_ context.Context) ([]domain.ScanLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.ScanLogEntry, 0)
	if err := s.read(ScanLogFile, &entries); err != nil {
		return nil, fmt.Errorf("storage.LoadScanLog: %w", err)
	}
	return entries, nil
}

func (s *FileStore) AppendScanLog(_ context.Context, entry domain.ScanLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.ScanLogEntry, 0)
	if err := s.read(ScanLogFile, &entries); err != nil {
		return fmt.Errorf("storage.AppendScanLog: %w", err)
	}
	if entry.Results == nil {
		entry.Results = []domain.Opportunity{}
	}
	if err := s.write(ScanLogFile, domain.AppendScanLog(entries, entry)); err != nil {
		return fmt.Errorf("storage.AppendScanLog: %w", err)
	}
	return nil
}

func (s *FileStore) LoadState(_ context.Context) (domain.SchedulerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state domain.SchedulerState
	if err := s.read(StateFile, &state); err != nil {
		return domain.SchedulerState{}, fmt.Errorf("storage.LoadState: %w", err)
	}
	return state, nil
}

func (s *FileStore) UpdateState(_ context.Context, fn func(*domain.SchedulerState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state domain.SchedulerState
	if err := s.read(StateFile, &state); err != nil {
		return fmt.Errorf("storage.UpdateState: %w", err)
	}
	if err := fn(&state); err != nil {
		return err
	}
	if err := s.write(StateFile, state); err != nil {
		return fmt.Errorf("storage.UpdateState: %w", err)
	}
	return nil
}

// Close no tiene recursos que liberar.
func (s *FileStore) Close() error { return nil }

// read decodifica el documento en out. Un fichero inexistente o vacío deja
// out intacto (valor por defecto). JSON corrupto es error.
func (s *FileStore) read(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := renameio.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
