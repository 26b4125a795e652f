package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// DefaultDir is the root of the file based storage.
	DefaultDir = "file-storage"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key of a backtest output.
type Key struct {
	Run   string `json:"run"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// Path returns the relative path of the key.
func (k Key) Path() string {
	name := k.Kind
	if k.Label != "" {
		name = fmt.Sprintf("%s_%s", k.Kind, k.Label)
	}
	return filepath.Join(k.Run, name)
}

// Persistence stores and loads values by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// VoidStorage is a noop storage.
type VoidStorage struct {
}

// Store ignores the value.
func (d VoidStorage) Store(k Key, value interface{}) error {
	return nil
}

// Load never finds anything.
func (d VoidStorage) Load(k Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}

// NewVoidStorage creates a new noop storage.
func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}

// Multi stores the values to all the given storages.
type Multi []Persistence

// Store stores the value to every storage, stopping at the first error.
func (m Multi) Store(k Key, value interface{}) error {
	for _, p := range m {
		if err := p.Store(k, value); err != nil {
			return err
		}
	}
	return nil
}

// Load loads from the first storage that has the key.
func (m Multi) Load(k Key, value interface{}) error {
	for _, p := range m {
		err := p.Load(k, value)
		if err == nil {
			return nil
		}
		if !errors.Is(err, NotFoundErr) {
			return err
		}
	}
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}
