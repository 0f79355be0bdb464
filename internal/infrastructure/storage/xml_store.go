// Package storage archivia su disco gli XML delle fatture generate.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
)

// FileXMLStore implementa billing.XMLStore sul filesystem locale. I percorsi
// sono relativi alla directory radice configurata (STORAGE_XML_DIR).
type FileXMLStore struct {
	baseDir string
}

// NewFileXMLStore crea lo store sulla directory indicata.
func NewFileXMLStore(baseDir string) (*FileXMLStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creazione directory XML: %w", err)
	}
	return &FileXMLStore{baseDir: baseDir}, nil
}

var _ billing.XMLStore = (*FileXMLStore)(nil)

// Write salva il file, sovrascrivendo l'eventuale versione precedente.
// La scrittura passa da un file temporaneo e rename: mai XML parziali.
func (s *FileXMLStore) Write(path string, data []byte) error {
	full := filepath.Join(s.baseDir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creazione directory: %w", err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("scrittura XML: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename XML: %w", err)
	}
	return nil
}

// Read legge il contenuto del file.
func (s *FileXMLStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, path))
	if err != nil {
		return nil, fmt.Errorf("lettura XML: %w", err)
	}
	return data, nil
}

// Remove elimina il file. Usata per il rollback della generazione quando
// l'insert della testata fallisce.
func (s *FileXMLStore) Remove(path string) error {
	if err := os.Remove(filepath.Join(s.baseDir, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rimozione XML: %w", err)
	}
	return nil
}
