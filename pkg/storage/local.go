package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalArchive keeps one text file per receipt under a base directory.
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates the base directory if needed.
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalArchive{basePath: basePath}, nil
}

func (a *LocalArchive) path(receiptID uuid.UUID) string {
	return filepath.Join(a.basePath, receiptID.String()+".txt")
}

// Put stores the raw text for a receipt, replacing any previous copy.
func (a *LocalArchive) Put(ctx context.Context, receiptID uuid.UUID, rawText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(a.path(receiptID), []byte(rawText), 0o644); err != nil {
		return fmt.Errorf("failed to archive receipt text: %w", err)
	}
	return nil
}

// Get returns the archived raw text for a receipt.
func (a *LocalArchive) Get(ctx context.Context, receiptID uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(a.path(receiptID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read archived text: %w", err)
	}
	return string(data), nil
}

// Delete removes the archived text for a receipt.
func (a *LocalArchive) Delete(ctx context.Context, receiptID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(a.path(receiptID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete archived text: %w", err)
	}
	return nil
}

// List returns metadata for every archived receipt.
func (a *LocalArchive) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(a.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, ".txt"))
		if err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			ReceiptID: id,
			Size:      info.Size(),
			StoredAt:  info.ModTime().UTC(),
		})
	}
	return entries, nil
}
