package drive

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/domain"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/snapshot"
)

// FileStore is the subset of Service used to pull snapshot exports.
type FileStore interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// SnapshotSource loads the newest inventory and transaction exports of a folder.
type SnapshotSource struct {
	files FileStore
}

func NewSnapshotSource(files FileStore) *SnapshotSource {
	return &SnapshotSource{files: files}
}

// Load picks the first (newest) export of each kind in the folder. Files
// are listed newest first.
func (s *SnapshotSource) Load(ctx context.Context, folderID string) ([]domain.InventoryItem, []domain.RawTransaction, error) {
	files, err := s.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, nil, err
	}

	var itemsFile, txFile *File
	for _, f := range files {
		switch snapshot.ClassifyExport(f.Name) {
		case snapshot.ExportItems:
			if itemsFile == nil {
				itemsFile = f
			}
		case snapshot.ExportTransactions:
			if txFile == nil {
				txFile = f
			}
		}
	}

	if itemsFile == nil {
		return nil, nil, fmt.Errorf("no inventory export found in drive folder %s", folderID)
	}
	if txFile == nil {
		return nil, nil, fmt.Errorf("no transaction export found in drive folder %s", folderID)
	}

	log.Info().
		Str("items_file", itemsFile.Name).
		Str("transactions_file", txFile.Name).
		Msg("drive: loading snapshot exports")

	data, err := s.files.Download(ctx, itemsFile.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download %s: %w", itemsFile.Name, err)
	}
	items, err := snapshot.LoadItemsBytes(itemsFile.Name, data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", itemsFile.Name, err)
	}

	data, err = s.files.Download(ctx, txFile.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download %s: %w", txFile.Name, err)
	}
	records, err := snapshot.LoadTransactionsBytes(txFile.Name, data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", txFile.Name, err)
	}

	return items, records, nil
}

var _ FileStore = (*Service)(nil)
