package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// StartOrphanImageCleaner removes unreferenced upload files with interval.
//
// A history insert that fails after the image file was written leaves the
// blob behind on purpose; this reaper deletes any file under root that no
// history row references and that is older than minAge.
func StartOrphanImageCleaner(
	ctx context.Context,
	db *sql.DB,
	root string,
	interval time.Duration,
	minAge time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := CleanOrphanImages(ctx, db, root, minAge)
				if err != nil {
					log.Error("failed to clean orphan images", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned orphan images", zap.Int("removed", removed))
				}
			}
		}
	}()
}

// CleanOrphanImages performs a single sweep and returns how many files
// were removed.
func CleanOrphanImages(ctx context.Context, db *sql.DB, root string, minAge time.Duration) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT image_path FROM history`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	referenced := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return 0, err
		}
		referenced[filepath.FromSlash(p)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-minAge)
	removed := 0
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if _, ok := referenced[rel]; ok {
			return nil
		}
		if info.ModTime().After(cutoff) {
			// too fresh, may belong to an in-flight request
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if os.IsNotExist(err) {
		return removed, nil
	}
	return removed, err
}
