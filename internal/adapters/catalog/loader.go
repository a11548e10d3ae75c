// Package catalog builds the mood track catalog from a songs directory laid
// out as <dir>/<mood>/<file>.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
)

// Load scans dir once. Missing or empty mood folders only produce a warning;
// the returned error is reserved for folders that exist but cannot be read.
func Load(dir string, logger *slog.Logger) (domain.Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	buckets := make(map[domain.Mood][]domain.Track, len(domain.Moods))
	for _, mood := range domain.Moods {
		folder := filepath.Join(dir, string(mood))
		tracks, err := scanFolder(folder, mood)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("catalog: %w", err)
		}
		if len(tracks) == 0 {
			logger.Warn("catalog: no songs found", "mood", mood.String(), "folder", folder)
			continue
		}
		buckets[mood] = tracks
	}

	c := domain.NewCatalog(buckets)
	logger.Info("catalog loaded", "dir", dir, "tracks", c.Total())
	return c, nil
}

func scanFolder(folder string, mood domain.Mood) ([]domain.Track, error) {
	entries, err := os.ReadDir(folder)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", folder, err)
	}

	var tracks []domain.Track
	for _, e := range entries {
		if e.IsDir() || !domain.IsAudioFile(e.Name()) {
			continue
		}
		tracks = append(tracks, domain.NewTrack(filepath.Join(folder, e.Name()), mood))
	}
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Name < tracks[j].Name
	})
	return tracks, nil
}
