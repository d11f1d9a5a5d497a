package metadata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ptn "github.com/razsteinmetz/go-ptn"
	log "github.com/sirupsen/logrus"

	coreerrors "github.com/eransh/subtle/pkg/core/errors"
	"github.com/eransh/subtle/pkg/core/fileops"
)

// imdbIDRegex matches an IMDb title ID inside NFO file content.
var imdbIDRegex = regexp.MustCompile(`tt(\d{6,9})`)

// VideoInfo holds consolidated information about a video file, gathered from
// the file system, the filename and an adjacent NFO file. It carries
// everything query construction needs.
type VideoInfo struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	OSDbHash string `json:"osdbHash,omitempty"`

	Title        string `json:"title,omitempty"`
	Year         int    `json:"year,omitempty"`
	Season       int    `json:"season,omitempty"`
	Episode      int    `json:"episode,omitempty"`
	Resolution   string `json:"resolution,omitempty"` // e.g. "1080p"
	Source       string `json:"source,omitempty"`     // e.g. "BluRay", "WEB-DL"
	ReleaseGroup string `json:"releaseGroup,omitempty"`

	// IMDb ID (digits only) extracted from an adjacent .nfo file, if any.
	NFOIMDbID string `json:"nfoImdbId,omitempty"`
}

// IsEpisode reports whether the filename parsed as a series episode.
func (v *VideoInfo) IsEpisode() bool {
	return v.Season > 0 && v.Episode > 0
}

// Extract gathers VideoInfo for a video file path. The filename is parsed
// even when hashing fails (too-small or unreadable files still produce a
// usable text query).
func Extract(videoPath string) (*VideoInfo, error) {
	stat, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat video file '%s': %w", videoPath, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a video file", videoPath)
	}

	info := &VideoInfo{
		FilePath: videoPath,
		FileName: filepath.Base(videoPath),
		FileSize: stat.Size(),
	}

	parseFileName(info)

	hash, size, err := fileops.CalculateOSDbHash(videoPath)
	if err != nil {
		if errors.Is(err, coreerrors.ErrFileTooSmall) {
			log.Warnf("Skipping OSDb hash for %s: %v", info.FileName, err)
		} else {
			log.Warnf("Failed to hash %s: %v", info.FileName, err)
		}
	} else {
		info.OSDbHash = hash
		info.FileSize = size
	}

	info.NFOIMDbID = readNFOIMDbID(videoPath)

	return info, nil
}

// parseFileName fills title/year/season/episode and release details from the
// filename, falling back to a dot-stripped basename when parsing fails.
func parseFileName(info *VideoInfo) {
	parsed, err := ptn.Parse(info.FileName)
	if err == nil {
		info.Title = parsed.Title
		info.Year = parsed.Year
		info.Season = parsed.Season
		info.Episode = parsed.Episode
		info.Resolution = parsed.Resolution
		info.Source = parsed.Quality
		info.ReleaseGroup = parsed.Group
		return
	}
	log.Warnf("Failed to parse video filename '%s': %v", info.FileName, err)
	baseName := strings.TrimSuffix(info.FileName, filepath.Ext(info.FileName))
	info.Title = strings.TrimSpace(strings.ReplaceAll(baseName, ".", " "))
}

// readNFOIMDbID looks for a .nfo file next to the video and extracts the
// first IMDb title ID found in it (digits only, "tt" prefix stripped).
// Returns "" when there is no NFO or it carries no ID.
func readNFOIMDbID(videoPath string) string {
	nfoPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".nfo"
	data, err := os.ReadFile(nfoPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Error reading NFO file %s: %v", nfoPath, err)
		}
		return ""
	}
	match := imdbIDRegex.FindSubmatch(data)
	if match == nil {
		return ""
	}
	return string(match[1])
}

// QueryTitle returns the text-search query for the video: the parsed title,
// with the year appended for movies (episodes carry season/episode
// separately).
func (v *VideoInfo) QueryTitle() string {
	if v.Title == "" {
		return ""
	}
	if !v.IsEpisode() && v.Year > 0 {
		return fmt.Sprintf("%s %d", v.Title, v.Year)
	}
	return v.Title
}
