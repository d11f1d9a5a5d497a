package fileops

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// videoExtensions is the set of file extensions treated as video files when
// scanning directories and validating user input.
var videoExtensions = map[string]bool{
	".avi": true, ".mkv": true, ".mp4": true, ".m4v": true, ".mov": true,
	".mpg": true, ".mpeg": true, ".wmv": true, ".ts": true, ".m2ts": true,
	".webm": true, ".flv": true, ".ogm": true, ".divx": true,
}

// subtitleExtensions is the set of file extensions recognized as subtitles.
var subtitleExtensions = map[string]bool{
	".srt": true, ".sub": true, ".ass": true, ".ssa": true, ".vtt": true,
	".smi": true, ".txt": true,
}

// IsVideoFile reports whether the path has a known video file extension.
func IsVideoFile(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsSubtitleFile reports whether the path has a known subtitle file extension.
func IsSubtitleFile(path string) bool {
	return subtitleExtensions[strings.ToLower(filepath.Ext(path))]
}

// SubtitlePathFor derives the destination subtitle path for a video file:
// the video path with its extension replaced by ".<lang>.<format>".
// If lang is empty the language segment is omitted.
func SubtitlePathFor(videoPath, lang, format string) string {
	if format == "" {
		format = "srt"
	}
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	if lang == "" {
		return base + "." + format
	}
	return base + "." + lang + "." + format
}

// HasExistingSubtitle reports whether a subtitle file already sits next to
// the video (same basename, any recognized subtitle extension, with or
// without a language segment).
func HasExistingSubtitle(videoPath string) bool {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	dir := filepath.Dir(videoPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() || !IsSubtitleFile(e.Name()) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		// Strip an optional trailing language segment ("Movie.en" -> "Movie").
		if name == base || strings.TrimSuffix(name, filepath.Ext(name)) == base {
			return true
		}
	}
	return false
}

// FindVideoFiles walks root and returns all video file paths found, sorted
// by the walk order (lexical within each directory).
func FindVideoFiles(root string) ([]string, error) {
	var videos []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if IsVideoFile(path) {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory '%s': %w", root, err)
	}
	return videos, nil
}

// DecompressGzip decompresses a gzip-encoded subtitle body (the format both
// the XML-RPC download method and the direct download links return).
func DecompressGzip(compressed []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	content, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress subtitle content: %w", err)
	}
	return content, nil
}

// WriteSubtitle writes subtitle content to destPath. Unless overwrite is set,
// an existing file at destPath is an error. The write goes through a temp
// file in the same directory so a failed write never leaves a truncated
// subtitle behind.
func WriteSubtitle(destPath string, content []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return fmt.Errorf("subtitle file already exists: %s (use overwrite to replace)", destPath)
		}
	}

	dir := filepath.Dir(destPath)
	tmp, err := os.CreateTemp(dir, ".subtle-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in '%s': %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write subtitle content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move subtitle into place at '%s': %w", destPath, err)
	}
	return nil
}
