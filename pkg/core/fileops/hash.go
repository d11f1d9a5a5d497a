package fileops

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	coreerrors "github.com/eransh/subtle/pkg/core/errors"
)

const (
	// osdbHashChunkSize is the size of the chunk read from the start and end of the file.
	osdbHashChunkSize = 65536 // 64 * 1024
)

// CalculateMD5Hash computes the MD5 hash of a file.
func CalculateMD5Hash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for MD5 hashing '%s': %w", filePath, err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to copy file content for MD5 hashing '%s': %w", filePath, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// checksumBuffer calculates the sum of 64-bit little-endian integers in the buffer.
func checksumBuffer(buf []byte) (sum uint64) {
	for i := 0; i+8 <= len(buf); i += 8 {
		sum += binary.LittleEndian.Uint64(buf[i : i+8])
	}
	return
}

// CalculateOSDbHash calculates the OpenSubtitles movie hash for a video file:
// file size plus the 64-bit word checksums of the first and last 64KB chunks,
// formatted as 16 lowercase hex characters. Overflow is part of the algorithm.
// See http://trac.opensubtitles.org/projects/opensubtitles/wiki/HashSourceCodes
func CalculateOSDbHash(filePath string) (hash string, byteSize int64, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		err = fmt.Errorf("failed to open file for OSDb hashing '%s': %w", filePath, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		err = fmt.Errorf("failed to stat file '%s': %w", filePath, err)
		return
	}

	byteSize = stat.Size()
	if byteSize < osdbHashChunkSize*2 {
		err = fmt.Errorf("'%s' (size: %d): %w", filePath, byteSize, coreerrors.ErrFileTooSmall)
		return
	}

	startBuf := make([]byte, osdbHashChunkSize)
	if _, err = io.ReadFull(file, startBuf); err != nil {
		err = fmt.Errorf("failed to read start chunk from '%s': %w", filePath, err)
		return
	}

	endBuf := make([]byte, osdbHashChunkSize)
	if _, err = file.ReadAt(endBuf, byteSize-osdbHashChunkSize); err != nil {
		err = fmt.Errorf("failed to read end chunk from '%s': %w", filePath, err)
		return
	}

	finalHash := uint64(byteSize) + checksumBuffer(startBuf) + checksumBuffer(endBuf)

	hash = fmt.Sprintf("%016x", finalHash)
	return
}
