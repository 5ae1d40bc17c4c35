// Package hashing computes content identity and filesystem metadata for
// report records. Every file gets a SHA-256 content hash plus an xxhash64
// signature for quick equality checks.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	finerrors "github.com/finspect/finspect/internal/errors"
	"github.com/finspect/finspect/internal/report"
)

// Digest carries both content hashes for one file.
type Digest struct {
	SHA256    string
	Signature string
}

// HashBytes hashes content already loaded in memory.
func HashBytes(content []byte) Digest {
	sum := sha256.Sum256(content)
	return Digest{
		SHA256:    hex.EncodeToString(sum[:]),
		Signature: fmt.Sprintf("%016x", xxhash.Sum64(content)),
	}
}

// HashFile streams the whole file through both hashes. Used when the file
// exceeds the in-memory cap and the loaded prefix cannot stand in for the
// full content.
func HashFile(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, finerrors.NewHashError(path, err)
	}
	defer f.Close()

	sha := sha256.New()
	fast := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(sha, fast), f); err != nil {
		return Digest{}, finerrors.NewHashError(path, err)
	}
	return Digest{
		SHA256:    hex.EncodeToString(sha.Sum(nil)),
		Signature: fmt.Sprintf("%016x", fast.Sum64()),
	}, nil
}

// Stat collects the filesystem metadata half of a FileRecord. The content
// hash is filled in by the caller once content is read.
func Stat(path string) (report.FileRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	fi, err := os.Stat(path)
	if err != nil {
		return report.FileRecord{Path: abs}, finerrors.NewReadError(path, err)
	}

	return report.FileRecord{
		Path:       abs,
		SizeBytes:  fi.Size(),
		CreatedAt:  creationTime(fi).UTC(),
		ModifiedAt: fi.ModTime().UTC(),
	}, nil
}

// creationTime returns the closest portable stand-in for file creation
// time. FileInfo does not expose birth time, so modification time is used
// on every platform.
func creationTime(fi os.FileInfo) time.Time {
	return fi.ModTime()
}
