package dupes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Comparison methods accepted by NewResolver.
const (
	MethodSize = "size"
	MethodHash = "hash"
	MethodBoth = "both"
)

// hashChunkSize bounds memory use while hashing regardless of file size.
const hashChunkSize = 8 * 1024

// Resolver finds files equivalent to a candidate under a configured
// comparison method.
type Resolver struct {
	method string
}

// NewResolver returns a Resolver using the given comparison method. The
// method is assumed validated by config; anything unrecognized behaves like
// MethodHash.
func NewResolver(method string) *Resolver {
	switch method {
	case MethodSize, MethodHash, MethodBoth:
	default:
		method = MethodHash
	}
	return &Resolver{method: method}
}

// Method reports the comparison method in use.
func (r *Resolver) Method() string {
	return r.method
}

// Find walks searchDir and returns every file equivalent to path under the
// resolver's method. The candidate itself is never reported, even when it
// already lies inside searchDir; identity is compared by filesystem identity,
// not path string. An absent searchDir yields an empty result. Match order
// follows directory enumeration order and is not guaranteed stable.
func (r *Resolver) Find(ctx context.Context, path, searchDir string) ([]string, error) {
	if _, err := os.Stat(searchDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat search dir: %w", err)
	}

	candidateInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat candidate: %w", err)
	}
	candidateSize := candidateInfo.Size()

	var candidateHash string
	if r.method == MethodHash || r.method == MethodBoth {
		candidateHash, err = HashFile(path)
		if err != nil {
			return nil, fmt.Errorf("hash candidate: %w", err)
		}
	}

	var matches []string
	err = filepath.WalkDir(searchDir, func(other string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		otherInfo, err := d.Info()
		if err != nil {
			return err
		}
		if os.SameFile(candidateInfo, otherInfo) {
			return nil
		}

		switch r.method {
		case MethodSize:
			if otherInfo.Size() == candidateSize {
				matches = append(matches, other)
			}
		case MethodHash:
			otherHash, err := HashFile(other)
			if err != nil {
				return err
			}
			if otherHash == candidateHash {
				matches = append(matches, other)
			}
		case MethodBoth:
			if otherInfo.Size() != candidateSize {
				return nil
			}
			otherHash, err := HashFile(other)
			if err != nil {
				return err
			}
			if otherHash == candidateHash {
				matches = append(matches, other)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// HashFile computes the SHA-256 digest of a file, streaming it in fixed-size
// chunks.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
