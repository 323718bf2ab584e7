package blake3

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// New returns a hasher whose digest is rendered by Hex.
func New() hash.Hash {
	return blake3.New()
}

func Hex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// Compute hashes everything read from data and reports how many bytes it read.
func Compute(data io.Reader) (string, int64, error) {
	h := blake3.New()
	n, err := io.Copy(h, data)
	if err != nil {
		return "", n, err
	}
	return Hex(h), n, nil
}

func ComputeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sum, _, err := Compute(f)
	if err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return sum, nil
}
