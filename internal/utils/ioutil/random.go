package ioutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"
)

// DefaultChunkSize is the write unit of CreateRandomFile.
const DefaultChunkSize = 10 * 1024

type RandomFileOptions struct {
	// ChunkSize is the size of each write, DefaultChunkSize when zero
	ChunkSize int
	// Exact truncates the last chunk so the file is exactly the requested size.
	// Without it the file is rounded up to a whole number of chunks.
	Exact bool
	// Seed makes the content reproducible, a time based seed is used when zero
	Seed uint64
}

// CreateRandomFile writes pseudo-random content to path in chunks until at
// least size bytes are written, and returns the number of bytes written.
func CreateRandomFile(path string, size int64, opts RandomFileOptions) (int64, error) {
	if size < 0 {
		return 0, errors.New("size must not be negative")
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	record := make([]byte, chunkSize)
	var written int64
	for remaining := size; remaining > 0; remaining -= int64(chunkSize) {
		chunk := record
		if opts.Exact && remaining < int64(chunkSize) {
			chunk = record[:remaining]
		}
		_, _ = src.Read(chunk)

		n, err := f.Write(chunk)
		written += int64(n)
		if err != nil {
			f.Close()
			return written, fmt.Errorf("write file: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return written, fmt.Errorf("close file: %w", err)
	}
	return written, nil
}
