// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package bench

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/trim21/errgo"

	"smolbuf/internal/pkg/mempool"
	"smolbuf/internal/pkg/random"
)

// ReadKeys returns the non-empty lines of r. Trailing \r is stripped.
func ReadKeys(r io.Reader) ([]string, error) {
	buf := mempool.GetSlice()
	defer mempool.PutSlice(buf)

	sc := bufio.NewScanner(r)
	sc.Buffer(buf, mempool.ScanBufferSize)

	var keys []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line != "" {
			keys = append(keys, line)
		}
	}

	if err := sc.Err(); err != nil {
		return keys, errgo.Wrap(err, "failed to scan keys")
	}

	return keys, nil
}

// LoadFiles reads keys from every file in order. "-" reads stdin.
func LoadFiles(paths []string) ([]string, error) {
	var keys []string
	for _, path := range paths {
		k, err := loadFile(path)
		if err != nil {
			return nil, err
		}

		keys = append(keys, k...)
	}

	return keys, nil
}

func loadFile(path string) ([]string, error) {
	if path == "-" {
		return ReadKeys(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errgo.Wrap(err, "failed to open corpus")
	}
	defer f.Close()

	return ReadKeys(f)
}

// RandomKeys returns n keys drawn from a vocabulary of about n/4 distinct
// keys, so interning has repeats to find. Lengths range from 1 to 48 bytes.
func RandomKeys(n int) []string {
	if n <= 0 {
		return nil
	}

	vocab := make([]string, max(n/4, 1))
	for i := range vocab {
		size := 1 + random.Intn(48)
		if i%2 == 0 {
			vocab[i] = random.URLSafeStr(size)
		} else {
			vocab[i] = random.UTF8(size)
		}
	}

	keys := make([]string, n)
	for i := range keys {
		keys[i] = vocab[random.Intn(len(vocab))]
	}

	return keys
}
