// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

// Package report renders the outcome of a bench run for humans.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"smolbuf/internal/bench"
	"smolbuf/internal/pkg/heap"
)

// KeyCount is one repeated key.
type KeyCount struct {
	Key   string
	Count int
}

func (k KeyCount) Less(o KeyCount) bool {
	if k.Count != o.Count {
		return k.Count < o.Count
	}

	// ties keep the lexically smaller key.
	return k.Key > o.Key
}

// TopKeys returns the k most frequent keys, most frequent first.
func TopKeys(counts map[string]int, k int) []KeyCount {
	h := heap.New[KeyCount]()
	for key, n := range counts {
		h.PushBounded(KeyCount{Key: key, Count: n}, k)
	}

	return h.Sorted()
}

// Summary holds the derived numbers of a run.
type Summary struct {
	Class int
	bench.Result

	// StringAllocs is the number of allocations one Go string per key would need.
	StringAllocs int64
	// StringBytes is what those strings would allocate.
	StringBytes int64
	Top         []KeyCount
}

func Summarize(class int, res bench.Result, topK int) Summary {
	s := Summary{Class: class, Result: res, Top: TopKeys(res.Counts, topK)}
	for key, n := range res.Counts {
		if key != "" {
			s.StringAllocs += int64(n)
			s.StringBytes += int64(n * len(key))
		}
	}

	return s
}

// HitRatio is the share of intern calls that reused a block.
func (s Summary) HitRatio() float64 {
	total := s.Intern.Hits + s.Intern.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Intern.Hits) / float64(total)
}

func percent(part, whole int64) string {
	if whole == 0 {
		return "0%"
	}

	return strconv.FormatFloat(float64(part)*100/float64(whole), 'f', 1, 64) + "%"
}

// Write prints s to w. Colors follow color.NoColor.
func Write(w io.Writer, s Summary) error {
	title := color.New(color.Bold).SprintFunc()
	good := color.GreenString
	dim := color.New(color.Faint).SprintFunc()

	var b strings.Builder

	fmt.Fprintf(&b, "%s %d byte values, %s keys (%s distinct)\n",
		title("smolbuf"), s.Class, humanize.Comma(int64(s.Keys)), humanize.Comma(int64(s.Distinct)))
	fmt.Fprintf(&b, "  inline   %12s  %s\n", humanize.Comma(s.Inline), dim(percent(s.Inline, int64(s.Keys))))
	fmt.Fprintf(&b, "  shared   %12s  %s\n", humanize.Comma(s.Shared), dim(percent(s.Shared, int64(s.Keys))))
	fmt.Fprintf(&b, "  payload  %12s\n", units.BytesSize(float64(s.Payload)))

	fmt.Fprintf(&b, "%s\n", title("arena"))
	fmt.Fprintf(&b, "  allocs   %12s\n", humanize.Comma(s.Heap.Allocs))
	fmt.Fprintf(&b, "  live     %12s  %s\n", humanize.Comma(s.Heap.Live), humanize.IBytes(uint64(max(s.Heap.LiveBytes, 0))))

	fmt.Fprintf(&b, "%s\n", title("vs one string per key"))
	fmt.Fprintf(&b, "  allocs   %12s  %s\n", humanize.Comma(s.StringAllocs),
		good("saved "+percent(s.StringAllocs-s.Heap.Allocs, s.StringAllocs)))
	fmt.Fprintf(&b, "  bytes    %12s\n", humanize.IBytes(uint64(s.StringBytes)))

	if s.Intern.Hits+s.Intern.Misses > 0 {
		fmt.Fprintf(&b, "%s\n", title("interner"))
		fmt.Fprintf(&b, "  hits     %12s  %s\n", humanize.Comma(s.Intern.Hits),
			good(strconv.FormatFloat(s.HitRatio()*100, 'f', 1, 64)+"%"))
		fmt.Fprintf(&b, "  misses   %12s\n", humanize.Comma(s.Intern.Misses))
	}

	if len(s.Top) > 0 {
		fmt.Fprintf(&b, "%s\n", title("top keys"))
		for _, kc := range s.Top {
			fmt.Fprintf(&b, "  %12s  %q\n", humanize.Comma(int64(kc.Count)), kc.Key)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
