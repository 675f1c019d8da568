// Copyright 2024 trim21 <trim21.me@gmail.com>
// SPDX-License-Identifier: GPL-3.0-only

package version

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
)

func quoteSetting(s string, key bool) string {
	special := " \t\r\n\"`"
	if key {
		special += "="
	}

	if (key && s == "") || strings.ContainsAny(s, special) {
		return strconv.Quote(s)
	}

	return s
}

// FormatBuildInfo renders info like `go version -m`, with the dependency
// columns aligned.
func FormatBuildInfo(info *debug.BuildInfo) string {
	buf := new(strings.Builder)

	fmt.Fprintf(buf, "go\t%s\n", info.GoVersion)
	if info.Main.Path != "" {
		fmt.Fprintf(buf, "mod\t%s\t%s\n", info.Main.Path, info.Main.Version)
	}

	if len(info.Deps) != 0 {
		tw := tabwriter.NewWriter(buf, 0, 4, 1, ' ', 0)
		for _, d := range info.Deps {
			replace := lo.TernaryF(d.Replace == nil, func() string { return "" }, func() string {
				return strings.TrimSpace(fmt.Sprintf("=> %s %s %s", d.Replace.Path, d.Replace.Version, d.Replace.Sum))
			})

			_, _ = fmt.Fprintf(tw, "dep %s\t%s\t%s\t%s\n", d.Path, d.Version, d.Sum, replace)
		}
		_ = tw.Flush()
	}

	for _, s := range info.Settings {
		fmt.Fprintf(buf, "build\t%s=%s\n", quoteSetting(s.Key, true), quoteSetting(s.Value, false))
	}

	return buf.String()
}
