package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DedupReport counts what CleanLinks kept and removed.
type DedupReport struct {
	Original int
	Unique   int
	Removed  int
}

// CleanLinks returns the distinct links of lines in first-seen order.
// Each line is trimmed of whitespace and double quotes; blank lines and the
// brackets of a previously written list are ignored. Links are compared
// verbatim, without canonicalization.
func CleanLinks(lines []string) ([]string, DedupReport) {
	var report DedupReport
	seen := make(map[string]struct{}, len(lines))
	unique := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || line == "[" || line == "]" {
			continue
		}
		report.Original++

		link := strings.TrimSpace(strings.Trim(strings.TrimSuffix(line, ","), `"`))
		if link == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		unique = append(unique, link)
	}

	report.Unique = len(unique)
	report.Removed = report.Original - report.Unique
	return unique, report
}

// WriteLinkList writes links as a bracketed list of quoted strings, one per line.
func WriteLinkList(w io.Writer, links []string) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("[\n")
	for i, link := range links {
		sep := ","
		if i == len(links)-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "    %q%s\n", link, sep)
	}
	bw.WriteString("]\n")
	return bw.Flush()
}

// CleanLinksFile deduplicates the link file in and writes the list to out.
// An empty out overwrites in.
func CleanLinksFile(in, out string) ([]string, DedupReport, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, DedupReport{}, fmt.Errorf("read links: %w", err)
	}
	if out == "" {
		out = in
	}

	links, report := CleanLinks(strings.Split(string(data), "\n"))

	f, err := os.Create(out)
	if err != nil {
		return nil, report, fmt.Errorf("create %s: %w", out, err)
	}
	if err := WriteLinkList(f, links); err != nil {
		f.Close()
		return nil, report, fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return nil, report, fmt.Errorf("close %s: %w", out, err)
	}
	return links, report, nil
}
