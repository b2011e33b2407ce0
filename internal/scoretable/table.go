package scoretable

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"ydkpoints/internal/services"
)

// Table maps canonical card names to scores. Digest is the SHA-256 of the
// document bytes, or of the sorted entries for in-memory tables.
type Table struct {
	Version string
	Path    string
	Digest  string
	scores  map[string]int
}

// Diagnostic describes a recovered problem on one row.
type Diagnostic struct {
	Line   int
	Text   string
	Reason string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s (%q)", d.Line, d.Reason, d.Text)
}

// New builds a table from an in-memory mapping.
func New(version string, scores map[string]int) *Table {
	t := &Table{Version: version, scores: make(map[string]int, len(scores))}
	for name, score := range scores {
		t.scores[strings.TrimSpace(name)] = score
	}
	names := make([]string, 0, len(t.scores))
	for name := range t.scores {
		names = append(names, name)
	}
	sort.Strings(names)
	h := sha256.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s\t%d\n", name, t.scores[name])
	}
	t.Digest = hex.EncodeToString(h.Sum(nil))
	return t
}

// Fingerprint identifies the table contents under its version name. Two
// tables with the same file name but different rows never share one.
func (t *Table) Fingerprint() string {
	if t == nil {
		return ""
	}
	if len(t.Digest) < 12 {
		return t.Version
	}
	return t.Version + "@" + t.Digest[:12]
}

// Score returns the score for a canonical name. Unknown names score 0.
func (t *Table) Score(name string) int {
	if t == nil {
		return 0
	}
	return t.scores[name]
}

// Has reports whether name is listed.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.scores[name]
	return ok
}

// Len returns the number of listed cards.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.scores)
}

// Parse reads a score document. The error is reserved for read failures.
func Parse(r io.Reader, version string) (*Table, []Diagnostic, error) {
	t := &Table{Version: version, scores: make(map[string]int)}
	var diags []Diagnostic

	h := sha256.New()
	scanner := bufio.NewScanner(io.TeeReader(r, h))
	lineNo := 0
	sawHeader := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		name := strings.TrimSpace(parts[0])
		scoreField := ""
		if len(parts) > 1 {
			scoreField = strings.TrimSpace(parts[1])
		}
		score, scoreErr := strconv.Atoi(scoreField)

		if !sawHeader {
			sawHeader = true
			if scoreErr != nil {
				continue
			}
		}

		if name == "" {
			diags = append(diags, Diagnostic{Line: lineNo, Text: line, Reason: "missing card name, row skipped"})
			continue
		}
		if scoreErr != nil {
			diags = append(diags, Diagnostic{Line: lineNo, Text: line, Reason: "malformed score, counted as 0"})
			score = 0
		}
		t.scores[name] = score
	}
	if err := scanner.Err(); err != nil {
		return nil, diags, fmt.Errorf("read score table: %w", err)
	}
	t.Digest = hex.EncodeToString(h.Sum(nil))
	return t, diags, nil
}

// LoadFile parses the score document at path. A missing or unreadable file is
// a configuration error; the version is the file name without extension.
func LoadFile(path string) (*Table, []Diagnostic, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "scoretable", "open", path, err)
	}
	defer file.Close()

	t, diags, err := Parse(file, VersionFromPath(path))
	if err != nil {
		return nil, diags, services.Wrap(services.ErrConfiguration, "scoretable", "read", path, err)
	}
	t.Path = path
	return t, diags, nil
}

// VersionFromPath derives a table version from a document path.
func VersionFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
