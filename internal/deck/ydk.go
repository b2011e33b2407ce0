package deck

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	sideMarker    = "!side"
	ydkExtension  = ".ydk"
	maxLineLength = 1024 * 1024
)

// ParseYDK reads a local deck document.
func ParseYDK(r io.Reader) (Deck, error) {
	return parseYDK(r, "")
}

// ParseYDKFile opens and parses the deck at path. The deck name is the file's
// base name.
func ParseYDKFile(path string) (Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return Deck{}, &FormatError{Path: path, Reason: "cannot open deck", Err: err}
	}
	defer file.Close()

	d, err := parseYDK(file, path)
	if err != nil {
		return Deck{}, err
	}
	d.Name = filepath.Base(path)
	return d, nil
}

func parseYDK(r io.Reader, path string) (Deck, error) {
	d := Deck{Origin: OriginLocal}
	inSide := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == sideMarker {
			inSide = true
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		if !isDigits(line) {
			return Deck{}, &FormatError{Path: path, Line: lineNo, Text: line, Reason: "passcode must be numeric"}
		}
		if inSide {
			d.Side = append(d.Side, NewPasscode(line))
		} else {
			d.Main = append(d.Main, NewPasscode(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return Deck{}, &FormatError{Path: path, Line: lineNo + 1, Reason: "read failed", Err: err}
	}
	return d, nil
}

// ListDecks returns the .ydk files directly inside dir, sorted by name.
func ListDecks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &FormatError{Path: dir, Reason: "cannot read deck folder", Err: err}
	}
	var decks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ydkExtension) {
			decks = append(decks, entry.Name())
		}
	}
	sort.Strings(decks)
	return decks, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
