package deck

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"ydkpoints/internal/services"
)

func values(ids []Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Value
	}
	return out
}

func TestParseYDKSplitsMainAndSide(t *testing.T) {
	input := "#created by someone\n#main\n12345678\n12345678\n\n#extra\n44508094\n!side\n87654321\n"

	d, err := ParseYDK(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseYDK: %v", err)
	}
	if got, want := values(d.Main), []string{"12345678", "12345678", "44508094"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("main = %v, want %v", got, want)
	}
	if len(d.Extra) != 0 {
		t.Fatalf("expected no extra section for ydk, got %v", d.Extra)
	}
	if got, want := values(d.Side), []string{"87654321"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("side = %v, want %v", got, want)
	}
	if d.Origin != OriginLocal {
		t.Fatalf("expected local origin, got %v", d.Origin)
	}
	for _, id := range d.Main {
		if id.Kind != Passcode {
			t.Fatalf("expected passcode kind, got %v", id.Kind)
		}
	}
}

func TestParseYDKCommentMainSide(t *testing.T) {
	d, err := ParseYDK(strings.NewReader("#comment\n12345678\n!side\n87654321\n"))
	if err != nil {
		t.Fatalf("ParseYDK: %v", err)
	}
	if got := values(d.Main); !reflect.DeepEqual(got, []string{"12345678"}) {
		t.Fatalf("main = %v", got)
	}
	if got := values(d.Side); !reflect.DeepEqual(got, []string{"87654321"}) {
		t.Fatalf("side = %v", got)
	}
}

func TestParseYDKHandlesCRLFAndBOM(t *testing.T) {
	d, err := ParseYDK(strings.NewReader("\ufeff#main\r\n111\r\n!side\r\n222\r\n"))
	if err != nil {
		t.Fatalf("ParseYDK: %v", err)
	}
	if got := values(d.Main); !reflect.DeepEqual(got, []string{"111"}) {
		t.Fatalf("main = %v", got)
	}
	if got := values(d.Side); !reflect.DeepEqual(got, []string{"222"}) {
		t.Fatalf("side = %v", got)
	}
}

func TestParseYDKRejectsMalformedLine(t *testing.T) {
	_, err := ParseYDK(strings.NewReader("#main\n123\nnot-a-card\n"))
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %T", err)
	}
	if formatErr.Line != 3 || formatErr.Text != "not-a-card" {
		t.Fatalf("unexpected location: %+v", formatErr)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatal("expected validation marker")
	}
}

func TestParseYDKFileNamesDeckAndReportsMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "burn.ydk")
	if err := os.WriteFile(path, []byte("#main\n1\n"), 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}

	d, err := ParseYDKFile(path)
	if err != nil {
		t.Fatalf("ParseYDKFile: %v", err)
	}
	if d.Name != "burn.ydk" {
		t.Fatalf("expected deck name burn.ydk, got %q", d.Name)
	}

	_, err = ParseYDKFile(filepath.Join(dir, "missing.ydk"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected not-exist and validation markers, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing.ydk") {
		t.Fatalf("expected file name in error, got %q", err.Error())
	}
}

func TestListDecks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.ydk", "a.YDK", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#main\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.ydk"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	decks, err := ListDecks(dir)
	if err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	if want := []string{"a.YDK", "b.ydk"}; !reflect.DeepEqual(decks, want) {
		t.Fatalf("decks = %v, want %v", decks, want)
	}

	if _, err := ListDecks(filepath.Join(dir, "nope")); err == nil {
		t.Fatal("expected error for missing folder")
	}
}
