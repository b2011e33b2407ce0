package language

import "strings"

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	code3   string // ISO 639-2 (3-letter)
	display string
	word    string
}

// Locales the official card database publishes names in.
var languages = []entry{
	{"en", "eng", "English", "english"},
	{"ko", "kor", "Korean", "korean"},
	{"ja", "jpn", "Japanese", "japanese"},
	{"fr", "fra", "French", "french"},
	{"de", "deu", "German", "german"},
	{"it", "ita", "Italian", "italian"},
	{"es", "spa", "Spanish", "spanish"},
	{"pt", "por", "Portuguese", "portuguese"},
}

var index map[string]*entry

func init() {
	index = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		index[e.code2] = e
		index[e.code3] = e
		index[e.word] = e
	}
}

func lookup(code string) *entry {
	return index[strings.ToLower(strings.TrimSpace(code))]
}

// ToISO2 converts a recognized locale code or word to ISO 639-1.
// Returns empty string for unrecognized input.
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	return ""
}

// Supported reports whether code names a locale the card database serves.
func Supported(code string) bool {
	return lookup(code) != nil
}

// DisplayName returns a human-readable name for code, or the uppercased
// code when it is not recognized.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Codes lists the supported ISO 639-1 codes in declaration order.
func Codes() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code2)
	}
	return codes
}
