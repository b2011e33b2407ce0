package deck

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultFallbackWindow is the chunk width, in bytes, used when classifying
// cid tokens by nearby section keywords.
const DefaultFallbackWindow = 1000

const (
	regionIDPrefix = "detailtext_"
	regionSelector = "#detailtext_main, #detailtext_ext, #detailtext_side"
)

var (
	cidPattern = regexp.MustCompile(`cid=(\d+)`)

	// Keywords for the fallback classifier. "text" inside "detailtext" must
	// not read as "ext", hence the word boundaries.
	sectionKeyword = regexp.MustCompile(`(?i)\b(?:detailtext_|deck_)?(main|ext|extra|side)(?:_deck|_list)?\b`)
)

// HTMLOptions tunes ParseHTML.
type HTMLOptions struct {
	// FallbackWindow overrides DefaultFallbackWindow when positive.
	FallbackWindow int
}

// ParseHTML extracts cid identifiers from a remote deck-builder page.
func ParseHTML(doc string) Deck {
	return ParseHTMLWithOptions(doc, HTMLOptions{})
}

// ParseHTMLWithOptions is ParseHTML with an explicit fallback window.
func ParseHTMLWithOptions(doc string, opts HTMLOptions) Deck {
	d := Deck{Origin: OriginRemote}

	groups, ok := scopedGroups(doc)
	if !ok {
		window := opts.FallbackWindow
		if window <= 0 {
			window = DefaultFallbackWindow
		}
		groups = classifyByWindow(doc, window)
	}

	d.Main = toContentIDs(dedupe(groups[Main]))
	d.Extra = toContentIDs(dedupe(groups[Extra]))
	d.Side = toContentIDs(dedupe(groups[Side]))
	return d
}

// scopedGroups collects cids per section container, in document order. Cids
// of a nested container belong to the nested section only. ok is false when
// the page has no recognizable section container.
func scopedGroups(doc string) (map[Section][]string, bool) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, false
	}
	regions := parsed.Find(regionSelector)
	if regions.Length() == 0 {
		return nil, false
	}
	groups := make(map[Section][]string, 3)
	regions.Each(func(_ int, region *goquery.Selection) {
		id, _ := region.Attr("id")
		section := sectionFromKeyword(strings.TrimPrefix(id, regionIDPrefix))
		own := region.Clone()
		own.Find(regionSelector).Remove()
		inner, err := own.Html()
		if err != nil {
			return
		}
		for _, m := range cidPattern.FindAllStringSubmatch(inner, -1) {
			groups[section] = append(groups[section], m[1])
		}
	})
	return groups, true
}

// classifyByWindow splits the document into fixed windows and assigns each
// cid to the section keyword nearest to it inside the same window. Keywords
// that straddle a window edge are not seen by either window.
func classifyByWindow(doc string, window int) map[Section][]string {
	groups := make(map[Section][]string, 3)
	for start := 0; start < len(doc); start += window {
		end := start + window
		if end > len(doc) {
			end = len(doc)
		}
		chunk := doc[start:end]
		cids := cidPattern.FindAllStringSubmatchIndex(chunk, -1)
		if len(cids) == 0 {
			continue
		}
		keywords := sectionKeyword.FindAllStringSubmatchIndex(chunk, -1)
		if len(keywords) == 0 {
			continue
		}
		for _, c := range cids {
			best := -1
			bestDistance := 0
			for i, k := range keywords {
				distance := abs(k[0] - c[0])
				if best < 0 || distance < bestDistance {
					best = i
					bestDistance = distance
				}
			}
			k := keywords[best]
			section := sectionFromKeyword(chunk[k[2]:k[3]])
			groups[section] = append(groups[section], chunk[c[2]:c[3]])
		}
	}
	return groups
}

func sectionFromKeyword(keyword string) Section {
	switch strings.ToLower(keyword) {
	case "ext", "extra":
		return Extra
	case "side":
		return Side
	default:
		return Main
	}
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toContentIDs(values []string) []Identifier {
	if len(values) == 0 {
		return nil
	}
	ids := make([]Identifier, len(values))
	for i, v := range values {
		ids[i] = NewContentID(v)
	}
	return ids
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
