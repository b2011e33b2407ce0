package deck

import (
	"fmt"

	"ydkpoints/internal/services"
)

// Kind distinguishes the two identifier namespaces.
type Kind int

const (
	// Passcode is the numeric card id printed on the card, used by the primary source.
	Passcode Kind = iota
	// ContentID is the deck-builder's internal "cid", which needs a reverse lookup.
	ContentID
)

func (k Kind) String() string {
	switch k {
	case Passcode:
		return "passcode"
	case ContentID:
		return "cid"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Identifier is one extracted card reference. Duplicates are meaningful.
type Identifier struct {
	Kind  Kind
	Value string
}

// NewPasscode returns a passcode identifier.
func NewPasscode(value string) Identifier { return Identifier{Kind: Passcode, Value: value} }

// NewContentID returns a cid identifier.
func NewContentID(value string) Identifier { return Identifier{Kind: ContentID, Value: value} }

func (id Identifier) String() string {
	return id.Kind.String() + ":" + id.Value
}

// Section names one of the three deck groups.
type Section int

const (
	Main Section = iota
	Extra
	Side
)

// Sections lists every section in report order.
var Sections = []Section{Main, Extra, Side}

func (s Section) String() string {
	switch s {
	case Main:
		return "main"
	case Extra:
		return "extra"
	case Side:
		return "side"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// Origin records which document shape produced a Deck.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

// Deck is the extractor output: three ordered identifier groups.
type Deck struct {
	Name   string
	Origin Origin
	Main   []Identifier
	Extra  []Identifier
	Side   []Identifier
}

// Section returns the identifiers of one section.
func (d Deck) Section(s Section) []Identifier {
	switch s {
	case Main:
		return d.Main
	case Extra:
		return d.Extra
	case Side:
		return d.Side
	default:
		return nil
	}
}

// Len returns the total identifier count over all sections.
func (d Deck) Len() int {
	return len(d.Main) + len(d.Extra) + len(d.Side)
}

// FormatError reports an unreadable or malformed deck document.
type FormatError struct {
	Path   string
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	location := e.Path
	if location == "" {
		location = "deck"
	}
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Line)
	}
	msg := fmt.Sprintf("%s: %s", location, e.Reason)
	if e.Text != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Text)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the validation marker and the underlying cause.
func (e *FormatError) Unwrap() []error {
	if e.Err != nil {
		return []error{services.ErrValidation, e.Err}
	}
	return []error{services.ErrValidation}
}
