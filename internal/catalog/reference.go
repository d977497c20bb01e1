package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/handiism/trackdl/internal/model"
)

// ErrInvalidReference is returned for input that names no track, album or
// playlist.
var ErrInvalidReference = errors.New("invalid reference")

// Reference is a parsed user-supplied track, album or playlist reference.
type Reference struct {
	Kind model.CollectionKind
	ID   string
	Raw  string
}

var (
	uriPattern  = regexp.MustCompile(`^[a-z][a-z0-9+.-]*:(track|album|playlist):([A-Za-z0-9_-]+)$`)
	pathPattern = regexp.MustCompile(`/(track|album|playlist)/([A-Za-z0-9_-]+)`)
)

// ParseReference accepts either a URI of the form
//
//	<scheme>:track:<id>
//	<scheme>:album:<id>
//	<scheme>:playlist:<id>
//
// or a web URL whose path contains /track/<id>, /album/<id> or
// /playlist/<id>. Query strings and extra path segments (locale prefixes)
// are ignored.
func ParseReference(s string) (Reference, error) {
	raw := strings.TrimSpace(s)

	if m := uriPattern.FindStringSubmatch(raw); m != nil {
		return Reference{Kind: parseKind(m[1]), ID: m[2], Raw: raw}, nil
	}

	u, err := url.Parse(raw)
	if err == nil && u.Host != "" {
		if m := pathPattern.FindStringSubmatch(u.Path); m != nil {
			return Reference{Kind: parseKind(m[1]), ID: m[2], Raw: raw}, nil
		}
	}

	return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
}

// SplitReferences splits free-form prompt input on whitespace and commas.
func SplitReferences(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

func parseKind(s string) model.CollectionKind {
	switch s {
	case "album":
		return model.KindAlbum
	case "playlist":
		return model.KindPlaylist
	default:
		return model.KindTrack
	}
}
