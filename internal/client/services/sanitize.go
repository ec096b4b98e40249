package services

import (
	"errors"
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinAge = 1
	MaxAge = 150
)

var markup = bluemonday.StrictPolicy()

// invisible matches format characters plus the zero-width code points that
// some fonts render anyway.
var invisible = runes.Predicate(func(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
		return true
	}
	return unicode.Is(unicode.Cf, r)
})

// Sanitize normalizes s to NFC, drops invisible code points and markup
// tags, and trims surrounding white space. Entities are decoded after tag
// stripping, so invisibles are dropped again from the decoded text.
//
// A bare '<' directly followed by a letter opens a tag: "a<b" keeps only "a".
func Sanitize(s string) string {
	out := html.UnescapeString(markup.Sanitize(dropInvisible(s)))
	return strings.TrimSpace(dropInvisible(out))
}

func dropInvisible(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFC, runes.Remove(invisible)), s)
	if err != nil {
		return s
	}
	return out
}

// PrepareProfile sanitizes and validates raw form input.
func PrepareProfile(f state.Fields) (chain.Profile, error) {
	p := chain.Profile{
		Name:       Sanitize(f.Name),
		Profession: Sanitize(f.Profession),
		Bio:        Sanitize(f.Bio),
	}

	for _, field := range []struct{ name, value string }{
		{"name", p.Name},
		{"profession", p.Profession},
		{"bio", p.Bio},
	} {
		if field.value == "" {
			return chain.Profile{}, &ValidationError{Field: field.name, Reason: "must not be empty"}
		}
	}

	age, err := strconv.ParseInt(Sanitize(f.Age), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return chain.Profile{}, &ValidationError{Field: "age", Reason: "must be a whole number"}
	}
	if err != nil || age < MinAge || age > MaxAge {
		return chain.Profile{}, &ValidationError{Field: "age", Reason: "must be between 1 and 150"}
	}
	p.Age = uint32(age)

	return p, nil
}
