package chain

import (
	"fmt"
	"unicode/utf8"
)

// Limits enforced by the record store on upsert arguments.
const (
	MaxNameLength       = 64
	MaxProfessionLength = 64
	MaxBioLength        = 1024
)

// Profile is the record kept per account. A record with an empty Name is
// treated as absent.
type Profile struct {
	Name       string `json:"name"`
	Age        uint32 `json:"age"`
	Profession string `json:"profession"`
	Bio        string `json:"bio"`
}

func (p Profile) IsEmpty() bool {
	return p.Name == ""
}

// CheckArguments validates p as upsert call arguments.
func (p Profile) CheckArguments() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"name", p.Name, MaxNameLength},
		{"profession", p.Profession, MaxProfessionLength},
		{"bio", p.Bio, MaxBioLength},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return fmt.Errorf("%w: %s is not valid UTF-8", ErrMalformedArgument, f.name)
		}
		if n := utf8.RuneCountInString(f.value); n > f.max {
			return fmt.Errorf("%w: %s is %d characters, limit %d", ErrMalformedArgument, f.name, n, f.max)
		}
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrMalformedArgument)
	}
	return nil
}
