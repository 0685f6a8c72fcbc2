package types

import "strings"

// Persona selects the tone of generated answers
type Persona string

const (
	PersonaFriendly Persona = "friendly"
	PersonaStrict   Persona = "strict"
	PersonaHumorous Persona = "humorous"
)

// AllPersonas returns all supported personas
func AllPersonas() []Persona {
	return []Persona{
		PersonaFriendly,
		PersonaStrict,
		PersonaHumorous,
	}
}

// IsValid checks if the persona is one of the supported values
func (p Persona) IsValid() bool {
	switch p {
	case PersonaFriendly,
		PersonaStrict,
		PersonaHumorous:
		return true
	default:
		return false
	}
}

// String returns the string representation of the persona
func (p Persona) String() string {
	return string(p)
}

// ParsePersona resolves s case-insensitively. Unknown values fall back to
// PersonaFriendly.
func ParsePersona(s string) Persona {
	p := Persona(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return PersonaFriendly
	}
	return p
}
