package types_test

import (
	"testing"

	"github.com/learnloop/lumen/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestParsePersona(t *testing.T) {
	tests := []struct {
		input string
		want  types.Persona
	}{
		{"friendly", types.PersonaFriendly},
		{"strict", types.PersonaStrict},
		{"humorous", types.PersonaHumorous},
		{"STRICT", types.PersonaStrict},
		{" Humorous ", types.PersonaHumorous},
		{"grumpy", types.PersonaFriendly},
		{"", types.PersonaFriendly},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gt.Value(t, types.ParsePersona(tt.input)).Equal(tt.want)
		})
	}
}

func TestAllPersonasAreValid(t *testing.T) {
	for _, p := range types.AllPersonas() {
		gt.Bool(t, p.IsValid()).True()
	}
	gt.Bool(t, types.Persona("grumpy").IsValid()).False()
}
