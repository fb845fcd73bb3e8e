package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVacuousAcceptance(t *testing.T) {
	for _, spec := range []string{"", "   ", "\n\t"} {
		res := Validate("any text at all", spec)
		assert.True(t, res.Pass)
		assert.Empty(t, res.Missing)
		assert.Equal(t, "no acceptance criteria", res.Reason)
	}
}

func TestValidateKeysForm(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		spec    string
		pass    bool
		missing []string
	}{
		{
			name:    "all keys present",
			text:    "Define the input, the output and the constraints.",
			spec:    "keys: input, output, constraints",
			pass:    true,
			missing: []string{},
		},
		{
			name:    "one key missing",
			text:    "This prompt mentions input and output only.",
			spec:    "keys: input, output, constraints",
			pass:    false,
			missing: []string{"constraints"},
		},
		{
			name:    "case insensitive",
			text:    "INPUT and OUTPUT are both here.",
			spec:    "keys: input, output",
			pass:    true,
			missing: []string{},
		},
		{
			name:    "keys split across newlines",
			text:    "covers alpha and beta",
			spec:    "keys: alpha\nbeta\ngamma",
			pass:    false,
			missing: []string{"gamma"},
		},
		{
			name:    "keys marker not at start",
			text:    "has the token field",
			spec:    "required keys: token",
			pass:    true,
			missing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.text, tt.spec)
			assert.Equal(t, tt.pass, res.Pass)
			assert.Equal(t, tt.missing, res.Missing)
		})
	}
}

func TestValidateChecklistForm(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		spec    string
		pass    bool
		missing []string
	}{
		{
			name:    "newline separated items",
			text:    "mentions error handling and unit tests",
			spec:    "error handling\nunit tests",
			pass:    true,
			missing: []string{},
		},
		{
			name:    "semicolon separated with one missing",
			text:    "only talks about logging",
			spec:    "logging; tracing",
			pass:    false,
			missing: []string{"tracing"},
		},
		{
			name:    "single comma item re-split",
			text:    "covers apples and pears",
			spec:    "apples, pears, plums",
			pass:    false,
			missing: []string{"plums"},
		},
		{
			name:    "whitespace-only items dropped",
			text:    "has the only real item",
			spec:    "real item;   ;\n  \n",
			pass:    true,
			missing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.text, tt.spec)
			assert.Equal(t, tt.pass, res.Pass)
			assert.Equal(t, tt.missing, res.Missing)
			assert.Equal(t, "checklist", res.Reason)
		})
	}
}

func TestValidateIsPure(t *testing.T) {
	first := Validate("some candidate", "keys: a, b")
	second := Validate("some candidate", "keys: a, b")
	assert.Equal(t, first, second)

	// passing once means passing again against the same spec
	passing := Validate("contains a and b", "keys: a, b")
	assert.True(t, passing.Pass)
	assert.True(t, Validate("contains a and b", "keys: a, b").Pass)
}
