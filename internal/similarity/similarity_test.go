package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"drops short and stop words", "Never use filler words", []string{"filler", "words"}},
		{"punctuation splits words", "Don't ramble!", []string{"don", "ramble"}},
		{"keeps digits and underscores", "Hook in 3s, max_len 120", []string{"hook", "max_len", "120"}},
		{"only stop words", "the and you", nil},
		{"empty", "", nil},
		{"newlines and tabs", "keep\tit\nshort", []string{"keep", "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Open with a bold hook", "Open with a bold hook", 1.0},
		{"identical ignoring case and punctuation", "Open with a BOLD hook!", "open with a bold hook", 1.0},
		{"disjoint", "Keep sentences short", "Explain ventilation basics", 0.0},
		{"both empty", "", "", 0.0},
		{"only stop words", "you and the", "it is what it is", 0.0},
		{"one side empty", "short sentences", "", 0.0},
		{"partial overlap", "Never use filler words", "Avoid filler words and hedging", 0.5},
		{"single word", "storytelling", "storytelling", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Never use filler words", "Avoid filler words and hedging"},
		{"Proper ventilation and filtration reduce indoor carbon dioxide levels quickly", "Ventilation plus filtration helps allergy sufferers sleep deeper"},
		{"", "something here"},
		{"Talk like a coach", "Talk like a friend, not a coach"},
	}
	for _, p := range pairs {
		assert.Equal(t, Jaccard(p[0], p[1]), Jaccard(p[1], p[0]), "pair %q / %q", p[0], p[1])
	}
}

func TestJaccard_Bounded(t *testing.T) {
	inputs := []string{"", "a", "filler words", "Filler words, hedging and waffle", "waffle"}
	for _, a := range inputs {
		for _, b := range inputs {
			s := Jaccard(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("never"))
	assert.True(t, IsStopWord("using"))
	assert.False(t, IsStopWord("filler"))
}
