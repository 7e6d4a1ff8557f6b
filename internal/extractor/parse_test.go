package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumberedRules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "mixed separators, noise and sentinel",
			raw:  "##1. Be more direct\n##2: Use concrete examples\nrandom line\n##3 NONE",
			want: []string{"Be more direct", "Use concrete examples"},
		},
		{
			name: "only sentinel",
			raw:  "NONE",
			want: nil,
		},
		{
			name: "numbered sentinel any case",
			raw:  "##1. none",
			want: nil,
		},
		{
			name: "surrounding whitespace and CRLF",
			raw:  "  ##1.   Keep it under a minute  \r\n\t##2:Say the hook first\r\n",
			want: []string{"Keep it under a minute", "Say the hook first"},
		},
		{
			name: "multi digit numbers",
			raw:  "##10. Tenth rule",
			want: []string{"Tenth rule"},
		},
		{
			name: "single hash is not a rule",
			raw:  "#1. Not a rule\n1. Also not a rule",
			want: nil,
		},
		{
			name: "marker without number is ignored",
			raw:  "##. Missing number",
			want: nil,
		},
		{
			name: "markers with empty payloads",
			raw:  "##2:\n##4. \n##5\n  ##6.  \r\n",
			want: nil,
		},
		{
			name: "empty payloads mixed with rules",
			raw:  "  ##1. Be direct\r\n##2:\n##3 none\n##4.  ",
			want: []string{"Be direct"},
		},
		{
			name: "text without separator",
			raw:  "##7Lead with the answer",
			want: []string{"Lead with the answer"},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
		{
			name: "rule text mentioning none is kept",
			raw:  "##1. None of that corporate jargon",
			want: []string{"None of that corporate jargon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumberedRules(tt.raw))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}
