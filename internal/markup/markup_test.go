package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Buy milk", "<p>Buy milk</p>\n"},
		{"hard wraps", "line one\nline two", "<p>line one<br>\nline two</p>\n"},
		{"emphasis", "**due** Friday", "<p><strong>due</strong> Friday</p>\n"},
		{"strikethrough", "~~done~~", "<p><del>done</del></p>\n"},
		{"raw html dropped", "<script>alert(1)</script>", "<!-- raw HTML omitted -->\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRender_Linkify(t *testing.T) {
	assert.Contains(t, Render("see https://example.com"), `<a href="https://example.com">https://example.com</a>`)
}
