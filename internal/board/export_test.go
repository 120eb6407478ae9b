package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes []Note
		want  string
	}{
		{"empty", nil, ""},
		{
			"single",
			[]Note{{Title: "Buy Milk", Content: "today"}},
			"Buy Milk\n--------\ntoday",
		},
		{
			"divided",
			[]Note{{Title: "A", Content: "x"}, {Title: "Bc", Content: "y\nz"}},
			"A\n-\nx\n\n-------------------\n\nBc\n--\ny\nz",
		},
		{
			"underline counts characters",
			[]Note{{Title: "חלב", Content: ""}},
			"חלב\n---\n",
		},
		{
			"underline counts utf-16 units",
			[]Note{{Title: "🍕 x", Content: "c"}},
			"🍕 x\n----\nc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNotes(tt.notes))
		})
	}
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "fridgeflow-notes.txt", ExportFilename)
}

func TestExportText_UsesBoardNotes(t *testing.T) {
	b := newTestBoard(&fakeStore{})
	b.Hydrate("u1", []Note{{ID: 1, Title: "T", Content: "C"}}, nil)
	assert.Equal(t, "T\n-\nC", b.ExportText())
}
