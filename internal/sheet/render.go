package sheet

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cellWidth is the display width each cell is right-aligned to by String.
const cellWidth = 20

// String renders the rows for a terminal, each cell right-aligned to a fixed
// display width. Wide runes count as two columns.
func (t *Table) String() string {
	var b strings.Builder
	_ = t.preserve(func() error {
		t.toRows()
		for i, row := range t.vectors {
			if i > 0 {
				b.WriteByte('\n')
			}
			for j, c := range row {
				if j > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(runewidth.FillLeft(c.String(), cellWidth))
			}
		}
		return nil
	})
	return b.String()
}
