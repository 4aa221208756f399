package term

// Cell is the smallest stylable unit of terminal output: a single
// codepoint plus the colors and attributes it was printed with. Grapheme
// clusters spanning more than one codepoint are not combined into a single
// cell; this is a known limitation.
type Cell struct {
	Char rune

	Fg Color
	Bg Color

	Bold      bool
	Italic    bool
	Underline bool
	Dim       bool
}

// NewCell returns a blank cell (a space) with default colors and no
// attributes set.
func NewCell() Cell {
	return Cell{
		Char: ' ',
		Fg:   DefaultForeground,
		Bg:   DefaultBackground,
	}
}

// SameStyle reports whether two cells would render with the same CSS
// class: equal foreground color and bold flag. Background, italic,
// underline, and dim do not currently factor into the style dictionary
// (see Renderer doc) so they are intentionally excluded here.
func (c Cell) SameStyle(o Cell) bool {
	return c.Bold == o.Bold && c.Fg.Equal(o.Fg)
}
