package term

import "fmt"

// Color is a terminal color: either an 8-bit palette index (0-255) or a
// 24-bit RGB triple. The zero value is the RGB color #000000, which is not
// Equal to palette index 0 (#000).
type Color struct {
	indexed bool
	index   uint8
	r, g, b uint8
}

// EightBit returns the color for the given palette index.
func EightBit(index uint8) Color {
	return Color{indexed: true, index: index}
}

// RGB returns the 24-bit color for the given components.
func RGB(r, g, b uint8) Color {
	return Color{r: r, g: g, b: b}
}

// ParseEightBit validates an 8-bit palette code from a CSI parameter.
// Any value in 0..=255 is accepted.
func ParseEightBit(code int) (Color, bool) {
	if code < 0 || code > 255 {
		return Color{}, false
	}
	return EightBit(uint8(code)), true
}

// ParseRGB validates three CSI parameters as RGB components, rejecting any
// value outside 0..=255.
func ParseRGB(r, g, b int) (Color, bool) {
	if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
		return Color{}, false
	}
	return RGB(uint8(r), uint8(g), uint8(b)), true
}

// Hex renders the color as a lowercase CSS color string: a palette color
// returns its DefaultPalette entry verbatim (which may be the 3-digit
// shorthand, e.g. "#a00"), an RGB color returns "#rrggbb".
func (c Color) Hex() string {
	if c.indexed {
		return DefaultPalette[c.index]
	}
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// Equal reports whether two colors resolve to the same rendered value.
func (c Color) Equal(o Color) bool {
	return c.Hex() == o.Hex()
}

// Named palette indices used by SGR reset/default handling (39/49 and reset).
const (
	paletteBlack       uint8 = 0
	paletteBrightWhite uint8 = 15
)

// DefaultForeground is the color SGR 0/39 resets the foreground to.
var DefaultForeground = EightBit(paletteBrightWhite)

// DefaultBackground is the color SGR 0/49 resets the background to.
var DefaultBackground = EightBit(paletteBlack)

// DefaultPalette is the 256-entry hex color table: 0-15 are the classic
// system colors, 16-231 a 6x6x6 RGB cube, and 232-255 a 24-step grayscale
// ramp. The literal values (including the shorthand 3-digit forms at the
// pure color stops) are the exact table this system has always shipped;
// callers must not re-derive it from a cube/grayscale formula, since doing
// so has previously produced colors that don't match this string-for-string.
var DefaultPalette = [256]string{
	"#000", "#a00", "#0a0", "#a60", "#00a", "#a0a", "#0aa", "#aaa",
	"#555", "#f55", "#5f5", "#ff5", "#55f", "#f5f", "#5ff", "#fff",
	"#000", "#00005f", "#000087", "#0000af", "#0000d7", "#00f", "#005f00", "#005f5f",
	"#005f87", "#005faf", "#005fd7", "#005fff", "#008700", "#00875f", "#008787", "#0087af",
	"#0087d7", "#0087ff", "#00af00", "#00af5f", "#00af87", "#00afaf", "#00afd7", "#00afff",
	"#00d700", "#00d75f", "#00d787", "#00d7af", "#00d7d7", "#00d7ff", "#0f0", "#00ff5f",
	"#00ff87", "#00ffaf", "#00ffd7", "#0ff", "#5f0000", "#5f005f", "#5f0087", "#5f00af",
	"#5f00d7", "#5f00ff", "#5f5f00", "#5f5f5f", "#5f5f87", "#5f5faf", "#5f5fd7", "#5f5fff",
	"#5f8700", "#5f875f", "#5f8787", "#5f87af", "#5f87d7", "#5f87ff", "#5faf00", "#5faf5f",
	"#5faf87", "#5fafaf", "#5fafd7", "#5fafff", "#5fd700", "#5fd75f", "#5fd787", "#5fd7af",
	"#5fd7d7", "#5fd7ff", "#5fff00", "#5fff5f", "#5fff87", "#5fffaf", "#5fffd7", "#5fffff",
	"#870000", "#87005f", "#870087", "#8700af", "#8700d7", "#8700ff", "#875f00", "#875f5f",
	"#875f87", "#875faf", "#875fd7", "#875fff", "#878700", "#87875f", "#878787", "#8787af",
	"#8787d7", "#8787ff", "#87af00", "#87af5f", "#87af87", "#87afaf", "#87afd7", "#87afff",
	"#87d700", "#87d75f", "#87d787", "#87d7af", "#87d7d7", "#87d7ff", "#87ff00", "#87ff5f",
	"#87ff87", "#87ffaf", "#87ffd7", "#87ffff", "#af0000", "#af005f", "#af0087", "#af00af",
	"#af00d7", "#af00ff", "#af5f00", "#af5f5f", "#af5f87", "#af5faf", "#af5fd7", "#af5fff",
	"#af8700", "#af875f", "#af8787", "#af87af", "#af87d7", "#af87ff", "#afaf00", "#afaf5f",
	"#afaf87", "#afafaf", "#afafd7", "#afafff", "#afd700", "#afd75f", "#afd787", "#afd7af",
	"#afd7d7", "#afd7ff", "#afff00", "#afff5f", "#afff87", "#afffaf", "#afffd7", "#afffff",
	"#d70000", "#d7005f", "#d70087", "#d700af", "#d700d7", "#d700ff", "#d75f00", "#d75f5f",
	"#d75f87", "#d75faf", "#d75fd7", "#d75fff", "#d78700", "#d7875f", "#d78787", "#d787af",
	"#d787d7", "#d787ff", "#d7af00", "#d7af5f", "#d7af87", "#d7afaf", "#d7afd7", "#d7afff",
	"#d7d700", "#d7d75f", "#d7d787", "#d7d7af", "#d7d7d7", "#d7d7ff", "#d7ff00", "#d7ff5f",
	"#d7ff87", "#d7ffaf", "#d7ffd7", "#d7ffff", "#f00", "#ff005f", "#ff0087", "#ff00af",
	"#ff00d7", "#f0f", "#ff5f00", "#ff5f5f", "#ff5f87", "#ff5faf", "#ff5fd7", "#ff5fff",
	"#ff8700", "#ff875f", "#ff8787", "#ff87af", "#ff87d7", "#ff87ff", "#ffaf00", "#ffaf5f",
	"#ffaf87", "#ffafaf", "#ffafd7", "#ffafff", "#ffd700", "#ffd75f", "#ffd787", "#ffd7af",
	"#ffd7d7", "#ffd7ff", "#ff0", "#ffff5f", "#ffff87", "#ffffaf", "#ffffd7", "#fff",
	"#080808", "#121212", "#1c1c1c", "#262626", "#303030", "#3a3a3a", "#444", "#4e4e4e",
	"#585858", "#626262", "#6c6c6c", "#767676", "#808080", "#8a8a8a", "#949494", "#9e9e9e",
	"#a8a8a8", "#b2b2b2", "#bcbcbc", "#c6c6c6", "#d0d0d0", "#dadada", "#e4e4e4", "#eee",
}
