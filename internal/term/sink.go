package term

import (
	"image/color"

	"github.com/danielgatis/go-ansicode"

	"github.com/ubfleet/ubfleet/internal/applog"
)

// Sink implements ansicode.Handler, translating a parsed control-sequence
// stream into Screen operations. Only the subset of actions this system's
// transcripts actually rely on has real behavior; everything else is
// logged and ignored, per the sink's own no-op contract (never fatal).
type Sink struct {
	screen  *Screen
	attr    attrState
	decoder *ansicode.Decoder
}

// attrState is the renderer's current SGR attribute state, applied to every
// cell printed until the next attribute change.
type attrState struct {
	fg, bg                       Color
	bold, italic, underline, dim bool
}

func defaultAttrState() attrState {
	return attrState{fg: DefaultForeground, bg: DefaultBackground}
}

// NewSink builds a Sink over a fresh Screen with the given row width and
// eviction callback.
func NewSink(width int, onEvict EvictFunc) *Sink {
	s := &Sink{
		screen: NewScreen(width, onEvict),
		attr:   defaultAttrState(),
	}
	s.decoder = ansicode.NewDecoder(s)
	return s
}

// Screen exposes the underlying screen, mainly for tests and for a final
// flush of whatever rows remain in the ring.
func (s *Sink) Screen() *Screen {
	return s.screen
}

// Write feeds raw transcript bytes through the control-sequence decoder,
// which dispatches printables and control actions back onto this Sink. It
// always reports the full length written and a nil error: a malformed
// sequence is logged and ignored by the relevant handler method, never
// fatal to the decode.
func (s *Sink) Write(p []byte) (int, error) {
	return s.decoder.Write(p)
}

func (s *Sink) currentCell(r rune) Cell {
	return Cell{
		Char:      r,
		Fg:        s.attr.fg,
		Bg:        s.attr.bg,
		Bold:      s.attr.bold,
		Italic:    s.attr.italic,
		Underline: s.attr.underline,
		Dim:       s.attr.dim,
	}
}

func (s *Sink) ignore(action string) {
	applog.Debug().Str("action", action).Msg("term: ignoring unsupported action")
}

// Input is called for every printable character.
func (s *Sink) Input(r rune) {
	s.screen.Print(s.currentCell(r))
}

// LineFeed, CarriageReturn, and Backspace are the C0 controls this model
// gives real behavior.
func (s *Sink) LineFeed() { s.screen.Linefeed() }
func (s *Sink) CarriageReturn() { s.screen.CarriageReturn() }
func (s *Sink) Backspace() { s.screen.Backspace() }

// Bell, and the remaining no-op C0 bytes (US, NUL, SOH), reach here via
// the handler's execute path with nothing to do.
func (s *Sink) Bell() {}

// Tab prints four blank cells, matching a plain terminal's common tab
// stop behavior for the transcripts this model replays.
func (s *Sink) Tab(n int) {
	for i := 0; i < 4; i++ {
		s.screen.Print(s.currentCell(' '))
	}
}

func (s *Sink) HorizontalTabSet() { s.ignore("HorizontalTabSet") }
func (s *Sink) MoveForwardTabs(n int) { s.ignore("MoveForwardTabs") }
func (s *Sink) MoveBackwardTabs(n int) { s.ignore("MoveBackwardTabs") }
func (s *Sink) ClearTabs(mode ansicode.TabulationClearMode) { s.ignore("ClearTabs") }

// Goto, GotoCol, and GotoLine are the absolute-position moves.
func (s *Sink) Goto(row, col int) { s.screen.HandleMove(row, col) }
func (s *Sink) GotoCol(col int) { s.screen.SetColumn(col) }
func (s *Sink) GotoLine(row int) { s.screen.HandleMove(row, 0) }

// MoveUp/Down/Forward/Backward are the relative moves; the Cr variants also
// reset the column, matching a carriage return.
func (s *Sink) MoveUp(n int) { s.screen.MoveUpBy(n) }
func (s *Sink) MoveDown(n int) { s.screen.MoveDownBy(n) }
func (s *Sink) MoveForward(n int) { s.screen.MoveRightBy(n) }
func (s *Sink) MoveBackward(n int) { s.screen.MoveLeftBy(n) }

func (s *Sink) MoveUpCr(n int) {
	s.screen.MoveUpBy(n)
	s.screen.CarriageReturn()
}

func (s *Sink) MoveDownCr(n int) {
	s.screen.MoveDownBy(n)
	s.screen.CarriageReturn()
}

// ClearLine implements CSI K (erase in line).
func (s *Sink) ClearLine(mode ansicode.LineClearMode) {
	switch mode {
	case ansicode.LineClearModeRight:
		s.screen.EraseInLine(0)
	case ansicode.LineClearModeLeft:
		s.screen.EraseInLine(1)
	case ansicode.LineClearModeAll:
		s.screen.EraseInLine(2)
	default:
		s.ignore("ClearLine")
	}
}

// ClearScreen implements CSI J. Whole-screen modes are a
// deliberate no-op on a FIFO ring that has already evicted earlier rows.
func (s *Sink) ClearScreen(mode ansicode.ClearMode) {
	switch mode {
	case ansicode.ClearModeBelow, ansicode.ClearModeAbove:
		s.ignore("ClearScreen")
	case ansicode.ClearModeAll, ansicode.ClearModeSaved:
		s.screen.EraseInDisplay(int(mode))
	default:
		s.ignore("ClearScreen")
	}
}

// SetTerminalCharAttribute implements CSI m (SGR). Apart from ResetState,
// which restores the default attributes, this is the only place the sink's
// attribute state is mutated.
func (s *Sink) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		s.attr = defaultAttrState()
	case ansicode.CharAttributeBold:
		s.attr.bold = true
	case ansicode.CharAttributeDim:
		s.attr.dim = true
	case ansicode.CharAttributeItalic:
		s.attr.italic = true
	case ansicode.CharAttributeUnderline:
		s.attr.underline = true
	case ansicode.CharAttributeCancelBold, ansicode.CharAttributeCancelBoldDim:
		s.attr.bold = false
		s.attr.dim = false
	case ansicode.CharAttributeCancelItalic:
		s.attr.italic = false
	case ansicode.CharAttributeCancelUnderline:
		s.attr.underline = false
	case ansicode.CharAttributeBlinkSlow, ansicode.CharAttributeBlinkFast,
		ansicode.CharAttributeReverse, ansicode.CharAttributeCancelBlink,
		ansicode.CharAttributeCancelReverse, ansicode.CharAttributeHidden,
		ansicode.CharAttributeCancelHidden, ansicode.CharAttributeStrike,
		ansicode.CharAttributeCancelStrike:
		// Recognized but ignored, matching blink/inverse/hidden/strike.

	case ansicode.CharAttributeForeground:
		if c, ok := s.resolveColor(attr, true); ok {
			s.attr.fg = c
		} else {
			s.attr.fg = DefaultForeground
		}

	case ansicode.CharAttributeBackground:
		if c, ok := s.resolveColor(attr, false); ok {
			s.attr.bg = c
		} else {
			s.attr.bg = DefaultBackground
		}

	case ansicode.CharAttributeUnderlineColor:
		// Underline color is not part of this model's style dictionary.

	default:
		s.ignore("SetTerminalCharAttribute")
	}
}

// resolveColor turns an extended-color SGR attribute into a Color,
// matching the sink's 8-bit-or-24-bit color model.
func (s *Sink) resolveColor(attr ansicode.TerminalCharAttribute, fg bool) (Color, bool) {
	switch {
	case attr.RGBColor != nil:
		return ParseRGB(int(attr.RGBColor.R), int(attr.RGBColor.G), int(attr.RGBColor.B))
	case attr.IndexedColor != nil:
		return ParseEightBit(int(attr.IndexedColor.Index))
	case attr.NamedColor != nil:
		return resolveNamedColor(int(*attr.NamedColor), fg)
	default:
		return Color{}, false
	}
}

// resolveNamedColor maps the decoder's named colors to palette entries.
// Basic and bright colors (SGR 30-37/90-97 and 40-47/100-107) arrive as
// names 0-15; names 256 and 257 are the foreground/background defaults
// (SGR 39/49).
func resolveNamedColor(name int, fg bool) (Color, bool) {
	switch {
	case name >= 0 && name < 16:
		return EightBit(uint8(name)), true
	default:
		if fg {
			return DefaultForeground, true
		}
		return DefaultBackground, true
	}
}

// DeviceStatus, IdentifyTerminal, and the title/clipboard/hyperlink/mode
// family of actions have no effect on a headless replay; they are
// acknowledged here only so Sink satisfies ansicode.Handler.
func (s *Sink) DeviceStatus(n int) { s.ignore("DeviceStatus") }
func (s *Sink) IdentifyTerminal(b byte) { s.ignore("IdentifyTerminal") }
func (s *Sink) ReportModifyOtherKeys() { s.ignore("ReportModifyOtherKeys") }
func (s *Sink) ReportKeyboardMode() { s.ignore("ReportKeyboardMode") }
func (s *Sink) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) { s.ignore("SetModifyOtherKeys") }
func (s *Sink) PushKeyboardMode(mode ansicode.KeyboardMode) { s.ignore("PushKeyboardMode") }
func (s *Sink) PopKeyboardMode(n int) { s.ignore("PopKeyboardMode") }
func (s *Sink) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
	s.ignore("SetKeyboardMode")
}
func (s *Sink) SetTitle(title string) { s.ignore("SetTitle") }
func (s *Sink) PushTitle() { s.ignore("PushTitle") }
func (s *Sink) PopTitle() { s.ignore("PopTitle") }
func (s *Sink) SetHyperlink(h *ansicode.Hyperlink) { s.ignore("SetHyperlink") }
func (s *Sink) ClipboardLoad(clipboard byte, terminator string) { s.ignore("ClipboardLoad") }
func (s *Sink) ClipboardStore(clipboard byte, data []byte) { s.ignore("ClipboardStore") }
func (s *Sink) SetDynamicColor(prefix string, index int, terminator string) {
	s.ignore("SetDynamicColor")
}
func (s *Sink) ResetColor(i int) { s.ignore("ResetColor") }
func (s *Sink) SetColor(index int, c color.Color) { s.ignore("SetColor") }

// SetMode/UnsetMode cover cursor show/hide and every other private mode;
// cursor visibility is a no-op in a headless replay, and every
// other mode (mouse reporting, bracketed paste, and the rest) has no
// meaning without an interactive terminal.
func (s *Sink) SetMode(mode ansicode.TerminalMode) {}
func (s *Sink) UnsetMode(mode ansicode.TerminalMode) {}

func (s *Sink) SetCursorStyle(style ansicode.CursorStyle) { s.ignore("SetCursorStyle") }
func (s *Sink) SetKeypadApplicationMode() { s.ignore("SetKeypadApplicationMode") }
func (s *Sink) UnsetKeypadApplicationMode() { s.ignore("UnsetKeypadApplicationMode") }
func (s *Sink) SetActiveCharset(n int) { s.ignore("SetActiveCharset") }
func (s *Sink) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	s.ignore("ConfigureCharset")
}
func (s *Sink) SetScrollingRegion(top, bottom int) { s.ignore("SetScrollingRegion") }
func (s *Sink) ScrollUp(n int) { s.ignore("ScrollUp") }
func (s *Sink) ScrollDown(n int) { s.ignore("ScrollDown") }
func (s *Sink) ReverseIndex() { s.ignore("ReverseIndex") }
func (s *Sink) SaveCursorPosition() { s.ignore("SaveCursorPosition") }
func (s *Sink) RestoreCursorPosition() { s.ignore("RestoreCursorPosition") }
func (s *Sink) Decaln() { s.ignore("Decaln") }
func (s *Sink) ResetState() { s.attr = defaultAttrState() }
func (s *Sink) Substitute() { s.ignore("Substitute") }

func (s *Sink) InsertBlank(n int) { s.ignore("InsertBlank") }
func (s *Sink) InsertBlankLines(n int) { s.ignore("InsertBlankLines") }
func (s *Sink) DeleteChars(n int) { s.ignore("DeleteChars") }
func (s *Sink) DeleteLines(n int) { s.ignore("DeleteLines") }
func (s *Sink) EraseChars(n int) { s.ignore("EraseChars") }

func (s *Sink) SetWorkingDirectory(uri string) { s.ignore("SetWorkingDirectory") }
func (s *Sink) WorkingDirectory() string       { return "" }
func (s *Sink) WorkingDirectoryPath() string   { return "" }

func (s *Sink) TextAreaSizeChars() { s.ignore("TextAreaSizeChars") }
func (s *Sink) TextAreaSizePixels() { s.ignore("TextAreaSizePixels") }
func (s *Sink) CellSizePixels() { s.ignore("CellSizePixels") }
func (s *Sink) SixelReceived(params [][]uint16, data []byte) { s.ignore("SixelReceived") }

func (s *Sink) ApplicationCommandReceived(data []byte) { s.ignore("ApplicationCommandReceived") }
func (s *Sink) PrivacyMessageReceived(data []byte) { s.ignore("PrivacyMessageReceived") }
func (s *Sink) StartOfStringReceived(data []byte) { s.ignore("StartOfStringReceived") }

var _ ansicode.Handler = (*Sink)(nil)
