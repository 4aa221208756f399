package term

import "testing"

func charOf(c Cell) rune { return c.Char }

func TestScreenPrintAndLinefeed(t *testing.T) {
	s := NewScreen(DefaultRowWidth, func(Row) {})
	s.Print(NewCell())
	s.Linefeed()
	if len(s.Rows()) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s.Rows()))
	}
}

func TestScreenEvictsOldestWhenFull(t *testing.T) {
	var evicted []Row
	s := NewScreen(DefaultRowWidth, func(r Row) { evicted = append(evicted, r) })

	// MaxRows prints+linefeeds fill the ring's MaxRows slots (0..MaxRows-1)
	// and the final linefeed, finding the ring already at capacity, evicts
	// the very first row ('a') to make room for the next one.
	for i := 0; i < MaxRows; i++ {
		c := NewCell()
		c.Char = rune('a' + i%26)
		s.Print(c)
		s.Linefeed()
	}
	if len(evicted) != 1 {
		t.Fatalf("expected one eviction once the ring fills, got %d", len(evicted))
	}
	if got := charOf(evicted[0].Cells()[0]); got != 'a' {
		t.Errorf("expected oldest row (starting with 'a') to be evicted first, got %q", got)
	}

	marker := NewCell()
	marker.Char = 'Z'
	s.Print(marker)
	s.Linefeed()

	if len(evicted) != 2 {
		t.Fatalf("expected a second eviction, got %d", len(evicted))
	}
	if got := charOf(evicted[1].Cells()[0]); got != 'b' {
		t.Errorf("expected second-oldest row (starting with 'b') to be evicted next, got %q", got)
	}
	if len(s.Rows()) != MaxRows {
		t.Fatalf("ring should stay at MaxRows, got %d", len(s.Rows()))
	}
}

func TestRowBackspaceAndCarriageReturn(t *testing.T) {
	r := NewRow(DefaultRowWidth)
	r.Print(NewCell())
	r.Print(NewCell())
	r.Backspace()
	if r.Column() != 1 {
		t.Errorf("expected column 1 after one backspace, got %d", r.Column())
	}
	r.Backspace()
	r.Backspace()
	if r.Column() != 0 {
		t.Errorf("backspace should saturate at 0, got %d", r.Column())
	}
	r.SetColumn(5)
	r.CarriageReturn()
	if r.Column() != 0 {
		t.Errorf("expected column 0 after carriage return, got %d", r.Column())
	}
}

func TestRowSetColumnExtendsWithBlanks(t *testing.T) {
	r := NewRow(DefaultRowWidth)
	r.SetColumn(3)
	if len(r.Cells()) != 3 {
		t.Fatalf("expected row extended to 3 cells, got %d", len(r.Cells()))
	}
	for _, c := range r.Cells() {
		if c.Char != ' ' {
			t.Errorf("expected blank cell, got %q", c.Char)
		}
	}
}

func TestEraseInLineModes(t *testing.T) {
	mk := func() *Row {
		r := NewRow(DefaultRowWidth)
		for _, ch := range "hello" {
			c := NewCell()
			c.Char = ch
			r.Print(c)
		}
		r.SetColumn(2)
		return &r
	}

	r := mk()
	r.EraseToEnd()
	if len(r.Cells()) != 2 {
		t.Errorf("mode 0 should truncate to cursor, got %d cells", len(r.Cells()))
	}

	r = mk()
	r.EraseToStart()
	for i := 0; i <= 2; i++ {
		if r.Cells()[i].Char != ' ' {
			t.Errorf("mode 1 should blank cell %d, got %q", i, r.Cells()[i].Char)
		}
	}
	if r.Cells()[3].Char != 'l' {
		t.Error("mode 1 should not touch cells after the cursor")
	}

	r = mk()
	r.EraseAll()
	for i, c := range r.Cells() {
		if c.Char != ' ' {
			t.Errorf("mode 2 should blank every cell, cell %d is %q", i, c.Char)
		}
	}
	if len(r.Cells()) != 5 {
		t.Error("mode 2 should preserve row length")
	}
}

func TestMoveUpByNeverEvictsOrAllocates(t *testing.T) {
	evictions := 0
	s := NewScreen(DefaultRowWidth, func(Row) { evictions++ })
	s.Linefeed()
	s.Linefeed()
	s.MoveUpBy(100)
	if evictions != 0 {
		t.Errorf("MoveUpBy should never evict, got %d evictions", evictions)
	}
	if s.currentLogicalRow() != 0 {
		t.Errorf("MoveUpBy should saturate at row 0, got row %d", s.currentLogicalRow())
	}
}

func TestMoveDownByTriggersScrollOut(t *testing.T) {
	evictions := 0
	s := NewScreen(DefaultRowWidth, func(Row) { evictions++ })
	// The ring starts with 1 row; MaxRows-1 linefeeds fill it exactly, and
	// each linefeed after that evicts one row.
	s.MoveDownBy(MaxRows + 5)
	want := (MaxRows + 5) - (MaxRows - 1)
	if evictions != want {
		t.Errorf("expected %d evictions from scrolling past capacity, got %d", want, evictions)
	}
}

func TestHandleMoveAbsolutePosition(t *testing.T) {
	s := NewScreen(DefaultRowWidth, func(Row) {})
	s.Linefeed()
	s.Linefeed()
	s.HandleMove(0, 4)
	if s.currentLogicalRow() != 0 {
		t.Errorf("expected row 0, got %d", s.currentLogicalRow())
	}
	if s.Current().Column() != 4 {
		t.Errorf("expected column 4, got %d", s.Current().Column())
	}
}
