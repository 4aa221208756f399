package term

import "testing"

func TestClassNameSequence(t *testing.T) {
	cases := map[int]string{
		0:  "a",
		1:  "b",
		25: "z",
		26: "ab",
		27: "bb",
	}
	for index, want := range cases {
		if got := className(index); got != want {
			t.Errorf("className(%d): expected %q, got %q", index, want, got)
		}
	}
}

func TestStyleDictDeterministicReuse(t *testing.T) {
	d := NewStyleDict()
	a1 := d.ClassFor(EightBit(1), false)
	b1 := d.ClassFor(EightBit(2), true)
	a2 := d.ClassFor(EightBit(1), false)

	if a1 != a2 {
		t.Errorf("expected the same (color, bold) pair to reuse its class, got %q then %q", a1, a2)
	}
	if a1 == b1 {
		t.Errorf("expected distinct classes for distinct (color, bold) pairs, both got %q", a1)
	}
	if a1 != "a" || b1 != "b" {
		t.Errorf("expected insertion-order class names a, b; got %q, %q", a1, b1)
	}
}

func TestStyleDictCSS(t *testing.T) {
	d := NewStyleDict()
	d.ClassFor(EightBit(0), true)
	css := d.CSS()
	want := ".a{color:#000;font-weight:bold}\n"
	if css != want {
		t.Errorf("expected %q, got %q", want, css)
	}
}
