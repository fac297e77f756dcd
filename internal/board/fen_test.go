package board

import "testing"

func TestStartPositionRoundTrip(t *testing.T) {
	p := Start()
	if len(p) != 32 {
		t.Fatalf("start position has %d pieces, want 32", len(p))
	}
	if p["e1"] != "wK" || p["d8"] != "bQ" || p["a2"] != "wP" {
		t.Fatalf("start position misplaced pieces: %v", p)
	}
	if fen := ToFEN(p); fen != StartFEN {
		t.Fatalf("ToFEN(start) = %q, want %q", fen, StartFEN)
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		"8/8/8/8/8/8/8/8",
		StartFEN,
		"4k3/8/8/8/8/8/4P3/4K3",
		"r3k2r/8/8/3Q4/8/8/8/R3K2R",
	}
	for _, fen := range fens {
		p, err := FromFEN(fen)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", fen, err)
		}
		if got := ToFEN(p); got != fen {
			t.Errorf("ToFEN(FromFEN(%q)) = %q", fen, got)
		}
		q, err := FromFEN(ToFEN(p))
		if err != nil {
			t.Fatalf("re-decode %q: %v", fen, err)
		}
		if !p.Equal(q) {
			t.Errorf("position round trip mismatch for %q", fen)
		}
	}
}

func TestFromFENIgnoresTrailingFields(t *testing.T) {
	p, err := FromFEN(StartFEN + " w KQkq - 0 1")
	if err != nil {
		t.Fatalf("full FEN rejected: %v", err)
	}
	if !p.Equal(Start()) {
		t.Fatalf("full FEN decoded differently")
	}
}

func TestFromFENRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8",      // 7 ranks
		"8/8/8/8/8/8/8/8/8",  // 9 ranks
		"9/8/8/8/8/8/8/8",    // bad digit
		"7/8/8/8/8/8/8/8",    // narrow rank
		"pppppppppp/8/8/8/8/8/8/8", // wide rank
		"8/8/8/8/8/8/8/7x",   // bad character
	}
	for _, fen := range bad {
		if _, err := FromFEN(fen); err == nil {
			t.Errorf("FromFEN(%q) accepted", fen)
		}
	}
}

func TestValidSquareAndPiece(t *testing.T) {
	for _, sq := range []string{"a1", "h8", "e4"} {
		if !ValidSquare(sq) {
			t.Errorf("ValidSquare(%q) = false", sq)
		}
	}
	for _, sq := range []string{"", "e", "i1", "a9", "e44", "E4"} {
		if ValidSquare(sq) {
			t.Errorf("ValidSquare(%q) = true", sq)
		}
	}
	for _, pc := range []string{"wP", "bK", "wQ"} {
		if !ValidPiece(pc) {
			t.Errorf("ValidPiece(%q) = false", pc)
		}
	}
	for _, pc := range []string{"", "w", "xP", "wX", "Wp", "wp"} {
		if ValidPiece(pc) {
			t.Errorf("ValidPiece(%q) = true", pc)
		}
	}
}

func TestNormalize(t *testing.T) {
	if p := Normalize(nil); len(p) != 0 {
		t.Errorf("Normalize(nil) = %v", p)
	}
	if p := Normalize("start"); !p.Equal(Start()) {
		t.Errorf("Normalize(start) wrong")
	}
	if p := Normalize(StartFEN); !p.Equal(Start()) {
		t.Errorf("Normalize(fen) wrong")
	}
	src := Position{"e4": "wP"}
	p := Normalize(src)
	if !p.Equal(src) {
		t.Errorf("Normalize(position) = %v", p)
	}
	p["e4"] = "bP"
	if src["e4"] != "wP" {
		t.Errorf("Normalize returned an aliased position")
	}
	// Unparseable inputs fall back to an empty position, silently.
	for _, v := range []any{"not a fen", Position{"e9": "wP"}, Position{"e4": "purple"}, 42} {
		if p := Normalize(v); len(p) != 0 {
			t.Errorf("Normalize(%v) = %v, want empty", v, p)
		}
	}
}

func TestDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"e4", "e4", 0},
		{"e2", "e4", 2},
		{"a1", "h8", 7},
		{"a1", "b3", 2},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%s, %s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
