package lexer

// Stream is a cursor over a token slice ending in EOF.
type Stream struct {
	toks []Token
	pos  int
}

// NewStream returns a stream over toks. toks must end with an EOF token.
func NewStream(toks []Token) *Stream {
	if len(toks) == 0 || toks[len(toks)-1].Kind != EOF {
		toks = append(toks, Token{Kind: EOF})
	}
	return &Stream{toks: toks}
}

// Peek returns the token n positions ahead without consuming it.
func (s *Stream) Peek(n int) Token {
	if s.pos+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos+n]
}

// Next consumes and returns the current token. At EOF it keeps returning EOF.
func (s *Stream) Next() Token {
	t := s.toks[s.pos]
	if t.Kind != EOF {
		s.pos++
	}
	return t
}

// AtEOF reports whether the stream is exhausted.
func (s *Stream) AtEOF() bool {
	return s.toks[s.pos].Kind == EOF
}

// Accept consumes the current token if it is text, ignoring case.
func (s *Stream) Accept(text string) bool {
	if s.Peek(0).Is(text) {
		s.pos++
		return true
	}
	return false
}

// Mark returns the current position for Slice and Reset.
func (s *Stream) Mark() int {
	return s.pos
}

// Reset moves the cursor back to a mark.
func (s *Stream) Reset(mark int) {
	s.pos = mark
}

// Slice returns the tokens consumed since mark.
func (s *Stream) Slice(mark int) []Token {
	return s.toks[mark:s.pos]
}

var closers = map[string]string{"(": ")", "[": "]", "{": "}"}

// SkipBalanced consumes a bracketed group. The current token must be "(",
// "[" or "{"; it returns the tokens strictly inside the group and false if
// the group is not properly closed before EOF.
func (s *Stream) SkipBalanced() ([]Token, bool) {
	open := s.Next()
	closer, ok := closers[open.Text]
	if !ok || open.Kind != Punct {
		return nil, false
	}
	start := s.pos
	depth := 1
	for !s.AtEOF() {
		t := s.Next()
		switch t.Text {
		case "(", "[", "{":
			if t.Kind == Punct {
				depth++
			}
		case ")", "]", "}":
			if t.Kind == Punct {
				depth--
				if depth == 0 {
					if t.Text != closer {
						return s.toks[start : s.pos-1], false
					}
					return s.toks[start : s.pos-1], true
				}
			}
		}
	}
	return s.toks[start:s.pos], false
}

// Split cuts toks at every top-level separator sep.
func Split(toks []Token, sep string) [][]Token {
	var parts [][]Token
	depth := 0
	start := 0
	for i, t := range toks {
		if t.Kind != Punct {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, toks[start:])
}

// Index returns the position of the first top-level token spelled text, or
// -1.
func Index(toks []Token, text string) int {
	depth := 0
	for i, t := range toks {
		if t.Kind != Punct && t.Kind != Ident {
			continue
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
			continue
		case ")", "]", "}":
			depth--
			continue
		}
		if depth == 0 && t.Is(text) {
			return i
		}
	}
	return -1
}
