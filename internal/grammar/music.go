package grammar

// bodyScanner carries measure state across the lines of one voice section:
// a prefix seen at the end of a line attaches to the next line's first
// measure.
type bodyScanner struct {
	measure  *Node
	prefixes []*Node
	last     *Node
}

func (sc *bodyScanner) reset() { *sc = bodyScanner{} }

type barToken struct {
	text   string
	bar    string
	prefix string
}

// barTokens is ordered so that longer tokens win.
var barTokens = []barToken{
	{text: ":|:", bar: ":|", prefix: "|:"},
	{text: "::", bar: ":|", prefix: "|:"},
	{text: ":|2", bar: ":|", prefix: "[2"},
	{text: ":|", bar: ":|"},
	{text: "|:", bar: "|", prefix: "|:"},
	{text: "||", bar: "||"},
	{text: "|]", bar: "|]"},
	{text: "|1", bar: "|", prefix: "[1"},
	{text: "|2", bar: "|", prefix: "[2"},
	{text: "[|", bar: "[|"},
	{text: "[1", prefix: "[1"},
	{text: "[2", prefix: "[2"},
	{text: "|", bar: "|"},
}

func matchBar(s string, at int) (barToken, bool) {
	for _, tok := range barTokens {
		if len(s)-at >= len(tok.text) && s[at:at+len(tok.text)] == tok.text {
			return tok, true
		}
	}
	return barToken{}, false
}

func (sc *bodyScanner) scanLine(s string, base int) (*Node, error) {
	out := &Node{Kind: KindLine, Pos: base}
	i := 0
	for i < len(s) {
		c := s[i]
		if isSpace(c) {
			i++
			continue
		}
		if tok, ok := matchBar(s, i); ok {
			if tok.bar != "" {
				sc.close(out, &Node{Kind: KindBarline, Text: tok.bar, Pos: base + i})
			} else if sc.measure != nil {
				sc.close(out, nil)
			}
			if tok.prefix != "" {
				sc.prefixes = append(sc.prefixes, &Node{Kind: KindMeasurePrefix, Text: tok.prefix, Pos: base + i})
			}
			i += len(tok.text)
			continue
		}
		var (
			el   *Node
			next int
			err  error
		)
		switch {
		case c == '[':
			el, next, err = scanChord(s, i, base)
		case c == '(':
			el, next, err = scanTuplet(s, i, base)
		default:
			el, next, err = scanNote(s, i, base)
		}
		if err != nil {
			return nil, err
		}
		sc.addElement(el)
		i = next
	}
	sc.close(out, nil)
	return out, nil
}

func (sc *bodyScanner) addElement(el *Node) {
	if sc.measure == nil {
		sc.measure = &Node{Kind: KindMeasure, Pos: el.Pos}
		sc.measure.add(sc.prefixes...)
		sc.prefixes = nil
	}
	sc.measure.add(el)
}

// close ends the open measure with bar, which may be nil at a line end.
// A barline with no open measure upgrades the plain barline of the
// previous measure, so "A B | :|" still ends a repeat.
func (sc *bodyScanner) close(out *Node, bar *Node) {
	if sc.measure == nil {
		if bar == nil || bar.Text == "|" || sc.last == nil {
			return
		}
		prev := sc.last.Child(KindBarline)
		switch {
		case prev == nil:
			sc.last.add(bar)
		case prev.Text == "|":
			*prev = *bar
		}
		return
	}
	if bar != nil {
		sc.measure.add(bar)
	}
	out.add(sc.measure)
	sc.last = sc.measure
	sc.measure = nil
}

func scanNote(s string, at, base int) (*Node, int, error) {
	i := at
	note := &Node{Kind: KindNote, Pos: base + at}
	if s[i] == 'z' || s[i] == 'x' {
		note.add(&Node{Kind: KindRest, Text: s[i : i+1], Pos: base + i})
		i++
	} else {
		pitch := &Node{Kind: KindPitch, Pos: base + i}
		j := i
		for j < len(s) && (s[j] == '^' || s[j] == '_' || s[j] == '=') {
			j++
		}
		if j > i {
			acc := s[i:j]
			switch acc {
			case "^", "^^", "_", "__", "=":
			default:
				return nil, at, errorf(base+i, "invalid music: accidental %q", acc)
			}
			pitch.add(&Node{Kind: KindAccidental, Text: acc, Pos: base + i})
		}
		if j >= len(s) || !isNoteLetter(s[j]) {
			return nil, at, errorf(base+j, "invalid music: unexpected %s", describe(s, j))
		}
		pitch.add(&Node{Kind: KindBaseNote, Text: s[j : j+1], Pos: base + j})
		j++
		k := j
		for k < len(s) && (s[k] == '\'' || s[k] == ',') {
			k++
		}
		if k > j {
			pitch.add(&Node{Kind: KindOctave, Text: s[j:k], Pos: base + j})
		}
		pitch.Text = s[i:k]
		note.add(pitch)
		i = k
	}
	if end := scanLength(s, i); end > i {
		note.add(&Node{Kind: KindNoteLength, Text: s[i:end], Pos: base + i})
		i = end
	}
	note.Text = s[at:i]
	return note, i, nil
}

// scanLength matches digits? slashes* digits?.
func scanLength(s string, at int) int {
	i := at
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	for i < len(s) && s[i] == '/' {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func scanChord(s string, at, base int) (*Node, int, error) {
	chord := &Node{Kind: KindChord, Pos: base + at}
	i := at + 1
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return nil, at, errorf(base+at, "invalid music: unterminated chord")
		}
		if s[i] == ']' {
			i++
			break
		}
		if s[i] == 'z' || s[i] == 'x' {
			return nil, at, errorf(base+i, "invalid music: rest inside chord")
		}
		n, next, err := scanNote(s, i, base)
		if err != nil {
			return nil, at, err
		}
		chord.add(n)
		i = next
	}
	if len(chord.Children) == 0 {
		return nil, at, errorf(base+at, "invalid music: empty chord")
	}
	if end := scanLength(s, i); end > i {
		chord.add(&Node{Kind: KindNoteLength, Text: s[i:end], Pos: base + i})
		i = end
	}
	chord.Text = s[at:i]
	return chord, i, nil
}

// scanTuplet reads "(n" followed by n note or chord elements.
func scanTuplet(s string, at, base int) (*Node, int, error) {
	i := at + 1
	if i >= len(s) || !isDigit(s[i]) {
		return nil, at, errorf(base+at, "invalid music: tuplet needs a count")
	}
	arity := int(s[i] - '0')
	tuplet := &Node{Kind: KindTuplet, Pos: base + at}
	tuplet.add(&Node{Kind: KindTupletSpec, Text: s[i : i+1], Pos: base + i})
	i++
	for len(tuplet.Children)-1 < arity {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return nil, at, errorf(base+at, "invalid music: tuplet has %d of %d elements", len(tuplet.Children)-1, arity)
		}
		var (
			el   *Node
			next int
			err  error
		)
		if s[i] == '[' {
			el, next, err = scanChord(s, i, base)
		} else {
			el, next, err = scanNote(s, i, base)
		}
		if err != nil {
			return nil, at, err
		}
		tuplet.add(el)
		i = next
	}
	tuplet.Text = s[at:i]
	return tuplet, i, nil
}

func isNoteLetter(b byte) bool {
	return (b >= 'A' && b <= 'G') || (b >= 'a' && b <= 'g')
}

func describe(s string, at int) string {
	if at >= len(s) {
		return "end of line"
	}
	return "'" + s[at:at+1] + "'"
}
