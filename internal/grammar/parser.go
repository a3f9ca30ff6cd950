package grammar

import "strings"

type line struct {
	text string
	pos  int
}

// Parse scans one ABC tune. The header runs from the X: line through the
// K: line; everything after it is music.
func Parse(text string) (*Node, error) {
	lines := splitLines(text)
	hdr, rest, err := parseHeader(lines, len(text))
	if err != nil {
		return nil, err
	}
	body, err := parseBody(rest, len(text))
	if err != nil {
		return nil, err
	}
	return &Node{Kind: KindTune, Text: text, Children: []*Node{hdr, body}}, nil
}

// splitLines cuts text into lines with their offsets, dropping "%" comments
// and carriage returns.
func splitLines(text string) []line {
	var out []line
	pos := 0
	for pos <= len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		if end < 0 {
			end = len(text) - pos
		}
		s := text[pos : pos+end]
		s = strings.TrimRight(s, "\r")
		if c := commentStart(s); c >= 0 {
			s = s[:c]
		}
		out = append(out, line{text: s, pos: pos})
		pos += end + 1
	}
	return out
}

func commentStart(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

var fieldKinds = map[byte]Kind{
	'X': KindFieldNumber,
	'T': KindFieldTitle,
	'C': KindFieldComposer,
	'L': KindFieldLength,
	'M': KindFieldMeter,
	'Q': KindFieldTempo,
	'V': KindFieldVoice,
	'K': KindFieldKey,
}

func isFieldLine(s string) bool {
	return len(s) >= 2 && isAlpha(s[0]) && s[1] == ':'
}

func parseHeader(lines []line, end int) (*Node, []line, error) {
	hdr := &Node{Kind: KindHeader}
	for i, ln := range lines {
		s := strings.TrimSpace(ln.text)
		if s == "" {
			continue
		}
		at := ln.pos + strings.Index(ln.text, s)
		if !isFieldLine(s) {
			return nil, nil, errorf(at, "invalid header: expected a field, got %q", s)
		}
		field, err := parseField(s, at)
		if err != nil {
			return nil, nil, err
		}
		if len(hdr.Children) == 0 && field.Kind != KindFieldNumber {
			return nil, nil, errorf(at, "invalid header: X: must be the first field")
		}
		if len(hdr.Children) > 0 && field.Kind == KindFieldNumber {
			return nil, nil, errorf(at, "invalid header: repeated X: field")
		}
		hdr.add(field)
		if field.Kind == KindFieldKey {
			return hdr, lines[i+1:], nil
		}
	}
	if len(hdr.Children) == 0 {
		return nil, nil, errorf(0, "invalid header: missing X: field")
	}
	return nil, nil, errorf(end, "invalid header: missing K: field")
}

func parseField(s string, at int) (*Node, error) {
	kind, ok := fieldKinds[s[0]]
	if !ok {
		kind = KindFieldOther
	}
	value := strings.TrimSpace(s[2:])
	valueAt := at + 2
	if value != "" {
		valueAt = at + strings.Index(s, value)
	}
	n := &Node{Kind: kind, Text: value, Pos: valueAt}
	switch kind {
	case KindFieldNumber:
		if value == "" || !allDigits(value) {
			return nil, errorf(valueAt, "invalid header: index number %q", value)
		}
	case KindFieldVoice:
		name, ok := voiceName(value)
		if !ok {
			return nil, errorf(valueAt, "invalid header: empty voice name")
		}
		n.Text = name
	case KindFieldKey:
		if err := parseKey(n); err != nil {
			return nil, err
		}
	case KindFieldOther:
		n.Text = s
		n.Pos = at
	}
	return n, nil
}

// parseKey splits a key field into tonic letter, tonic accidental and mode.
func parseKey(n *Node) error {
	s := n.Text
	if s == "" || s[0] < 'A' || s[0] > 'G' {
		return errorf(n.Pos, "invalid key %q", s)
	}
	n.add(&Node{Kind: KindBaseNote, Text: s[:1], Pos: n.Pos})
	i := 1
	if i < len(s) && (s[i] == '#' || s[i] == 'b') {
		n.add(&Node{Kind: KindKeyAccidental, Text: s[i : i+1], Pos: n.Pos + i})
		i++
	}
	switch mode := strings.ToLower(strings.TrimSpace(s[i:])); mode {
	case "", "maj", "major":
	case "m", "min", "minor":
		n.add(&Node{Kind: KindModeMinor, Text: mode, Pos: n.Pos + i})
	default:
		return errorf(n.Pos+i, "invalid key mode %q", mode)
	}
	return nil
}

func voiceName(value string) (string, bool) {
	f := strings.Fields(value)
	if len(f) == 0 {
		return "", false
	}
	return f[0], true
}

func parseBody(lines []line, end int) (*Node, error) {
	body := &Node{Kind: KindMusic, Pos: end}
	if len(lines) > 0 {
		body.Pos = lines[0].pos
	}
	sc := &bodyScanner{}
	target := body
	for _, ln := range lines {
		s := strings.TrimSpace(ln.text)
		if s == "" {
			continue
		}
		at := ln.pos + strings.Index(ln.text, s)
		if strings.HasPrefix(s, "V:") {
			name, ok := voiceName(s[2:])
			if !ok {
				return nil, errorf(at, "invalid music: empty voice name")
			}
			target = &Node{Kind: KindVoiceSection, Text: name, Pos: at}
			target.add(&Node{Kind: KindVoiceName, Text: name, Pos: at + strings.Index(s, name)})
			body.add(target)
			sc.reset()
			continue
		}
		l, err := sc.scanLine(ln.text, ln.pos)
		if err != nil {
			return nil, err
		}
		if len(l.Children) > 0 {
			target.add(l)
		}
	}
	return body, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return len(s) > 0
}

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isSpace(b byte) bool { return b == ' ' || b == '\t' }
