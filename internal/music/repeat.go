package music

// expand resolves repeats and first/second endings into the measure order a
// performer plays. A first-ending jump leaves the rewind point alone, so a
// later start-less end-repeat goes back to the same start and takes the
// jump again. When a repeat finishes at its second end-repeat, the rewind
// point moves to the measure after it; without that a later end-repeat
// would rewind into the finished section and loop forever.
func expand(measures []Measure) []Measure {
	out := make([]Measure, 0, len(measures))
	repeating := false
	startPos, endPos := 0, 0
	pos := 0
	for pos < len(measures) {
		mk := measures[pos].markers
		if mk.StartRepeat && pos > startPos {
			startPos = pos
		}
		if mk.EndMajorSection {
			// later repeats rewind no further than this boundary
			startPos = pos + 1
		}
		if repeating {
			if mk.StartFirstEnding {
				pos = endPos + 1
				repeating = false
				continue
			}
			if mk.EndRepeat {
				out = append(out, measures[pos])
				repeating = false
				pos++
				startPos = pos
				continue
			}
		} else if mk.EndRepeat {
			out = append(out, measures[pos])
			repeating = true
			endPos = pos
			pos = startPos
			continue
		}
		out = append(out, measures[pos])
		pos++
	}
	return out
}
