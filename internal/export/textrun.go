package export

// Run is a maximal span of adjacent code points sharing one glyph-source
// classification. Concatenating the Text of all runs reproduces the original
// string exactly.
type Run struct {
	Text     string
	Fallback bool
}

// fallbackRanges covers the CJK Unified Ideographs blocks, their extensions,
// the compatibility blocks, and the Hangul blocks. Code points in these
// ranges are routed to the fallback glyph source during page-document
// rendering.
var fallbackRanges = [][2]rune{
	{0x1100, 0x11FF},   // Hangul Jamo
	{0x3130, 0x318F},   // Hangul Compatibility Jamo
	{0x3400, 0x4DBF},   // CJK Extension A
	{0x4E00, 0x9FFF},   // CJK Unified Ideographs
	{0xAC00, 0xD7A3},   // Hangul Syllables
	{0xF900, 0xFAFF},   // CJK Compatibility Ideographs
	{0x20000, 0x2A6DF}, // CJK Extension B
	{0x2A700, 0x2B73F}, // CJK Extension C
	{0x2B740, 0x2B81F}, // CJK Extension D
	{0x2B820, 0x2CEAF}, // CJK Extension E
	{0x2CEB0, 0x2EBEF}, // CJK Extension F
	{0x30000, 0x3134F}, // CJK Extension G
}

func needsFallback(r rune) bool {
	for _, rng := range fallbackRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// SplitRuns scans text one code point at a time and groups contiguous
// same-classification characters into runs. A run boundary occurs only when
// the classification changes, never mid-run.
func SplitRuns(text string) []Run {
	var runs []Run
	var buf []rune
	fallback := false
	flush := func() {
		if len(buf) == 0 {
			return
		}
		runs = append(runs, Run{Text: string(buf), Fallback: fallback})
		buf = buf[:0]
	}
	for _, r := range text {
		fb := needsFallback(r)
		if fb != fallback {
			flush()
			fallback = fb
		}
		buf = append(buf, r)
	}
	flush()
	return runs
}
