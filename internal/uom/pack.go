package uom

import (
	"regexp"
	"strconv"
)

// Pack expression patterns, checked in priority order. Earlier, more specific
// patterns win over the generic numerator/denominator forms below them.
var (
	packPairsPerDisp = regexp.MustCompile(`(?i)(\d+)\s*PR\s*/\s*DP`)
	packPairsPerBag  = regexp.MustCompile(`(?i)(\d+)\s*PR\s*/\s*BG`)
	packOnePair      = regexp.MustCompile(`(?i)1\s*/\s*PR\b`)
	packNumDenom     = regexp.MustCompile(`(?i)(\d+)\s*/\s*(?:CS|BX|BOX|CT|CASE|PK|PAC|DP|BG|RL|DZ|EA|PR|DISP?\.?|BG\.?)`)
	packPKNum        = regexp.MustCompile(`(?i)(?:PK|PAC)\s*(\d+)\b`)
	packDenomNum     = regexp.MustCompile(`(?i)(?:CS|BX|BOX|CT|CASE|DP|BG|RL)\s*/\s*(\d+)`)
	packNumEA        = regexp.MustCompile(`(?i)(\d+)\s*EA(?:\s|/|$|[^\w])`)
	packNumPR        = regexp.MustCompile(`(?i)(\d+)\s*PR(?:\s+[A-Z]|\s*$|\s*/)`)
	packContainerNum = regexp.MustCompile(`(?i)(?:BX|CS|CT|CASE)\s*(\d+)\b`)
	packHundredDisp  = regexp.MustCompile(`(?i)100\s*/\s*DISP?\.?`)
	packHundredBag   = regexp.MustCompile(`(?i)100\s*/\s*BG\.?`)
)

// ParsePack extracts a pack quantity (base units per purchased container) from
// free text. It recognizes forms like "25/CS", "PK10", "100PR/DP", "100/DISP",
// "1/PR", "100 PR", "CS/1000" and "1000 EA". Returns nil when no pattern
// matches. Pure and deterministic: the same text always yields the same result.
func ParsePack(text string) *int {
	if text == "" {
		return nil
	}

	// Pairs per container: each pair is two base units.
	for _, pat := range []*regexp.Regexp{packPairsPerDisp, packPairsPerBag} {
		if m := pat.FindStringSubmatch(text); m != nil {
			return positive(atoi(m[1]) * 2)
		}
	}

	if packOnePair.MatchString(text) {
		return positive(2)
	}

	if m := packNumDenom.FindStringSubmatch(text); m != nil {
		return positive(atoi(m[1]))
	}

	if m := packPKNum.FindStringSubmatch(text); m != nil {
		return positive(atoi(m[1]))
	}

	if m := packDenomNum.FindStringSubmatch(text); m != nil {
		return positive(atoi(m[1]))
	}

	if m := packNumEA.FindStringSubmatch(text); m != nil {
		return positive(atoi(m[1]))
	}

	if m := packNumPR.FindStringSubmatch(text); m != nil {
		return positive(atoi(m[1]) * 2)
	}

	if m := packContainerNum.FindStringSubmatch(text); m != nil {
		return positive(atoi(m[1]))
	}

	// Known literal forms on sampled documents.
	if packHundredDisp.MatchString(text) || packHundredBag.MatchString(text) {
		return positive(100)
	}

	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// positive returns a pointer to n, or nil when n is not a valid pack quantity.
func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
