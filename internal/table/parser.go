package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"itemize/internal/domain"
)

// Config holds the empirically tuned parser constants. They are configurable
// because they were fitted to a sampled document set and may misfire on
// supplier-specific layouts.
type Config struct {
	// MinLineLength is the minimum raw length for a line to be considered.
	MinLineLength int
	// PriceTolerance is the allowed relative deviation between quantity x
	// unit price and the extended price before the extended price is replaced.
	PriceTolerance float64
	// MaxDescriptionTokens caps how many tokens feed the description.
	MaxDescriptionTokens int
	// TailExclusion is how many trailing tokens are assumed to be prices and
	// totals rather than quantities or part numbers.
	TailExclusion int
	// StructuredConfidence is assigned to items from the column strategy.
	StructuredConfidence float64
	// FallbackConfidence is assigned to items from the regex-only pass.
	FallbackConfidence float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MinLineLength:        10,
		PriceTolerance:       0.05,
		MaxDescriptionTokens: 5,
		TailExclusion:        3,
		StructuredConfidence: 0.7,
		FallbackConfidence:   0.65,
	}
}

// Parser extracts line items from raw document text using column-splitting
// heuristics. It carries no per-document state: Parse is a pure function of
// its input text.
type Parser struct {
	cfg Config
}

// NewParser creates a Parser with the given config.
func NewParser(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

var (
	priceToken   = regexp.MustCompile(`\d+\.\d{2}`)
	perHundred   = regexp.MustCompile(`(?i)price\s*(?:per|/)\s*hundred|\bper\s+hundred\b`)
	numericOnly  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	skuPattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-./]{2,39}$`)
	hasDigit     = regexp.MustCompile(`\d`)
	hasLetter    = regexp.MustCompile(`[A-Za-z]`)
	anyNumber    = regexp.MustCompile(`\d+\.?\d*`)
	columnGap    = regexp.MustCompile(`\s{2,}|\t`)
)

// skipKeywords mark header/footer/total lines that are not line items.
var skipKeywords = []string{
	"invoice", "page", "remit", "sold to", "ship to",
	"sub-total", "total", "amount due", "thank you", "customer order",
}

// Parse extracts line items from text. Output order follows input order, and
// lines repeating an already-seen (quantity, extended price) pair are dropped
// as duplicate/table-border artifacts.
func (p *Parser) Parse(text string) []domain.RawLineItem {
	perHundredDoc := perHundred.MatchString(text)

	var items []domain.RawLineItem
	seen := map[string]bool{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if p.skipLine(line) {
			continue
		}

		item, ok := p.parseStructured(line, perHundredDoc)
		if !ok {
			item, ok = p.parseFallback(line)
		}
		if !ok {
			continue
		}

		key := dedupKey(item.Quantity, item.ExtendedPrice)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, item)
	}

	return items
}

func (p *Parser) skipLine(line string) bool {
	if len(line) < p.cfg.MinLineLength {
		return true
	}
	lower := strings.ToLower(line)
	for _, kw := range skipKeywords {
		// Totals and headers can coincidentally contain 2-decimal numbers, but
		// real item lines always do, so a price-like token rescues the line.
		if strings.Contains(lower, kw) && !priceToken.MatchString(line) {
			return true
		}
	}
	// Short lines without any price-like token are column headers.
	if len(strings.Fields(line)) <= 3 && !priceToken.MatchString(line) {
		return true
	}
	return false
}

// parseStructured applies the column strategy to a single line.
func (p *Parser) parseStructured(line string, perHundredDoc bool) (domain.RawLineItem, bool) {
	tokens := splitColumns(line)

	decimals := collectDecimals(tokens)
	if len(decimals) == 0 {
		return domain.RawLineItem{}, false
	}
	ints := collectIntegers(tokens)

	extended, unitPrice := choosePrices(decimals, perHundredDoc)

	quantity := p.chooseQuantity(ints, len(tokens), extended, unitPrice)

	// Quantity is trusted over a possibly-misparsed total.
	if quantity > 0 && unitPrice > 0 {
		product := float64(quantity) * unitPrice
		if extended > 0 && math.Abs(product-extended)/extended > p.cfg.PriceTolerance {
			extended = product
		}
	}

	sku := p.chooseSKU(tokens)
	desc := p.buildDescription(tokens, sku)
	unit := findUnit(tokens, desc, line)

	qty := float64(quantity)
	ext := extended
	up := unitPrice
	return domain.RawLineItem{
		Description:      desc,
		ManufacturerPart: sku,
		ItemNumber:       sku,
		Quantity:         qty,
		OriginalUOM:      unit,
		UnitPrice:        &up,
		ExtendedPrice:    &ext,
		LineConfidence:   p.cfg.StructuredConfidence,
	}, true
}

// parseFallback is the regex-only pass for lines the column strategy could
// not parse. It requires two numeric tokens, one of them a decimal.
func (p *Parser) parseFallback(line string) (domain.RawLineItem, bool) {
	nums := anyNumber.FindAllString(line, -1)
	if len(nums) < 2 {
		return domain.RawLineItem{}, false
	}

	var extended float64
	for _, n := range nums {
		if !strings.Contains(n, ".") {
			continue
		}
		v, err := strconv.ParseFloat(n, 64)
		if err == nil && v >= 0.001 && v <= 999999 {
			extended = v
			break
		}
	}
	if extended == 0 {
		return domain.RawLineItem{}, false
	}

	unitPrice := extended
	for _, n := range nums {
		if !strings.Contains(n, ".") {
			continue
		}
		v, err := strconv.ParseFloat(n, 64)
		if err == nil && v != extended && v >= 0.001 && v <= 99999 {
			unitPrice = v
			break
		}
	}

	quantity := 1
	for _, n := range nums {
		if strings.Contains(n, ".") {
			continue
		}
		v, err := strconv.Atoi(n)
		if err == nil && v >= 1 && v <= 999999 && float64(v) != extended {
			quantity = v
			break
		}
	}

	var descParts []string
	for _, part := range columnGap.Split(line, -1) {
		part = strings.TrimSpace(part)
		if len(part) > 2 && !numericOnly.MatchString(strings.ReplaceAll(part, ",", "")) {
			descParts = append(descParts, part)
		}
	}
	desc := strings.Join(firstN(descParts, 3), " ")
	if desc == "" {
		if len(line) > 50 {
			desc = line[:50]
		} else {
			desc = line
		}
	}

	unit := findUnit(strings.Fields(line), desc, line)

	qty := float64(quantity)
	ext := extended
	up := unitPrice
	return domain.RawLineItem{
		Description:    desc,
		Quantity:       qty,
		OriginalUOM:    unit,
		UnitPrice:      &up,
		ExtendedPrice:  &ext,
		LineConfidence: p.cfg.FallbackConfidence,
	}, true
}

// splitColumns chooses the column strategy: pipes when the line has at least
// two of them (table renderings), whitespace otherwise.
func splitColumns(line string) []string {
	if strings.Count(line, "|") >= 2 {
		parts := strings.Split(line, "|")
		tokens := make([]string, 0, len(parts))
		for _, part := range parts {
			if t := strings.TrimSpace(part); t != "" {
				tokens = append(tokens, t)
			}
		}
		return tokens
	}
	return strings.Fields(line)
}

type positioned struct {
	pos   int
	value float64
}

func collectDecimals(tokens []string) []positioned {
	var out []positioned
	for i, tok := range tokens {
		clean := cleanNumber(tok)
		if !strings.Contains(clean, ".") {
			continue
		}
		v, err := strconv.ParseFloat(clean, 64)
		if err == nil && v >= 0.001 && v <= 999999 {
			out = append(out, positioned{pos: i, value: v})
		}
	}
	return out
}

type positionedInt struct {
	pos   int
	value int
}

func collectIntegers(tokens []string) []positionedInt {
	var out []positionedInt
	for i, tok := range tokens {
		clean := cleanNumber(tok)
		if clean == "" || strings.Contains(clean, ".") {
			continue
		}
		v, err := strconv.Atoi(clean)
		if err == nil && v >= 1 && v <= 999999 {
			out = append(out, positionedInt{pos: i, value: v})
		}
	}
	return out
}

// choosePrices picks the extended and unit price from the positional decimals.
// With a per-hundred marker in the document, the second-to-last decimal is a
// per-hundred rate; otherwise the largest decimal is the line total.
func choosePrices(decimals []positioned, perHundredDoc bool) (extended, unitPrice float64) {
	if perHundredDoc && len(decimals) >= 2 {
		extended = decimals[len(decimals)-1].value
		unitPrice = decimals[len(decimals)-2].value / 100
		return extended, unitPrice
	}

	for _, d := range decimals {
		if d.value > extended {
			extended = d.value
		}
	}
	// Next largest decimal distinct from the total, within plausible unit
	// price bounds. Prices and totals cluster at line end but the scan is
	// positional-order-independent by value.
	for _, d := range decimals {
		if d.value != extended && d.value <= 99999 && d.value > unitPrice {
			unitPrice = d.value
		}
	}
	if unitPrice == 0 {
		unitPrice = extended
	}
	return extended, unitPrice
}

// chooseQuantity returns the first integer before the trailing price/total
// cluster that is not just an echo of a rounded price. Defaults to 1.
func (p *Parser) chooseQuantity(ints []positionedInt, tokenCount int, extended, unitPrice float64) int {
	roundedExt := int(math.Round(extended))
	roundedUnit := int(math.Round(unitPrice))
	limit := tokenCount - p.cfg.TailExclusion
	for _, n := range ints {
		if n.pos >= limit {
			continue
		}
		if n.value == roundedExt || n.value == roundedUnit {
			continue
		}
		return n.value
	}
	return 1
}

// chooseSKU returns the first token before the trailing cluster that looks
// like a part number. Never fabricated: the token must be present verbatim.
func (p *Parser) chooseSKU(tokens []string) string {
	limit := len(tokens) - p.cfg.TailExclusion
	for i, tok := range tokens {
		if i >= limit {
			break
		}
		if isSKU(tok) {
			return tok
		}
	}
	return ""
}

// isSKU is the part-number heuristic: alphanumeric with optional separators,
// 3 to 40 chars, containing both digits and letters (or separators), and not
// a unit token or plain number.
func isSKU(tok string) bool {
	if !skuPattern.MatchString(tok) {
		return false
	}
	if numericOnly.MatchString(cleanNumber(tok)) {
		return false
	}
	if !hasDigit.MatchString(tok) || !hasLetter.MatchString(tok) {
		return false
	}
	return !isUnitToken(tok)
}

// buildDescription joins up to MaxDescriptionTokens non-numeric tokens,
// skipping currency symbols, unit tokens and the token claimed as the SKU.
// Falls back to the first four raw tokens when nothing qualifies.
func (p *Parser) buildDescription(tokens []string, sku string) string {
	var parts []string
	skuUsed := false
	for _, tok := range tokens {
		if len(parts) >= p.cfg.MaxDescriptionTokens {
			break
		}
		if !skuUsed && sku != "" && tok == sku {
			skuUsed = true
			continue
		}
		if strings.HasPrefix(tok, "$") || numericOnly.MatchString(cleanNumber(tok)) {
			continue
		}
		if isUnitToken(tok) {
			continue
		}
		parts = append(parts, tok)
	}
	if len(parts) == 0 {
		return strings.Join(firstN(tokens, 4), " ")
	}
	return strings.Join(parts, " ")
}

// unitTokens lists recognizable unit-of-measure tokens. Longer compound
// tokens come first so CARTON is not misread as CT or DOZEN as DZ.
var unitTokens = []string{
	"PACKAGE", "DISPLAY", "CARTON", "BOTTLE", "DOZEN", "GROSS",
	"EACH", "CASE", "PACK", "PAIR", "ROLL", "DISP",
	"BOX", "BAG", "SET", "KIT", "CTN", "DOZ", "PCS", "CNT",
	"EA", "BX", "CS", "CT", "PR", "DZ", "DP", "RL", "BG", "PK", "PC",
}

func isUnitToken(tok string) bool {
	up := strings.ToUpper(strings.Trim(tok, ".,"))
	for _, u := range unitTokens {
		if up == u {
			return true
		}
	}
	return false
}

// unitScanPatterns are word-bounded forms of unitTokens, same order.
var unitScanPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(unitTokens))
	for i, u := range unitTokens {
		out[i] = regexp.MustCompile(`(?i)\b` + u + `\b`)
	}
	return out
}()

// findUnit locates the first recognized unit token among the column tokens,
// then falls back to a word-bounded scan of the description and the raw line.
func findUnit(tokens []string, desc, line string) string {
	for _, tok := range tokens {
		up := strings.ToUpper(strings.Trim(tok, ".,"))
		for _, u := range unitTokens {
			if up == u {
				return u
			}
		}
	}
	for _, text := range []string{desc, line} {
		for i, re := range unitScanPatterns {
			if re.MatchString(text) {
				return unitTokens[i]
			}
		}
	}
	return ""
}

// cleanNumber strips currency symbols and thousands separators.
func cleanNumber(tok string) string {
	return strings.Trim(strings.ReplaceAll(tok, ",", ""), "$ ")
}

func dedupKey(quantity float64, extended *float64) string {
	ext := 0.0
	if extended != nil {
		ext = *extended
	}
	return strconv.FormatFloat(quantity, 'f', -1, 64) + "|" + strconv.FormatFloat(ext, 'f', 2, 64)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
