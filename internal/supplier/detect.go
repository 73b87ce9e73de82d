package supplier

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"itemize/internal/domain"
)

//go:embed signatures.yaml
var signaturesYAML []byte

type signature struct {
	Pattern string `yaml:"pattern"`
	Name    string `yaml:"name"`

	re *regexp.Regexp
}

type signatureFile struct {
	Signatures []signature `yaml:"signatures"`
}

// signatures maps known vendor text patterns to canonical supplier names.
// The list ships embedded so deployments can be rebuilt with site-specific
// vendors without code changes elsewhere.
var signatures = mustLoadSignatures(signaturesYAML)

func mustLoadSignatures(raw []byte) []signature {
	var f signatureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		panic(fmt.Sprintf("supplier: invalid signatures.yaml: %v", err))
	}
	for i := range f.Signatures {
		f.Signatures[i].re = regexp.MustCompile(f.Signatures[i].Pattern)
	}
	return f.Signatures
}

var companySuffix = regexp.MustCompile(`^[A-Za-z][a-z]+(\s+[A-Za-z][a-z]+)*\s+(Company|Inc|LLC|Corp|Ltd)\.?$`)

// headerScanLines bounds the free-text scan to the invoice header region.
const headerScanLines = 30

// Detect returns the supplier name for a document's raw text. Known vendor
// signatures win; otherwise the header lines are scanned for a company-suffix
// line or a "Remit" line naming the vendor. The result is used as the hint
// for LLM extraction and as the supplier when generic parsing runs.
func Detect(text string) string {
	collapsed := CollapseOCRRuns(text)

	for _, sig := range signatures {
		if sig.re.MatchString(text) || sig.re.MatchString(collapsed) {
			return sig.Name
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) > headerScanLines {
		lines = lines[:headerScanLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		lineOCR := CollapseOCRRuns(line)
		if companySuffix.MatchString(lineOCR) {
			return normalizeName(lineOCR)
		}
		if strings.Contains(line, "Remit") && !strings.Contains(firstN(line, 20), "P.O.") {
			for _, part := range splitRemit(line) {
				p := strings.TrimSpace(part)
				if len(p) > 5 && startsUpper(p) &&
					!strings.Contains(p, "P.O.") && !strings.Contains(p, "BOX") {
					return normalizeName(p)
				}
			}
		}
	}

	return domain.UnknownSupplier
}

// CollapseOCRRuns collapses runs of three or more identical characters to a
// single one, undoing a common OCR artifact (MMMaaagggiiiddd -> Magid).
func CollapseOCRRuns(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= 3 {
			b.WriteRune(runes[i])
		} else {
			for k := i; k < j; k++ {
				b.WriteRune(runes[k])
			}
		}
		i = j
	}
	return b.String()
}

var remitSplit = regexp.MustCompile(`[\|\-\t:]+`)

func splitRemit(line string) []string {
	return remitSplit.Split(line, -1)
}

// normalizeName collapses whitespace and title-cases a free-text candidate.
func normalizeName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return domain.UnknownSupplier
	}
	for i, f := range fields {
		runes := []rune(strings.ToLower(f))
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
