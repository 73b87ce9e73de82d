package supplier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"itemize/internal/domain"
)

func TestDetect_KnownSignatures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"magid glove", "MAGID GLOVE & SAFETY\n123 Industrial Way", "Magid Glove and Safety Manufacturing"},
		{"magid domain", "order online at magidglove.com", "Magid Glove and Safety Manufacturing"},
		{"uline word", "ULINE\nSHIPPING SUPPLY SPECIALISTS", "ULINE"},
		{"fastenal", "FASTENAL COMPANY\nPO BOX 1286", "Fastenal"},
		{"grainger", "W.W.GRAINGER INC", "Grainger"},
		{"msc", "MSCDIRECT.COM ORDER", "MSC Industrial"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestDetect_OCRNoise(t *testing.T) {
	assert.Equal(t, "Magid Glove and Safety Manufacturing", Detect("MMMaaagggiiiddd GGGlllooovvveee"))
}

func TestDetect_CompanySuffixLine(t *testing.T) {
	text := "INVOICE\nAcme Widget Company\n123 Main St"
	assert.Equal(t, "Acme Widget Company", Detect(text))
}

func TestDetect_Unknown(t *testing.T) {
	assert.Equal(t, domain.UnknownSupplier, Detect("totally anonymous text\nno vendor here"))
}

func TestCollapseOCRRuns(t *testing.T) {
	assert.Equal(t, "Magid", CollapseOCRRuns("MMMaaagggiiiddd"))
	assert.Equal(t, "bookkeeper", CollapseOCRRuns("bookkeeper"))
	assert.Equal(t, "", CollapseOCRRuns(""))
}
