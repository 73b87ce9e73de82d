package parser

import (
	"fmt"
	"strings"

	"itemize/internal/port"
)

const maxPromptTextLen = 12000

// ExtractionSystemPrompt is the instruction block for full invoice extraction.
const ExtractionSystemPrompt = `You are an expert invoice data extractor. Extract the supplier/vendor name and all line items from the raw invoice text.

RULES:
1. supplier_name: The FULL legal/business name of the company that issued the invoice. NOT addresses, NOT "Remit to", NOT P.O. Box. The vendor/supplier company name.

2. For each line item, extract:
   - item_description: CLEAN product description ONLY. Human-readable product name. Remove quantities, prices, UOM, raw table junk.
   - manufacturer_part_number: The SKU, part number, catalog number, item number, or style code from the invoice. Null if not present.
   - quantity: numeric qty ordered/shipped
   - original_uom: EA, BX, CS, PR, DZ, DP, CT, RL, etc. as shown. Null if unclear.
   - unit_price: price per unit
   - extended_price: line total

3. Do NOT invent MPN or descriptions. Extract only what is on the invoice.
4. Skip header rows, totals, subtotals, tax lines. Only real product line items with prices.
5. Handle OCR noise: ignore repeated characters (e.g. MMMaaagggiiiddd = Magid).`

// BuildExtractionPrompt returns the user prompt for full invoice extraction.
func BuildExtractionPrompt(text, supplierHint string) string {
	hint := ""
	if supplierHint != "" {
		hint = "Vendor hint from filename/headers: " + supplierHint
	}
	if len(text) > maxPromptTextLen {
		text = text[:maxPromptTextLen]
	}
	return fmt.Sprintf(`Extract supplier and line items from this invoice.
%s

RAW INVOICE TEXT:
%s

Return a JSON object with this exact structure:
{
  "supplier_name": "Full Legal Company Name",
  "line_items": [
    {
      "item_description": "Clean product description only",
      "manufacturer_part_number": "SKU or null",
      "quantity": 1,
      "original_uom": "EA",
      "unit_price": 1.99,
      "extended_price": 1.99
    }
  ]
}

Return ONLY the JSON object, no markdown, no explanation.`, hint, text)
}

// LookupSystemPrompt is the instruction block for batched unit resolution.
const LookupSystemPrompt = `You infer unit of measure and pack quantity from invoice line descriptions. Output a JSON array of objects.
Each: {"canonical_uom": "EA", "detected_pack_quantity": int|null, "confidence": float, "escalation": bool}`

// BuildLookupPrompt returns the user prompt for a batched unit resolution call.
// Requests are rendered one per line as "index: description" with an optional
// SKU suffix, and the answer must come back as an array in the same order.
func BuildLookupPrompt(reqs []port.LookupRequest, supplierName string) string {
	if supplierName == "" {
		supplierName = "Unknown"
	}

	var lines []string
	for _, req := range reqs {
		desc := req.Description
		if len(desc) > 400 {
			desc = desc[:400]
		}
		line := fmt.Sprintf("%d: %s", req.Index, desc)
		if req.PartNumber != "" {
			line += " SKU: " + req.PartNumber
		}
		lines = append(lines, line)
	}

	return fmt.Sprintf(`Infer UOM and pack quantity for each line item. Supplier: %s

Items (format "idx: description"):
%s

Return a JSON array with one object per item, in the SAME ORDER as above. Each object:
{"canonical_uom": "EA", "detected_pack_quantity": <int or null>, "confidence": <0.0-1.0>, "escalation": <bool>}

RULES:
- detected_pack_quantity: ONLY if explicitly in description (e.g. "100/DP" -> 100, "25/CS" -> 25). Null if uncertain.
- NEVER invent pack sizes. escalation: true if confidence < 0.6.
- Output ONLY the JSON array.`, supplierName, strings.Join(lines, "\n"))
}
