package extract

import (
	"fmt"
	"strings"
)

// systemPrompt is the shared system instruction for document extraction.
const systemPrompt = `You are a mortgage processing assistant. You read the text of financial documents submitted by borrowers (bank statements, pay stubs, tax returns, W-2 forms) and extract structured data for underwriting.

Rules:
- Extract ONLY information present in the provided document text
- Return valid JSON for every response
- Use null for any field not found in the document
- For dates, use YYYY-MM-DD format
- For monetary values, use raw numbers without formatting (e.g., 1250.50 not "$1,250.50")
- Do not guess or infer values that are not stated in the document`

// BuildUserMessage constructs the extraction request for one document.
func BuildUserMessage(schema *Schema, text string) string {
	return fmt.Sprintf(`Document type: %s (%s)

Extract the following fields:
%s
Document text:
---
%s
---

Respond with ONLY a valid JSON object whose keys are exactly the field names listed above.`, schema.DocumentType, schema.Description, schema.FieldList(), text)
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
