package scanextract

import "fmt"

const extractionSystemPrompt = `You extract structured fields from OCR text taken from Indian medicine packaging and pharmacy receipts. The text is noisy: characters are misread, units are garbled, and lines run together. Respond with a single JSON object and nothing else.`

const extractionPromptTemplate = `Extract the following fields from this OCR text of a medicine label or receipt:

- batch_number: the batch or lot code, exactly as printed (preserve case)
- medicine_name: the brand or generic medicine name
- manufacturer: the manufacturing company, if present
- expiry_date: the expiry date, if present, as printed
- confidence: "high" if the text is clean and unambiguous, "medium" if some fields required guesswork, "low" if the text is mostly unreadable

Omit any field you cannot find. Do not invent values.

OCR text:
%s`

func buildExtractionPrompt(ocrText string) string {
	return fmt.Sprintf(extractionPromptTemplate, ocrText)
}
