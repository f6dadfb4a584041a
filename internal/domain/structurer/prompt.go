package structurer

import "fmt"

// buildPrompt renders the extraction prompt for a raw receipt text. The
// model is instructed to return bare JSON; sanitizeResponse still strips
// markdown fences because models add them anyway.
func buildPrompt(rawText string) string {
	return fmt.Sprintf(`You are a receipt data extractor. Extract ONLY the following information from this receipt text in JSON format:

{
    "merchant": "store name (must be present)",
    "date": "YYYY-MM-DD format (must be present)",
    "items": [
        {
            "name": "item name",
            "price": 0.00,
            "category": "groceries|restaurant|retail|pharmacy|other"
        }
    ],
    "total": 0.00,
    "subtotal": 0.00,
    "tax": 0.00,
    "payment_method": "cash|credit|debit|unknown"
}

STRICT RULES:
1. merchant and date are REQUIRED - if missing, set to "Unknown"
2. Extract ALL items with prices
3. Prices must be numbers without $ symbols
4. If a field is unclear, use null or "unknown"
5. Return ONLY valid JSON, no extra text
6. Categorize items based on merchant and item names

Receipt Text:
%s

JSON Output:`, rawText)
}
