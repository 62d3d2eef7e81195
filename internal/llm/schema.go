package llm

// BuildBusinessProfileJSONSchema returns the JSON-Schema (draft 2020-12
// subset) the enrichment model output must satisfy. All seven fields are
// strings; the model is told to answer "" or "不明" when it does not know.
func BuildBusinessProfileJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"business_type":        map[string]any{"type": "string"},
			"business_description": map[string]any{"type": "string"},
			"establishment_year":   map[string]any{"type": "string"},
			"capital":              map[string]any{"type": "string"},
			"employees":            map[string]any{"type": "string"},
			"website":              map[string]any{"type": "string"},
			"notes":                map[string]any{"type": "string"},
		},
		"required": []string{"business_type"},
	}
}

// BuildReceiptAnalysisJSONSchema returns the schema for the vision model's
// receipt analysis. Scores stay strings: the model may answer "不明" where it
// cannot rate, and error sentinels must be representable in the same column.
func BuildReceiptAnalysisJSONSchema() map[string]any {
	props := map[string]any{
		"payee_name":                       map[string]any{"type": "string"},
		"payee_address":                    map[string]any{"type": "string"},
		"payment_date":                     map[string]any{"type": "string"},
		"payment_purpose":                  map[string]any{"type": "string"},
		"validity_score":                   map[string]any{"type": "string"},
		"validity_reason":                  map[string]any{"type": "string"},
		"payee_detail":                     map[string]any{"type": "string"},
		"transparency_score":               map[string]any{"type": "string"},
		"alternative_suggestion":           map[string]any{"type": "string"},
		"news_value_potential_score":       map[string]any{"type": "string"},
		"news_value_potential_score_reason": map[string]any{"type": "string"},
	}
	required := []string{
		"payee_name", "payee_address", "payment_date", "payment_purpose",
		"validity_score", "transparency_score", "news_value_potential_score",
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
