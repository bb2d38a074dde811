package importer

import "strings"

// Mapping binds the logical transaction fields to source column names.
// Date and Amount are required before a batch can be submitted.
type Mapping struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

// columnPatterns are the header-name substrings recognized per logical field.
var columnPatterns = map[string][]string{
	"date":        {"date", "trans date", "transaction date", "posted", "posting date"},
	"amount":      {"amount", "sum", "transaction amount", "debit", "credit", "value"},
	"description": {"description", "desc", "memo", "narrative", "transaction description", "details", "transaction details"},
	"category":    {"category", "type", "transaction type", "classification"},
}

// DetectColumns proposes a column mapping by case-insensitive substring
// matching against known header synonyms. The first matching header wins for
// each field; unmatched fields stay empty. The result is advisory: callers
// let the user override it before import.
func DetectColumns(headers []string) Mapping {
	var m Mapping
	for _, header := range headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		for field, patterns := range columnPatterns {
			if fieldValue(&m, field) != "" {
				continue
			}
			for _, p := range patterns {
				if strings.Contains(lower, p) {
					setField(&m, field, header)
					break
				}
			}
		}
	}
	return m
}

// MissingRequired lists required logical fields with no mapped column.
// A non-empty result blocks import until the user resolves the mapping.
func (m Mapping) MissingRequired() []string {
	var missing []string
	if m.Date == "" {
		missing = append(missing, "date")
	}
	if m.Amount == "" {
		missing = append(missing, "amount")
	}
	return missing
}

func fieldValue(m *Mapping, field string) string {
	switch field {
	case "date":
		return m.Date
	case "amount":
		return m.Amount
	case "description":
		return m.Description
	case "category":
		return m.Category
	}
	return ""
}

func setField(m *Mapping, field, header string) {
	switch field {
	case "date":
		m.Date = header
	case "amount":
		m.Amount = header
	case "description":
		m.Description = header
	case "category":
		m.Category = header
	}
}
