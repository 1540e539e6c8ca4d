package currency

import "strings"

// SymbolTable maps a currency symbol as typed in the sales export to its
// ISO 4217 code.
type SymbolTable map[string]string

// DefaultSymbols covers the currencies published by the rate service.
func DefaultSymbols() SymbolTable {
	return SymbolTable{
		"A$": "AUD", "лв": "BGN", "R$": "BRL", "C$": "CAD", "CHF": "CHF", "¥": "JPY",
		"Kč": "CZK", "kr": "SEK", "€": "EUR", "£": "GBP", "HK$": "HKD", "Ft": "HUF",
		"Rp": "IDR", "₪": "ILS", "₹": "INR", "NZ$": "NZD", "$": "USD", "₩": "KRW",
		"₱": "PHP", "zł": "PLN", "lei": "RON", "S$": "SGD", "฿": "THB", "₺": "TRY", "R": "ZAR",
	}
}

// Resolve returns the ISO code for a symbol. A value that is already one of
// the table's ISO codes resolves to itself.
func (t SymbolTable) Resolve(symbol string) (string, bool) {
	symbol = strings.TrimSpace(symbol)
	if code, ok := t[symbol]; ok {
		return code, true
	}
	upper := strings.ToUpper(symbol)
	for _, code := range t {
		if code == upper {
			return code, true
		}
	}
	return "", false
}
