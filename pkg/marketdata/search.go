package marketdata

import (
	"strings"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// popularSymbols is the static search universe. Yahoo has no supported public
// search endpoint, so search filters this list and falls back to treating the
// query itself as a candidate ticker.
var popularSymbols = []types.SymbolMatch{
	{Symbol: "RELIANCE.NS", Name: "Reliance Industries"},
	{Symbol: "TCS.NS", Name: "Tata Consultancy Services"},
	{Symbol: "HDFCBANK.NS", Name: "HDFC Bank"},
	{Symbol: "INFY.NS", Name: "Infosys"},
	{Symbol: "ICICIBANK.NS", Name: "ICICI Bank"},
	{Symbol: "HINDUNILVR.NS", Name: "Hindustan Unilever"},
	{Symbol: "ITC.NS", Name: "ITC"},
	{Symbol: "SBIN.NS", Name: "State Bank of India"},
	{Symbol: "BHARTIARTL.NS", Name: "Bharti Airtel"},
	{Symbol: "BAJFINANCE.NS", Name: "Bajaj Finance"},
	{Symbol: "ZOMATO.NS", Name: "Zomato Ltd"},
	{Symbol: "PAYTM.NS", Name: "One97 Communications"},
	{Symbol: "HDFCAMC.NS", Name: "HDFC Asset Management"},
	{Symbol: "TATAMOTORS.NS", Name: "Tata Motors"},
}

// SearchSymbols filters the popular-symbols list case-insensitively over
// symbol and name. An empty query returns the whole list; a query matching
// nothing is returned as a candidate NSE ticker so the client can still try
// fetching it.
func SearchSymbols(query string) []types.SymbolMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]types.SymbolMatch, len(popularSymbols))
		copy(results, popularSymbols)

		return results
	}

	q := strings.ToLower(query)

	var results []types.SymbolMatch

	for _, match := range popularSymbols {
		if strings.Contains(strings.ToLower(match.Symbol), q) || strings.Contains(strings.ToLower(match.Name), q) {
			results = append(results, match)
		}
	}

	if len(results) == 0 {
		upper := strings.ToUpper(query)

		return []types.SymbolMatch{{Symbol: upper + ".NS", Name: upper}}
	}

	return results
}
