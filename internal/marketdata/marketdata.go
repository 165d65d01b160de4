// Package marketdata holds the error taxonomy and helpers shared by the
// market-data sources. Concrete sources live in subpackages.
package marketdata

import (
	"errors"
	"sort"
	"strings"
)

// Sentinels wrapped by every source so callers can tell a transport failure
// from a payload that could not be decoded.
var (
	ErrFetch = errors.New("market data fetch failed")
	ErrParse = errors.New("market data parse failed")
)

// FilterQuote keeps the symbols quoted in suffix (e.g. "USDT"), upper-cased,
// de-duplicated and sorted. An empty suffix keeps everything.
func FilterQuote(symbols []string, suffix string) []string {
	suffix = strings.ToUpper(suffix)
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || s == suffix || !strings.HasSuffix(s, suffix) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
