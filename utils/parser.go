package utils

import (
	"regexp"
	"strings"
)

// priceTokenRegex finds the price query parameter idealo embeds in offer redirect links.
var priceTokenRegex = regexp.MustCompile(`price=([\d.]+)`)

// PriceToken returns the numeric text of the first price=<number> token in href.
func PriceToken(href string) (string, bool) {
	m := priceTokenRegex.FindStringSubmatch(href)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// FormatPrice prefixes the price token of href with currency, or returns fallback.
func FormatPrice(href, currency, fallback string) string {
	token, ok := PriceToken(href)
	if !ok {
		return fallback
	}
	return currency + token
}

// shopNameRegex matches everything that is not an ASCII letter, digit or space.
var shopNameRegex = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// CleanShopName cuts raw at its first dot, trims it and drops every character
// outside [A-Za-z0-9 ].
func CleanShopName(raw string) string {
	name := raw
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	return shopNameRegex.ReplaceAllString(name, "")
}
