// internal/geocode/fallback.go
package geocode

import (
	"strings"

	"canibuildit/internal/models"
)

// fallbackAddress is a known-good NZ address served when the upstream
// geocoder is unavailable.
type fallbackAddress struct {
	Address     string
	Coordinates models.Coordinates
}

// fallbackAddresses keeps the assessment flow usable through a LINZ outage.
// Coordinates are approximate; the analysis endpoints only need a locality.
var fallbackAddresses = []fallbackAddress{
	{"1 Queen Street, Auckland Central, Auckland", models.Coordinates{Lat: -36.8436, Lng: 174.7663}},
	{"2 Ponsonby Road, Ponsonby, Auckland", models.Coordinates{Lat: -36.8586, Lng: 174.7472}},
	{"10 Lambton Quay, Wellington Central, Wellington", models.Coordinates{Lat: -41.2784, Lng: 174.7767}},
	{"5 Cathedral Square, Christchurch Central, Christchurch", models.Coordinates{Lat: -43.5309, Lng: 172.6365}},
	{"15 George Street, Dunedin Central, Dunedin", models.Coordinates{Lat: -45.8742, Lng: 170.5036}},
	{"20 Victoria Street, Hamilton Central, Hamilton", models.Coordinates{Lat: -37.7870, Lng: 175.2793}},
	{"8 Devonport Road, Tauranga, Bay of Plenty", models.Coordinates{Lat: -37.6861, Lng: 176.1674}},
	{"3 Trafalgar Street, Nelson", models.Coordinates{Lat: -41.2706, Lng: 173.2840}},
}

// matchFallback does a case-insensitive token match against the static list.
// An empty query matches nothing.
func matchFallback(query string) []fallbackAddress {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	matches := []fallbackAddress{}
	for _, fa := range fallbackAddresses {
		addr := strings.ToLower(fa.Address)
		if strings.Contains(addr, q) {
			matches = append(matches, fa)
			continue
		}
		// Any query token appearing in the address counts as a match.
		for _, token := range strings.Fields(q) {
			if len(token) >= 3 && strings.Contains(addr, token) {
				matches = append(matches, fa)
				break
			}
		}
	}
	return matches
}
