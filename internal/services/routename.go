package services

import (
	"fmt"
	"regexp"
	"strings"

	"route-planner-service/internal/domain"
)

// Placeholder labels the composer emits while address data is incomplete.
const (
	RouteNameEmpty        = "--"
	RouteNameGenerating   = "Generating name..."
	RouteNameAwaitingPin  = "Awaiting point..."
	RouteNameRoundTrip    = "Round trip"
	RouteNameEditing      = "Editing route..."
	RouteNameMaxLength    = 60
	roundTripMarkerSuffix = " (round trip)"
)

// ParsedAddress is the heuristic breakdown of a geocoder address string.
type ParsedAddress struct {
	Street  string
	City    string
	Country string
}

var (
	digitRE          = regexp.MustCompile(`\d`)
	trailingNumberRE = regexp.MustCompile(`\s+\d+$`)
)

// ParseAddress splits a comma-delimited address into street, city and
// country. The first token is the most specific place name, the last is the
// country, the second-to-last the city. Postal digits are stripped from the
// city and trailing house numbers from the street.
func ParseAddress(address string) ParsedAddress {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return ParsedAddress{}
	}

	street := parts[0]
	country := parts[len(parts)-1]

	var city string
	if len(parts) > 1 {
		city = strings.TrimSpace(digitRE.ReplaceAllString(parts[len(parts)-2], ""))
	}
	// "Ioannina, Greece": the first token doubles as the city.
	if len(parts) == 2 {
		city = street
	}

	street = strings.TrimSpace(trailingNumberRE.ReplaceAllString(street, ""))

	return ParsedAddress{Street: street, City: city, Country: country}
}

// ComposeRouteName derives the default route label from the endpoint
// addresses. Precedence: no pins, loading endpoints, single pin, round trip,
// then the structured two-endpoint composition. The caller is responsible
// for rule (1): a user-edited name is never overwritten, so the composer is
// simply not invoked in that case.
func ComposeRouteName(entries []domain.AddressEntry, roundTrip bool) string {
	if len(entries) == 0 {
		return RouteNameEmpty
	}

	start := entries[0]
	end := entries[len(entries)-1]

	if start.Status == domain.AddressLoading ||
		(len(entries) > 1 && end.Status == domain.AddressLoading) {
		return RouteNameGenerating
	}

	if len(entries) == 1 {
		if start.Status == domain.AddressSuccess {
			return start.Address
		}
		return RouteNameAwaitingPin
	}

	if roundTrip {
		if start.Status != domain.AddressSuccess {
			return RouteNameRoundTrip
		}
		addr := ParseAddress(start.Address)
		head := addr.City
		if head == "" {
			head = addr.Street
		}
		return fmt.Sprintf("%s, %s%s", head, addr.Street, roundTripMarkerSuffix)
	}

	if start.Status != domain.AddressSuccess || end.Status != domain.AddressSuccess {
		return RouteNameEditing
	}

	startAddr := ParseAddress(start.Address)
	endAddr := ParseAddress(end.Address)
	startPart := formatEndpoint(startAddr)
	endPart := formatEndpoint(endAddr)

	switch {
	case startAddr.Country != endAddr.Country:
		// Country shown only when the endpoints differ.
		return fmt.Sprintf("%s, %s → %s, %s", startAddr.Country, startPart, endAddr.Country, endPart)
	case startAddr.City != endAddr.City:
		return fmt.Sprintf("%s → %s", startPart, endPart)
	case startAddr.Street == endAddr.Street:
		return fmt.Sprintf("%s: %s", startAddr.City, startAddr.Street)
	default:
		return fmt.Sprintf("%s: %s → %s", startAddr.City, startAddr.Street, endAddr.Street)
	}
}

// formatEndpoint renders one endpoint, collapsing village-style addresses
// where the street and city resolve to the same name.
func formatEndpoint(a ParsedAddress) string {
	if a.City == "" {
		return a.Street
	}
	if a.Street == "" {
		return a.City
	}
	if a.Street == a.City {
		return a.City
	}
	return fmt.Sprintf("%s, %s", a.City, a.Street)
}

// TruncateRouteName enforces the user-override length cap. The second return
// reports whether truncation happened, so callers can warn.
func TruncateRouteName(name string) (string, bool) {
	runes := []rune(name)
	if len(runes) <= RouteNameMaxLength {
		return name, false
	}
	return string(runes[:RouteNameMaxLength]), true
}
