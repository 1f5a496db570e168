package cache

import (
	"fmt"
	"net/url"
)

const KeyNetworkVersion = "network:version"

func KeyItinerary(version, start, end string) string {
	return fmt.Sprintf("itinerary:%s:%s:%s", version, url.QueryEscape(start), url.QueryEscape(end))
}

func KeyStations(version string) string {
	return fmt.Sprintf("stations:%s", version)
}

func KeyLines(version string) string {
	return fmt.Sprintf("lines:%s", version)
}
