// Package privacy provides utilities for keeping personally identifiable
// information out of logs and notifications.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// AnonymizeIP truncates an IP address to remove the host-identifying portion.
//
// For IPv4 addresses, the last octet is zeroed (e.g., "192.168.1.47" ->
// "192.168.1.0"). For IPv6 addresses, only the /48 prefix is kept.
//
// Returns "invalid" for unparseable IP addresses, and "unknown" for empty
// strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	// IPv6: keep only the first 6 bytes (/48 prefix).
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskSSN reduces a social security number to its last four digits for log
// and notification output ("123-45-6789" -> "***-**-6789"). Values that do
// not look like an SSN are fully masked.
func MaskSSN(ssn string) string {
	if ssn == "" {
		return ""
	}
	digits := strings.ReplaceAll(ssn, "-", "")
	if len(digits) != 9 {
		return "*********"
	}
	return "***-**-" + digits[5:]
}
