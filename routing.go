package nacha

import "github.com/moov-io/ach"

// IsValidRoutingNumber reports whether routingNumber is nine ASCII digits whose
// ABA weighted checksum (3, 7, 1) is divisible by 10.
func IsValidRoutingNumber(routingNumber string) bool {
	if len(routingNumber) != 9 || !isDigits(routingNumber) {
		return false
	}
	return ach.CheckRoutingNumber(routingNumber) == nil
}
