package session

import (
	"encoding/hex"
	"net/netip"

	"golang.org/x/crypto/blake2b"
)

// HashUserAgent hashes a user-agent string for storage and comparison. Raw
// user-agent strings never enter session records or logs.
func HashUserAgent(userAgent string) string {
	sum := blake2b.Sum256([]byte(userAgent))
	return hex.EncodeToString(sum[:16])
}

// sameSubnet reports whether two addresses share a prefix of the given
// length. Mixed or unparsable address families never match.
func sameSubnet(a, b string, bits int) bool {
	addrA, errA := netip.ParseAddr(a)
	addrB, errB := netip.ParseAddr(b)
	if errA != nil || errB != nil {
		return false
	}
	if addrA.Is4() != addrB.Is4() {
		return false
	}
	if bits > addrA.BitLen() {
		bits = addrA.BitLen()
	}

	prefixA, errA := addrA.Prefix(bits)
	prefixB, errB := addrB.Prefix(bits)
	if errA != nil || errB != nil {
		return false
	}
	return prefixA == prefixB
}

// riskDelta scores one validation observation against the session origin
func (s *Store) riskDelta(rec *Record, currentIP, userAgentHash string) int {
	delta := 0

	switch {
	case currentIP == rec.OriginIP:
		// exact match, no signal
	case sameSubnet(currentIP, rec.OriginIP, s.config.IPSubnetToleranceBits):
		delta += s.config.SubnetMismatchWeight
	default:
		delta += s.config.IPMismatchWeight
	}

	if userAgentHash != rec.UserAgentHash {
		delta += s.config.UserAgentMismatchWeight
	}

	return delta
}
