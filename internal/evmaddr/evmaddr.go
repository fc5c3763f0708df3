// Package evmaddr provides canonicalization helpers for EVM addresses as
// they appear in raw logs and tabular exports.
package evmaddr

import "strings"

// Zero is the reserved EVM zero address. Transfers from it are token mints;
// it is never a graph node or cluster member.
const Zero = "0x0000000000000000000000000000000000000000"

// Normalize lower-cases and trims an address field. Missing or non-address
// placeholder values ("nan", "null", "none") collapse to the empty string.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "nan", "null", "none", "<na>":
		return ""
	}
	return s
}

// FromTopic extracts the 20-byte address packed into a 32-byte log topic.
// Topics arrive as 66-char hex strings; the address is the last 40 chars.
func FromTopic(topic string) string {
	t := strings.ToLower(strings.TrimSpace(topic))
	if len(t) == 66 && strings.HasPrefix(t, "0x") {
		return "0x" + t[26:]
	}
	return t
}

// IsZero reports whether the normalized address is the zero address.
func IsZero(addr string) bool {
	return addr == Zero
}
