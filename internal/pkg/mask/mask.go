package mask

import "strings"

// Email hides a mailbox address down to its first rune and domain:
// "user@example.com" -> "u***@example.com". Used for pre-verification
// responses where the full address must not leak.
func Email(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "***"
	}
	local := []rune(addr[:at])
	return string(local[0]) + "***" + addr[at:]
}
