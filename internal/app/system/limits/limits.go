// internal/app/system/limits/limits.go
package limits

// Request body size limits.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize bounds every JSON request body.
	MaxJSONBodySize = 64 << 10 // 64 KB

	// MaxNameLength bounds user and group names, in characters.
	MaxNameLength = 200

	// MaxEmailLength bounds email addresses (RFC 5321 path limit).
	MaxEmailLength = 254
)
