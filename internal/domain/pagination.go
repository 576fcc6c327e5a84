package domain

import (
	"encoding/base64"
	"strconv"
)

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 50

// MaxPageSize caps any requested page size.
const MaxPageSize = 200

// PageRequest holds pagination parameters for list operations.
type PageRequest struct {
	MaxResults int
	PageToken  string // opaque token (base64-encoded offset)
}

// Offset decodes the page token into an integer offset.
// Returns 0 if the token is empty or invalid.
func (p PageRequest) Offset() int {
	if p.PageToken == "" {
		return 0
	}
	decoded, err := base64.RawURLEncoding.DecodeString(p.PageToken)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(decoded))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// Limit returns the effective page size, clamped to [1, MaxPageSize].
func (p PageRequest) Limit() int {
	switch {
	case p.MaxResults <= 0:
		return DefaultPageSize
	case p.MaxResults > MaxPageSize:
		return MaxPageSize
	default:
		return p.MaxResults
	}
}

// NextPageToken returns the token for the page after p, or "" when total
// has been exhausted.
func (p PageRequest) NextPageToken(total int64) string {
	next := p.Offset() + p.Limit()
	if int64(next) >= total {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(next)))
}
