package dto

import "time"

// RateLimitInfo is the limiter's verdict for one request window. BlockedUntil
// is set only while the identifier is serving a block penalty.
type RateLimitInfo struct {
	Allowed      bool       `json:"allowed"`
	Remaining    int        `json:"remaining"`
	ResetTime    *time.Time `json:"reset_time,omitempty"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}
