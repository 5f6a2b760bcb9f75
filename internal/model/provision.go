package model

import "time"

// ProvisionStatus is the outcome of one provisioning attempt.
type ProvisionStatus string

const (
	ProvisionStatusCached  ProvisionStatus = "cached"  // File already present, no request made
	ProvisionStatusFetched ProvisionStatus = "fetched" // Downloaded and written
	ProvisionStatusFailed  ProvisionStatus = "failed"  // Request, validation, or write failed
)

// Provision records one attempt to make the boundary dataset available
// locally.
type Provision struct {
	ID        string          `json:"id"`
	URL       string          `json:"url,omitempty"`
	Path      string          `json:"path"`
	Status    ProvisionStatus `json:"status"`
	Bytes     int64           `json:"bytes"`
	SHA256    string          `json:"sha256,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
