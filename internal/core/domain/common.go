package domain

import "time"

// AuditFields records who created and last touched an entity, and when.
// CreatedBy and LastUpdatedBy hold user IDs, or a system identifier for
// rows written outside a user request (e.g. the signup flow).
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
