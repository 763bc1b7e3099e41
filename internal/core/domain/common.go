package domain

import "time"

// AuditFields holds creation and modification metadata shared by the
// persisted budgeting entities. The By fields carry the owner ID that
// performed the write.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
