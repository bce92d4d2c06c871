package audit

import "time"

// Record is one row of an audit study. Fields holds only schema-checked
// string values keyed by the study's field names; absent keys export as
// empty cells.
type Record struct {
	ID        string            `bson:"id" json:"id"`
	Fields    map[string]string `bson:"fields" json:"fields"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}
