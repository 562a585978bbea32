package models

import "time"

// StoreInfo describes an existing persistent store.
type StoreInfo struct {
	Name       string    `json:"name"`
	Driver     string    `json:"driver"`
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
