package instance

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status is the health status of an instance.
type Status string

const (
	StatusUp           Status = "UP"
	StatusDown         Status = "DOWN"
	StatusUnknown      Status = "UNKNOWN"
	StatusOutOfService Status = "OUT_OF_SERVICE"
)

// Statuses lists every status an instance can report.
var Statuses = []Status{StatusUp, StatusDown, StatusUnknown, StatusOutOfService}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s belongs to the known status set.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Health is the payload served by an instance's health endpoint.
type Health struct {
	Status  Status         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// Validate checks that the payload carries a known status.
func (h Health) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Status,
			validation.Required,
			validation.By(func(value interface{}) error {
				status, _ := value.(Status)
				if !status.Valid() {
					return validation.NewError("validation_unknown_status", "must be one of UP, DOWN, UNKNOWN, OUT_OF_SERVICE")
				}
				return nil
			}),
		),
	)
}
