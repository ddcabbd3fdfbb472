package group

import (
	"bytes"
	"fmt"
	"regexp"
)

// Flag is a boolean that additionally accepts the string "1"/"0" and
// "true"/"false" on the wire. The legacy admin frontend sends checkbox
// values as "1".
type Flag bool

// UnmarshalJSON implements the coercion rules for Flag.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.Trim(data, `"`)) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("invalid boolean flag %s", data)
	}

	return nil
}

// Bool returns the flag as a plain bool.
func (f Flag) Bool() bool {
	return bool(f)
}

// StorePermissionInput is one per-store grant in a create/update payload.
type StorePermissionInput struct {
	StoreID    uint `json:"store_id"`
	Inventory  Flag `json:"inventory"`
	Orders     Flag `json:"orders"`
	RMA        Flag `json:"rma"`
	Outbound   Flag `json:"outbound"`
	BulkSelect Flag `json:"bulk_select"`
}

// Input is the group create/update payload.
type Input struct {
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	MainPermissions  map[string]Flag        `json:"main_permissions"`
	StorePermissions []StorePermissionInput `json:"store_permissions"`
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validate checks the payload against the group naming rules.
func (in *Input) Validate() error {
	if in.Name == "" {
		return &ValidationError{Message: "Group name is required"}
	}

	if len(in.Name) < 2 || len(in.Name) > 50 {
		return &ValidationError{Message: "Group name must be between 2 and 50 characters"}
	}

	if !namePattern.MatchString(in.Name) {
		return &ValidationError{Message: "Group name can only contain letters, numbers, underscores and hyphens"}
	}

	if len(in.Description) > 500 {
		return &ValidationError{Message: "Description cannot exceed 500 characters"}
	}

	return nil
}
