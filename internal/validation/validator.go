package validation

import (
	"regexp"
	"strings"

	"bandbooster-authoring/internal/domain"
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID validates a ULID path or query parameter.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}

	return errors
}

// ValidateGroupType validates the group_type parameter against the known
// document shapes.
func (v *Validator) ValidateGroupType(groupType string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(groupType) == "" {
		errors = append(errors, domain.NewMissingFieldError("group_type"))
		return errors
	}

	if !domain.KnownGroupType(domain.GroupType(groupType)) {
		errors = append(errors, domain.NewInvalidFormatError("group_type", groupType))
	}

	return errors
}

// ValidateStructureRequest validates the common body of the stateless
// structure operations (count, derive, preview).
func (v *Validator) ValidateStructureRequest(groupType string, structure []byte) domain.ValidationErrors {
	errors := v.ValidateGroupType(groupType)

	if len(structure) == 0 {
		errors = append(errors, domain.NewMissingFieldError("structure"))
	}

	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
