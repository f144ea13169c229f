package domain

import (
	"fmt"
	"strings"
	"time"
)

// FieldType enumerates supported dynamic field kinds.
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeDate   FieldType = "date"
	FieldTypeTime   FieldType = "time"
	FieldTypeSelect FieldType = "select"
)

// FieldSpec declares one dynamic field a subject asks of submitters.
type FieldSpec struct {
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// FieldSchema maps field names to their specs.
type FieldSchema map[string]FieldSpec

// Subject is a complaint category with its dynamic extra-field schema.
type Subject struct {
	ID          string
	Name        string
	Description *string
	Fields      FieldSchema
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the schema declaration itself.
func (s FieldSchema) Validate() error {
	for name, spec := range s {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("field name must not be blank")
		}
		switch spec.Type {
		case FieldTypeText, FieldTypeDate, FieldTypeTime:
		case FieldTypeSelect:
			if len(spec.Options) == 0 {
				return fmt.Errorf("field %q: select requires options", name)
			}
		default:
			return fmt.Errorf("field %q: unknown type %q", name, spec.Type)
		}
	}
	return nil
}

// ValidateData checks submitted supplementary data against the schema.
// Unknown keys are rejected so a submission cannot smuggle arbitrary data.
func (s FieldSchema) ValidateData(data map[string]any) error {
	for key := range data {
		if _, ok := s[key]; !ok {
			return fmt.Errorf("unexpected field %q", key)
		}
	}
	for name, spec := range s {
		raw, present := data[name]
		value, isString := raw.(string)
		if present && !isString {
			return fmt.Errorf("field %q: expected string value", name)
		}
		if !present || strings.TrimSpace(value) == "" {
			if spec.Required {
				return fmt.Errorf("field %q is required", name)
			}
			continue
		}
		switch spec.Type {
		case FieldTypeText:
		case FieldTypeDate:
			if _, err := time.Parse("2006-01-02", value); err != nil {
				return fmt.Errorf("field %q: invalid date %q", name, value)
			}
		case FieldTypeTime:
			if _, err := time.Parse("15:04", value); err != nil {
				return fmt.Errorf("field %q: invalid time %q", name, value)
			}
		case FieldTypeSelect:
			if !contains(spec.Options, value) {
				return fmt.Errorf("field %q: %q is not an allowed option", name, value)
			}
		}
	}
	return nil
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
