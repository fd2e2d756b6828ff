package models

import (
	"fmt"
)

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// ConfigurationError is raised for request parameters that cannot be
// combined: unmapped granularity, Median mixed with another aggregation
// function, or the wrong number of source series for a derivation.
type ConfigurationError struct {
	Component string
	Message   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

// IsTransient returns false; a retry sends the same bad request
func (e *ConfigurationError) IsTransient() bool {
	return false
}

// NewConfigurationError formats a ConfigurationError
func NewConfigurationError(component, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Component: component, Message: fmt.Sprintf(format, args...)}
}

// DataShapeError is raised when input series cannot be combined because
// their unit of measure or resolution differ.
type DataShapeError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("series disagree on %s: %q vs %q", e.Field, e.Expected, e.Actual)
}

// IsTransient returns false as the inputs will not change on retry
func (e *DataShapeError) IsTransient() bool {
	return false
}

// NotFoundError is returned when a data set, measurement, location or
// region is not in the catalog
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// IsTransient returns false as missing catalog entries stay missing
func (e *NotFoundError) IsTransient() bool {
	return false
}
