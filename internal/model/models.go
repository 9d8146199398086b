// Package model defines core data structures for wolbook.
package model

import "time"

// Field names a HostRecord field. The values double as the JSON keys of the
// backing store.
type Field string

const (
	FieldName            Field = "name"
	FieldAddress         Field = "ip"
	FieldDynamicName     Field = "ddns"
	FieldHardwareAddress Field = "mac"
	FieldPort            Field = "port"
)

// Label returns the human-readable label for a field.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "PC Name"
	case FieldAddress:
		return "IP Address"
	case FieldDynamicName:
		return "DDNS Address"
	case FieldHardwareAddress:
		return "MAC Address"
	case FieldPort:
		return "Port Number"
	}
	return string(f)
}

// Fields lists record fields in display and form order.
var Fields = []Field{FieldName, FieldAddress, FieldDynamicName, FieldHardwareAddress, FieldPort}

// HostRecord is one managed machine.
type HostRecord struct {
	Name            string `json:"name"`
	Address         string `json:"ip"`
	DynamicName     string `json:"ddns"`
	HardwareAddress string `json:"mac"`
	Port            int    `json:"port"`
}

// IsDynamic reports whether the record's address comes from a dynamic name.
func (r HostRecord) IsDynamic() bool {
	return r.DynamicName != ""
}

// HostList is the on-disk document holding the registry.
type HostList struct {
	Hosts []HostRecord `json:"pc_list"`
}

// WakeEvent records one wake attempt.
type WakeEvent struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Address         string    `json:"ip"`
	HardwareAddress string    `json:"mac"`
	Port            int       `json:"port"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// ResolveEvent records one dynamic-name resolution.
type ResolveEvent struct {
	ID          int64     `json:"id"`
	DynamicName string    `json:"ddns"`
	Address     string    `json:"ip"`
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReportOptions defines options for report generation.
type ReportOptions struct {
	Since      time.Time `json:"since"`
	Until      time.Time `json:"until"`
	Format     string    `json:"format"`
	OutputPath string    `json:"output_path"`
}
