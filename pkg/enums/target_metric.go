package enums

import "fmt"

// TargetMetric selects which measure a dealer target accumulates. The
// string values mirror the phrasing used in scheme documents.
type TargetMetric string

const (
	TargetMetricUnitsSold  TargetMetric = "Units Sold"
	TargetMetricSalesValue TargetMetric = "Sales Value"
)

var validTargetMetrics = []TargetMetric{
	TargetMetricUnitsSold,
	TargetMetricSalesValue,
}

// String implements fmt.Stringer.
func (m TargetMetric) String() string {
	return string(m)
}

// IsValid reports whether the value is a known TargetMetric.
func (m TargetMetric) IsValid() bool {
	for _, candidate := range validTargetMetrics {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseTargetMetric converts raw input into a TargetMetric.
func ParseTargetMetric(value string) (TargetMetric, error) {
	for _, candidate := range validTargetMetrics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid target metric %q", value)
}
