package model

import "strings"

// FilterType is the closed set of filter kinds the query translator
// understands. Stored filter types are free-form strings; ParseFilterType
// maps anything unrecognized to FilterUnknown, which the translator passes
// through as a verbatim key=value pair.
type FilterType string

const (
	FilterAttributeRange FilterType = "attributerange"
	FilterAttributeByID  FilterType = "attributebyid"
	FilterAttributeByKey FilterType = "attributebykey"
	FilterL1Category     FilterType = "l1categoryid"
	FilterL2Category     FilterType = "l2categoryid"
	FilterPostcode       FilterType = "postcode"
	FilterQuery          FilterType = "query"
	FilterUnknown        FilterType = "unknown"
)

// ParseFilterType normalizes a stored filter type string (case-insensitive).
func ParseFilterType(s string) FilterType {
	switch FilterType(strings.ToLower(strings.TrimSpace(s))) {
	case FilterAttributeRange:
		return FilterAttributeRange
	case FilterAttributeByID:
		return FilterAttributeByID
	case FilterAttributeByKey:
		return FilterAttributeByKey
	case FilterL1Category:
		return FilterL1Category
	case FilterL2Category:
		return FilterL2Category
	case FilterPostcode:
		return FilterPostcode
	case FilterQuery:
		return FilterQuery
	default:
		return FilterUnknown
	}
}
