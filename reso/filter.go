package reso

import (
	"fmt"
	"strings"

	"mls_sync/models"
)

// BuildFilter renders a ListingQuery as an OData $filter expression. Clause
// order is fixed so output is stable for a given query; absent parameters
// emit no clause. An empty status set defaults to Active.
func BuildFilter(q models.ListingQuery) string {
	var clauses []string

	if q.City != "" {
		clauses = append(clauses, fmt.Sprintf("City eq '%s'", escapeODataString(q.City)))
	}
	if q.State != "" {
		clauses = append(clauses, fmt.Sprintf("StateOrProvince eq '%s'", escapeODataString(q.State)))
	}
	if q.PostalCode != "" {
		clauses = append(clauses, fmt.Sprintf("PostalCode eq '%s'", escapeODataString(q.PostalCode)))
	}
	if q.MinPrice > 0 {
		clauses = append(clauses, fmt.Sprintf("ListPrice ge %d", q.MinPrice))
	}
	if q.MaxPrice > 0 {
		clauses = append(clauses, fmt.Sprintf("ListPrice le %d", q.MaxPrice))
	}
	if q.MinBeds > 0 {
		clauses = append(clauses, fmt.Sprintf("BedroomsTotal ge %d", q.MinBeds))
	}
	if q.MinBaths > 0 {
		clauses = append(clauses, fmt.Sprintf("BathroomsTotalInteger ge %d", q.MinBaths))
	}
	if q.PropertyType != "" {
		clauses = append(clauses, fmt.Sprintf("PropertyType eq '%s'", escapeODataString(q.PropertyType)))
	}

	clauses = append(clauses, statusClause(q.Statuses))

	return strings.Join(clauses, " and ")
}

func statusClause(statuses []string) string {
	if len(statuses) == 0 {
		statuses = []string{"Active"}
	}
	if len(statuses) == 1 {
		return fmt.Sprintf("StandardStatus eq '%s'", escapeODataString(statuses[0]))
	}

	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("StandardStatus eq '%s'", escapeODataString(s)))
	}
	return "(" + strings.Join(parts, " or ") + ")"
}

// escapeODataString doubles single quotes per the OData literal rules.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
