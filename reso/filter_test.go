package reso

import (
	"strings"
	"testing"

	"mls_sync/models"
)

func TestBuildFilter_CityAndMinPrice(t *testing.T) {
	filter := BuildFilter(models.ListingQuery{City: "Omaha", MinPrice: 300000})

	if !strings.Contains(filter, "City eq 'Omaha'") {
		t.Fatalf("missing city clause: %s", filter)
	}
	if !strings.Contains(filter, "ListPrice ge 300000") {
		t.Fatalf("missing price clause: %s", filter)
	}
	if !strings.Contains(filter, " and ") {
		t.Fatalf("clauses not conjoined: %s", filter)
	}
	if strings.Contains(filter, "BedroomsTotal") {
		t.Fatalf("unexpected beds clause: %s", filter)
	}
	if strings.Contains(filter, "PostalCode") {
		t.Fatalf("unexpected postal clause: %s", filter)
	}
}

func TestBuildFilter_DefaultStatus(t *testing.T) {
	filter := BuildFilter(models.ListingQuery{})

	if filter != "StandardStatus eq 'Active'" {
		t.Fatalf("expected lone default status clause, got %s", filter)
	}
}

func TestBuildFilter_MultiStatusDisjunction(t *testing.T) {
	filter := BuildFilter(models.ListingQuery{Statuses: []string{"Active", "Pending"}})

	want := "(StandardStatus eq 'Active' or StandardStatus eq 'Pending')"
	if filter != want {
		t.Fatalf("expected %s, got %s", want, filter)
	}
}

func TestBuildFilter_Deterministic(t *testing.T) {
	q := models.ListingQuery{
		City:         "Lincoln",
		State:        "NE",
		PostalCode:   "68502",
		MinPrice:     200000,
		MaxPrice:     400000,
		MinBeds:      3,
		MinBaths:     2,
		PropertyType: "Residential",
		Statuses:     []string{"Active", "Pending"},
	}

	want := "City eq 'Lincoln' and StateOrProvince eq 'NE' and PostalCode eq '68502'" +
		" and ListPrice ge 200000 and ListPrice le 400000 and BedroomsTotal ge 3" +
		" and BathroomsTotalInteger ge 2 and PropertyType eq 'Residential'" +
		" and (StandardStatus eq 'Active' or StandardStatus eq 'Pending')"

	for i := 0; i < 3; i++ {
		if got := BuildFilter(q); got != want {
			t.Fatalf("pass %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestBuildFilter_EscapesQuotes(t *testing.T) {
	filter := BuildFilter(models.ListingQuery{City: "O'Neill"})

	if !strings.Contains(filter, "City eq 'O''Neill'") {
		t.Fatalf("quote not escaped: %s", filter)
	}
}
