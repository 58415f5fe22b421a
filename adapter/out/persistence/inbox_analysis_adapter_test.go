package persistence

import (
	"strings"
	"testing"
)

func TestListActionablesQueryOrdering(t *testing.T) {
	for _, filtered := range []bool{false, true} {
		query := listActionablesQuery(filtered)

		order := strings.Index(query, "ORDER BY deadline ASC NULLS LAST")
		if order < 0 {
			t.Fatalf("filtered=%v: query must order soonest deadline first with undated last:\n%s", filtered, query)
		}
		limit := strings.Index(query, "LIMIT")
		if limit < order {
			t.Errorf("filtered=%v: LIMIT must follow the ORDER BY clause:\n%s", filtered, query)
		}
		if strings.Contains(query, "ORDER BY created_at DESC LIMIT") {
			t.Errorf("filtered=%v: listing must not order by creation time alone", filtered)
		}
	}

	if !strings.Contains(listActionablesQuery(true), "completed = $2") {
		t.Error("filtered query must constrain on completed")
	}
}
