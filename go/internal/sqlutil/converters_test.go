package sqlutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type summary struct {
	Season string `json:"season"`
	Rank   int    `json:"rank"`
}

func TestNullJSON(t *testing.T) {
	col, err := ToNullJSON[summary](nil)
	if err != nil {
		t.Fatalf("ToNullJSON(nil): %v", err)
	}
	if col.Valid {
		t.Fatalf("nil value should be NULL")
	}
	got, err := FromNullJSON[summary](col)
	if err != nil || got != nil {
		t.Fatalf("FromNullJSON(NULL) = %v, %v", got, err)
	}

	in := &summary{Season: "2026/27", Rank: 3}
	col, err = ToNullJSON(in)
	if err != nil {
		t.Fatalf("ToNullJSON: %v", err)
	}
	if !col.Valid {
		t.Fatalf("non-nil value stored as NULL")
	}
	got, err = FromNullJSON[summary](col)
	if err != nil {
		t.Fatalf("FromNullJSON: %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
