package domain

import (
	"testing"
	"time"
)

func TestStudentInputValid(t *testing.T) {
	if !(StudentInput{RegNumber: "ABC-1/2", Email: "a@b.com", RowIndex: 1}).Valid() {
		t.Fatalf("expected complete input to be valid")
	}
	if (StudentInput{Email: "a@b.com"}).Valid() {
		t.Fatalf("expected missing registration number to be invalid")
	}
	if (StudentInput{RegNumber: "ABC-1/2"}).Valid() {
		t.Fatalf("expected missing email to be invalid")
	}
}

func TestNewStudentResultCopiesInput(t *testing.T) {
	in := StudentInput{RegNumber: "ECU-10209/25", Email: "student@example.com", RowIndex: 7}

	before := time.Now()
	result := NewStudentResult(in)
	after := time.Now()

	if result.RegNumber != in.RegNumber || result.Email != in.Email || result.RowIndex != in.RowIndex {
		t.Fatalf("expected input fields to be copied, got %+v", result)
	}
	if result.QueryTimestamp.Before(before) || result.QueryTimestamp.After(after) {
		t.Fatalf("expected query timestamp to be set at creation, got %v", result.QueryTimestamp)
	}
	if result.Processed {
		t.Fatalf("expected new result to be unprocessed")
	}
	if result.Error != nil || result.Status != nil {
		t.Fatalf("expected optional fields to default to nil")
	}
}

func TestToRowFollowsColumnOrder(t *testing.T) {
	status := "accepted"
	country := "Ecuador"
	result := NewStudentResult(StudentInput{RegNumber: "ECU-10209/25", Email: "student@example.com", RowIndex: 1})
	result.Status = &status
	result.Country = &country

	row := result.ToRow()
	if len(row) != len(ResultColumns) {
		t.Fatalf("expected %d columns, got %d", len(ResultColumns), len(row))
	}
	if row[0] != "ECU-10209/25" || row[1] != "student@example.com" {
		t.Fatalf("unexpected identity columns: %v", row[:2])
	}
	if row[5] != "Ecuador" || row[6] != "accepted" {
		t.Fatalf("expected country and status in schema positions, got %v", row)
	}
	if row[2] != "" || row[12] != "" {
		t.Fatalf("expected unset optional fields to serialize empty, got %v", row)
	}
	if row[11] != result.QueryTimestamp.Format(TimestampLayout) {
		t.Fatalf("unexpected timestamp cell %q", row[11])
	}
}
