package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWriteRoster(t *testing.T) {
	grade := 8.5
	rows := []RosterRow{
		{StudentCode: "SV001", FullName: "Trần Thị B", Email: "student1@classroom.com", Major: "CNTT", AcademicYear: "K18", GPA: 3.2, EnrolledAt: time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC), Status: "ACTIVE", Grade: &grade},
		{StudentCode: "SV002", FullName: "Lê Văn C", Email: "student2@classroom.com", Major: "CNTT", AcademicYear: "K18", GPA: 2.9, EnrolledAt: time.Date(2024, 9, 3, 8, 0, 0, 0, time.UTC), Status: "ACTIVE"},
	}

	var buf bytes.Buffer
	if err := WriteRoster(&buf, rows); err != nil {
		t.Fatalf("WriteRoster() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(RosterSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(got))
	}
	if got[0][1] != "Student ID" {
		t.Errorf("header[1] = %q", got[0][1])
	}
	if got[1][1] != "SV001" || got[2][1] != "SV002" {
		t.Errorf("rows out of order: %v / %v", got[1], got[2])
	}
	if got[1][10] != "8.5" {
		t.Errorf("grade = %q, want 8.5", got[1][10])
	}
}

func TestWriteRoster_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRoster(&buf, nil); err != nil {
		t.Fatalf("WriteRoster() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	got, _ := f.GetRows(RosterSheet)
	if len(got) != 1 {
		t.Errorf("rows = %d, want header only", len(got))
	}
}
