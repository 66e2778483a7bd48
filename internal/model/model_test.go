package model

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"", ""},
		{"  ", ""},
		{"work", CategoryWork},
		{"Meeting", CategoryMeeting},
		{" EXERCISE ", CategoryExercise},
		{"holiday", CategoryOther},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryLabels(t *testing.T) {
	want := []string{"Work", "Personal", "Meeting", "Break", "Exercise", "Other"}
	for i, c := range Categories() {
		if got := c.Label(); got != want[i] {
			t.Errorf("%s.Label() = %q, want %q", c, got, want[i])
		}
	}
	if got := Category("").Label(); got != "" {
		t.Errorf("unset label = %q", got)
	}
}

func TestValidate(t *testing.T) {
	ok := ScheduleEvent{ID: "1", Time: "08:00-09:00", Title: "Morning Exercise", Category: CategoryExercise}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	// Malformed time slots are tolerated.
	degraded := ScheduleEvent{ID: "2", Time: "whenever", Title: "Lunch"}
	if err := degraded.Validate(); err != nil {
		t.Fatalf("Validate() on degraded slot = %v", err)
	}

	if err := (ScheduleEvent{Time: "08:00", Title: "  "}).Validate(); err == nil {
		t.Error("blank title accepted")
	}
	if err := (ScheduleEvent{Time: "08:00", Title: "x", Category: "holiday"}).Validate(); err == nil {
		t.Error("unknown category accepted")
	}
}
