package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2025-06-01", "2024-02-29", "2000-12-31"}
	invalid := []string{"2025-13-01", "2025-06-32", "2023-02-29", "06-01-2025", "2025/06/01", "not-a-date", ""}
	for _, d := range valid {
		if _, ok := IsValidDate(d); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", d)
		}
	}
	for _, d := range invalid {
		if _, ok := IsValidDate(d); ok {
			t.Errorf("IsValidDate(%q) = true, want false", d)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"earning", "deduction"}
	if !IsInSlice("earning", slice) {
		t.Errorf("IsInSlice(%q) = false, want true", "earning")
	}
	if IsInSlice("Earning", slice) {
		t.Errorf("IsInSlice(%q) = true, want false", "Earning")
	}
	if IsInSlice("bonus", slice) {
		t.Errorf("IsInSlice(%q) = true, want false", "bonus")
	}
	if IsInSlice("earning", nil) {
		t.Errorf("IsInSlice on nil slice = true, want false")
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "is required"},
		{Field: "month", Message: "must be between 1 and 12"},
	}

	want := "name: is required; month: must be between 1 and 12"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	m := errs.ToMap()
	if len(m) != 2 || m["name"] != "is required" || m["month"] != "must be between 1 and 12" {
		t.Errorf("ToMap() = %v", m)
	}
}
