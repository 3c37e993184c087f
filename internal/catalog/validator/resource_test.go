package validator

import (
	"testing"

	"voyago/pkg/logger"
	"voyago/pkg/model"
)

func newTestValidator() *ResourceValidator {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	return NewResourceValidator(log)
}

func validCar() *model.Resource {
	return &model.Resource{
		Name:          "Compact car",
		Kind:          model.KindCar,
		Granularity:   model.GranularityDay,
		OperatingDays: []string{"Monday", "Tuesday"},
	}
}

func validTour() *model.Resource {
	return &model.Resource{
		Name:          "Harbor tour",
		Kind:          model.KindTour,
		Granularity:   model.GranularitySlot,
		OperatingDays: []string{"Saturday", "Sunday"},
		SlotTemplates: []string{"09:00", "13:00", "17:00"},
		EndOfDay:      "20:00",
	}
}

func TestValidate_ValidResources(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validCar()); err != nil {
		t.Errorf("valid car rejected: %v", err)
	}
	if err := v.Validate(validTour()); err != nil {
		t.Errorf("valid tour rejected: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(*model.Resource)
	}{
		{"missing name", func(r *model.Resource) { r.Name = "" }},
		{"name too short", func(r *model.Resource) { r.Name = "x" }},
		{"unknown kind", func(r *model.Resource) { r.Kind = "boat" }},
		{"unknown granularity", func(r *model.Resource) { r.Granularity = "hour" }},
		{"no operating days", func(r *model.Resource) { r.OperatingDays = nil }},
		{"bad weekday", func(r *model.Resource) { r.OperatingDays = []string{"Funday"} }},
		{"bad time zone", func(r *model.Resource) { r.TimeZone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := validCar()
			tt.mutate(resource)
			if err := v.Validate(resource); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_SlotLayout(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(*model.Resource)
	}{
		{"malformed slot label", func(r *model.Resource) { r.SlotTemplates = []string{"9am"} }},
		{"out of range hour", func(r *model.Resource) { r.SlotTemplates = []string{"25:00"} }},
		{"no templates on slot resource", func(r *model.Resource) { r.SlotTemplates = nil }},
		{"unsorted templates", func(r *model.Resource) { r.SlotTemplates = []string{"13:00", "09:00"} }},
		{"duplicate templates", func(r *model.Resource) { r.SlotTemplates = []string{"09:00", "09:00"} }},
		{"end of day before last slot", func(r *model.Resource) { r.EndOfDay = "16:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := validTour()
			tt.mutate(resource)
			if err := v.Validate(resource); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}

	t.Run("templates on day resource", func(t *testing.T) {
		resource := validCar()
		resource.SlotTemplates = []string{"09:00"}
		if err := v.Validate(resource); err == nil {
			t.Error("expected validation error, got nil")
		}
	})
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateUpdate(&model.ResourceUpdate{Name: "Renamed tour"}); err != nil {
		t.Errorf("valid update rejected: %v", err)
	}

	bad := &model.ResourceUpdate{Kind: "plane"}
	if err := v.ValidateUpdate(bad); err == nil {
		t.Error("expected validation error for unknown kind")
	}

	templates := []string{"13:00", "09:00"}
	unsorted := &model.ResourceUpdate{Granularity: model.GranularitySlot, SlotTemplates: &templates}
	if err := v.ValidateUpdate(unsorted); err == nil {
		t.Error("expected validation error for unsorted templates")
	}
}
