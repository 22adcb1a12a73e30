package validation

import (
	"strings"
	"testing"
)

type windowRequest struct {
	Days      int      `json:"days" validate:"min=1,max=16"`
	ColorBy   string   `json:"color_by" validate:"omitempty,oneof=distance price"`
	Facing    string   `json:"facing" validate:"omitempty,compass"`
	Label     string   `json:"label" validate:"notblank"`
	Lat       float64  `json:"lat" validate:"latitude"`
	Low       float64  `json:"low" validate:"min=0"`
	High      float64  `json:"high" validate:"gtefield=Low"`
	Winds     []string `json:"winds" validate:"dive,compass"`
	Untouched string
}

func validRequest() windowRequest {
	return windowRequest{Days: 3, ColorBy: "price", Facing: "SW", Label: "Coxos", Lat: 39.0, Low: 1, High: 2, Winds: []string{"E", "north-east"}}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	req := validRequest()
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct() error = %v", err)
	}
}

func TestValidateStruct_Messages(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*windowRequest)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"days below min", func(r *windowRequest) { r.Days = 0 }, "days", "min", "days must be at least 1"},
		{"days above max", func(r *windowRequest) { r.Days = 17 }, "days", "max", "days must be at most 16"},
		{"criterion", func(r *windowRequest) { r.ColorBy = "rating" }, "color_by", "oneof", "color_by must be one of: distance price"},
		{"facing", func(r *windowRequest) { r.Facing = "UP" }, "facing", "compass", `facing must be a compass point, got "UP"`},
		{"blank label", func(r *windowRequest) { r.Label = " \t" }, "label", "notblank", "label must not be blank"},
		{"latitude", func(r *windowRequest) { r.Lat = 91 }, "lat", "latitude", "lat must be a valid latitude (-90 to 90)"},
		{"inverted range", func(r *windowRequest) { r.High = 0.5 }, "high", "gtefield", "high must be greater than or equal to low"},
		{"wind element", func(r *windowRequest) { r.Winds[1] = "sideways" }, "winds[1]", "compass", `winds[1] must be a compass point, got "sideways"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := ValidateStruct(&req)
			if err == nil {
				t.Fatal("ValidateStruct() error = nil")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("got %d field errors, want 1: %v", len(err.Errors()), err)
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField || fe.Tag() != tt.wantTag {
				t.Errorf("field error = %s/%s, want %s/%s", fe.Field(), fe.Tag(), tt.wantField, tt.wantTag)
			}
			if fe.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", fe.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_JoinsErrors(t *testing.T) {
	req := validRequest()
	req.Days = 0
	req.Label = ""

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() error = nil")
	}
	msg := err.Error()
	if !strings.Contains(msg, "days must be at least 1") || !strings.Contains(msg, "label must not be blank") {
		t.Errorf("Error() = %q", msg)
	}
	if strings.Count(msg, "; ") != 1 {
		t.Errorf("Error() = %q, want two messages joined", msg)
	}
}
