package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExperiment_Validate(t *testing.T) {
	valid := func() *Experiment {
		return &Experiment{
			Name: "hero-copy",
			Page: "landing",
			Variants: []ExperimentVariant{
				{ID: "control", TrafficPercentage: 50},
				{ID: "bold", TrafficPercentage: 50},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *Experiment)
		wantErr bool
	}{
		{"valid", func(e *Experiment) {}, false},
		{"under 100 allowed", func(e *Experiment) { e.Variants[1].TrafficPercentage = 20 }, false},
		{"missing name", func(e *Experiment) { e.Name = " " }, true},
		{"missing page", func(e *Experiment) { e.Page = "" }, true},
		{"no variants", func(e *Experiment) { e.Variants = nil }, true},
		{"blank variant id", func(e *Experiment) { e.Variants[0].ID = "" }, true},
		{"duplicate variant id", func(e *Experiment) { e.Variants[1].ID = "control" }, true},
		{"negative traffic", func(e *Experiment) { e.Variants[0].TrafficPercentage = -1 }, true},
		{"traffic over 100", func(e *Experiment) { e.Variants[0].TrafficPercentage = 101 }, true},
		{"total over 100", func(e *Experiment) { e.Variants[0].TrafficPercentage = 60 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(e)
			err := e.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestExperiment_TrafficTotal(t *testing.T) {
	e := &Experiment{Variants: []ExperimentVariant{{TrafficPercentage: 70}, {TrafficPercentage: 20}, {TrafficPercentage: 10}}}
	if got := e.TrafficTotal(); got != 100 {
		t.Errorf("TrafficTotal() = %v, want 100", got)
	}
}

func TestVariantConfig_JSONRoundTrip(t *testing.T) {
	in := []byte(`{"headline":"Read the first chapter","discount":15,"showBadge":true,"note":null}`)

	var cfg VariantConfig
	if err := json.Unmarshal(in, &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if cfg["headline"].Kind() != KindString || cfg["headline"].String() != "Read the first chapter" {
		t.Errorf("headline = %v", cfg["headline"])
	}
	if cfg["discount"].Kind() != KindNumber || cfg["discount"].Interface() != 15.0 {
		t.Errorf("discount = %v", cfg["discount"])
	}
	if cfg["showBadge"].Kind() != KindBool || cfg["showBadge"].Interface() != true {
		t.Errorf("showBadge = %v", cfg["showBadge"])
	}
	if cfg["note"].Kind() != KindNull {
		t.Errorf("note kind = %v, want KindNull", cfg["note"].Kind())
	}

	out, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal of marshalled config failed: %v", err)
	}
	if back["discount"] != 15.0 || back["showBadge"] != true || back["note"] != nil {
		t.Errorf("marshalled config = %s", out)
	}
}

func TestVariantValue_RejectsNonScalars(t *testing.T) {
	var cfg VariantConfig
	err := json.Unmarshal([]byte(`{"nested":{"a":1}}`), &cfg)
	if err == nil {
		t.Fatal("expected error for nested object")
	}
}
