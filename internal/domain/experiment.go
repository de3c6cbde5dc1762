package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MaxTrafficPercentage is the total traffic share an experiment can split between its variants.
const MaxTrafficPercentage = 100.0

type Experiment struct {
	ID        string
	Name      string
	Page      string
	IsActive  bool
	Variants  []ExperimentVariant
	CreatedAt time.Time
}

type ExperimentVariant struct {
	ID                string
	Name              string
	TrafficPercentage float64
	Config            VariantConfig
}

// TrafficTotal returns the sum of the variants' traffic percentages.
func (e *Experiment) TrafficTotal() float64 {
	total := 0.0
	for _, v := range e.Variants {
		total += v.TrafficPercentage
	}
	return total
}

// Validate checks an experiment definition before it is stored.
// Traffic percentages must each be in [0,100] and sum to at most 100.
func (e *Experiment) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: experiment name is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(e.Page) == "" {
		return fmt.Errorf("%w: experiment page is required", ErrInvalidArgument)
	}
	if len(e.Variants) == 0 {
		return fmt.Errorf("%w: experiment %q has no variants", ErrInvalidArgument, e.Name)
	}

	seen := make(map[string]struct{}, len(e.Variants))
	for _, v := range e.Variants {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("%w: variant id is required", ErrInvalidArgument)
		}
		if _, ok := seen[v.ID]; ok {
			return fmt.Errorf("%w: duplicate variant id %q", ErrInvalidArgument, v.ID)
		}
		seen[v.ID] = struct{}{}
		if v.TrafficPercentage < 0 || v.TrafficPercentage > MaxTrafficPercentage {
			return fmt.Errorf("%w: variant %q traffic must be between 0 and 100, got %g", ErrInvalidArgument, v.ID, v.TrafficPercentage)
		}
	}

	if total := e.TrafficTotal(); total > MaxTrafficPercentage {
		return fmt.Errorf("%w: variant traffic adds up to %g, must be at most 100", ErrInvalidArgument, total)
	}
	return nil
}

// VariantConfig is the opaque configuration delivered with an assigned variant.
type VariantConfig map[string]VariantValue

// ValueKind identifies which member of a VariantValue is set.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// VariantValue is a JSON scalar: a string, a number, a bool or null.
type VariantValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

func StringValue(s string) VariantValue  { return VariantValue{kind: KindString, str: s} }
func NumberValue(n float64) VariantValue { return VariantValue{kind: KindNumber, num: n} }
func BoolValue(b bool) VariantValue      { return VariantValue{kind: KindBool, b: b} }

func (v VariantValue) Kind() ValueKind { return v.kind }

// Interface returns the value as a plain Go value (string, float64, bool or nil).
func (v VariantValue) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	default:
		return nil
	}
}

func (v VariantValue) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNull:
		return "null"
	default:
		return fmt.Sprint(v.Interface())
	}
}

func (v VariantValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *VariantValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = VariantValue{}
	case string:
		*v = StringValue(x)
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	default:
		return fmt.Errorf("%w: variant config values must be scalars, got %T", ErrInvalidArgument, raw)
	}
	return nil
}
