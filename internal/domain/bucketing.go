package domain

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// HashToPercentage maps a key to a stable value in [0, 100) with two decimals.
// The key is hashed twice so that sequential keys ("user-1", "user-2", ...)
// spread evenly over the range.
func HashToPercentage(key string) float64 {
	n := hashFnv32a(strconv.FormatUint(uint64(hashFnv32a(key)), 10))
	return float64(n%10000) / 100
}

func hashFnv32a(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// BucketRange is the [Min, Max) slice of the percentage space owned by a variant.
type BucketRange struct {
	VariantID string
	Min       float64
	Max       float64
}

func (r BucketRange) InRange(p float64) bool {
	return p >= r.Min && p < r.Max
}

// BucketRanges converts variant traffic shares into contiguous ranges, in list order.
func BucketRanges(variants []ExperimentVariant) []BucketRange {
	ranges := make([]BucketRange, len(variants))
	cumulative := 0.0
	for i, v := range variants {
		ranges[i] = BucketRange{VariantID: v.ID, Min: cumulative, Max: cumulative + v.TrafficPercentage}
		cumulative += v.TrafficPercentage
	}
	return ranges
}

// AssignVariant picks the variant of exp for bucketingKey. The same key always
// gets the same variant. Keys hashing past the last range fall back to the last
// variant, so traffic totals under 100 leave no bucket unassigned.
func AssignVariant(exp *Experiment, bucketingKey string) (*ExperimentVariant, error) {
	if exp == nil {
		return nil, fmt.Errorf("%w: experiment is nil", ErrInvalidArgument)
	}
	if bucketingKey == "" {
		return nil, fmt.Errorf("%w: bucketing key is empty", ErrInvalidArgument)
	}
	if len(exp.Variants) == 0 {
		return nil, fmt.Errorf("%w: experiment %q has no variants to assign", ErrInvalidOperation, exp.ID)
	}

	p := HashToPercentage(bucketingKey)
	threshold := 0.0
	for i := range exp.Variants {
		threshold += exp.Variants[i].TrafficPercentage
		if p < threshold {
			return &exp.Variants[i], nil
		}
	}
	return &exp.Variants[len(exp.Variants)-1], nil
}
