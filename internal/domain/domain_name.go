package domain

import (
	"fmt"
	"strings"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// ValidateDomainName checks a custom domain before it enters the registration
// workflow and returns its canonical form (lowercase, no trailing dot).
func ValidateDomainName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ".")

	if name == "" {
		return "", fmt.Errorf("%w: domain name is required", ErrInvalidArgument)
	}
	if len(name) > maxDomainLength {
		return "", fmt.Errorf("%w: domain name longer than %d characters", ErrInvalidArgument, maxDomainLength)
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return "", fmt.Errorf("%w: domain %q needs a top-level domain", ErrInvalidArgument, name)
	}

	for _, label := range labels {
		if err := validateLabel(label); err != nil {
			return "", fmt.Errorf("%w: domain %q: %s", ErrInvalidArgument, name, err.Error())
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return "", fmt.Errorf("%w: top-level domain %q is too short", ErrInvalidArgument, tld)
	}
	if !strings.HasPrefix(tld, "xn--") && !isAlpha(tld) {
		return "", fmt.Errorf("%w: top-level domain %q must be alphabetic", ErrInvalidArgument, tld)
	}
	return name, nil
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("empty label")
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("label %q longer than %d characters", label, maxLabelLength)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("label %q cannot start or end with a hyphen", label)
	}
	for _, c := range label {
		if !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') && c != '-' {
			return fmt.Errorf("label %q contains invalid character %q", label, c)
		}
	}
	return nil
}

func isAlpha(s string) bool {
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
