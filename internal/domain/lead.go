package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Lead is a visitor who left their email on a landing page.
type Lead struct {
	ID        string
	Email     string
	Name      string
	Source    string
	Page      string
	CreatedAt time.Time
}

// NormalizeEmail trims and lowercases an address and checks that it is a bare
// addr-spec with a dotted domain part.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", fmt.Errorf("%w: invalid email %q", ErrInvalidArgument, email)
	}

	at := strings.LastIndex(email, "@")
	host := email[at+1:]
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return "", fmt.Errorf("%w: invalid email domain %q", ErrInvalidArgument, host)
	}
	return email, nil
}
