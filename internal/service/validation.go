package service

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLoginLength is the longest login GitHub accepts.
const MaxLoginLength = 39

// validLoginPattern allows alphanumerics separated by single hyphens.
var validLoginPattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9]|-[a-zA-Z0-9])*$`)

// ValidateLogin trims login and checks it is a plausible platform login.
func ValidateLogin(login string) (string, error) {
	login = strings.TrimSpace(login)
	switch {
	case login == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidLogin)
	case len(login) > MaxLoginLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidLogin, MaxLoginLength)
	case !validLoginPattern.MatchString(login):
		return "", fmt.Errorf("%w: %q", ErrInvalidLogin, login)
	}
	return login, nil
}
