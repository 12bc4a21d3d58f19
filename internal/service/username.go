package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/port"
	"socialid/internal/validator/socialaccount"
)

const maxUsernameLength = 30

var usernameJunk = regexp.MustCompile(`[^a-z0-9._-]+`)

// GenerateUsername derives a free username from the first usable candidate
// (suggested username, email, full name), appending a number when taken.
func GenerateUsername(ctx context.Context, users port.UserRepository, policy config.SignupConfig, candidates ...string) (string, error) {
	base := ""
	for _, c := range candidates {
		if i := strings.IndexByte(c, '@'); i > 0 {
			c = c[:i]
		}
		if b := sanitizeUsername(c); b != "" && socialaccount.CheckUsername(b, policy) == nil {
			base = b
			break
		}
	}
	if base == "" {
		base = "user"
	}

	for i := 0; i < 1000; i++ {
		name := base
		if i > 0 {
			suffix := strconv.Itoa(i)
			name = truncate(base, maxUsernameLength-len(suffix)) + suffix
		}
		if socialaccount.CheckUsername(name, policy) != nil {
			continue
		}
		_, err := users.GetByUsername(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("GenerateUsername: %w", err)
		}
	}
	return "", fmt.Errorf("GenerateUsername: no free username for %q", base)
}

// sanitizeUsername folds accents, lowercases and drops disallowed characters.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) {
			r = '.'
		}
		b.WriteRune(unicode.ToLower(r))
	}
	out := usernameJunk.ReplaceAllString(b.String(), "")
	out = strings.Trim(out, "._-")
	return truncate(out, maxUsernameLength)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
