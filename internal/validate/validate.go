// Package validate provides input validation helpers for the nudge CLI.
package validate

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/manav03panchal/nudge/internal/errors"
	"github.com/manav03panchal/nudge/internal/model"
)

// MaxURLLength is the maximum length for a URL.
const MaxURLLength = 2048

// Category parses a reminder category name or alias.
func Category(value string) (model.Category, error) {
	c, ok := model.ParseCategory(value)
	if !ok {
		return "", errors.InvalidInput(errors.ErrInvalidCategory, "category", value,
			"Use one of: water, stand, eyes")
	}
	return c, nil
}

// Action parses an action id.
func Action(value string) (model.ActionID, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range model.Actions() {
		if string(a) == v {
			return a, nil
		}
	}
	ids := make([]string, 0, len(model.Actions()))
	for _, a := range model.Actions() {
		ids = append(ids, string(a))
	}
	return "", errors.InvalidInput(errors.ErrInvalidAction, "action", value,
		"Use one of: "+strings.Join(ids, ", "))
}

// Bool parses on/off style values.
func Bool(field, value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on", "enable", "enabled":
		return true, nil
	case "0", "false", "no", "off", "disable", "disabled":
		return false, nil
	}
	return false, errors.InvalidInput(errors.ErrInvalidValue, field, value, "Use on or off")
}

// IntRange parses an integer and checks it lies in [lo, hi].
func IntRange(field, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < lo || n > hi {
		return 0, errors.InvalidInput(errors.ErrInvalidValue, field, value,
			"Use a whole number from "+strconv.Itoa(lo)+" to "+strconv.Itoa(hi))
	}
	return n, nil
}

// WebhookName validates a webhook name.
func WebhookName(name string) error {
	if !model.IsValidWebhookName(name) {
		return errors.InvalidInput(errors.ErrInvalidValue, "name", name,
			"Names start with a letter or number and contain only letters, numbers, dashes or underscores (max 50)")
	}
	return nil
}

// URL validates a URL for use as a webhook endpoint.
func URL(rawURL string) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.InvalidInput(errors.ErrInvalidURL, "url", rawURL,
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.InvalidInput(errors.ErrInvalidURL, "url", rawURL,
			"URLs must use https:// (or http:// for localhost)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.InvalidInput(errors.ErrInvalidURL, "url", rawURL,
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
	if parsed.Scheme == "http" && !isLocalhost {
		return errors.InvalidInput(errors.ErrInvalidURL, "url", rawURL,
			"Use https://. HTTP is only allowed for localhost.")
	}

	if !isLocalhost {
		if ip := net.ParseIP(hostname); ip != nil && isInternalIP(ip) {
			return errors.InvalidInput(errors.ErrInvalidURL, "url", rawURL,
				"Webhook URLs must point to external services")
		}
	}
	return nil
}

var privateRanges = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"fc00::/7",
		"fe80::/10",
		"::1/128",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

func isInternalIP(ip net.IP) bool {
	for _, n := range privateRanges {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
