package logging

import "strings"

const (
	// MaskChar is the character used for masking.
	MaskChar = "*"
	// URLMaskLength is how many characters of a URL stay visible.
	URLMaskLength = 30
)

// MaskURL keeps the scheme and host of a webhook URL and hides the token path.
func MaskURL(url string) string {
	if len(url) <= URLMaskLength {
		return url
	}
	return url[:URLMaskLength] + strings.Repeat(MaskChar, 3)
}

// MaskToken hides a bot token except for its numeric bot id prefix.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if i := strings.IndexByte(token, ':'); i > 0 {
		return token[:i] + ":" + strings.Repeat(MaskChar, 8)
	}
	return strings.Repeat(MaskChar, 8)
}
