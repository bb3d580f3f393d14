package email

import (
	"strings"
	"unicode"
)

// DisplayName derives a salutation from the local part of an address:
// "jane.doe@x.com" becomes "Jane". Falls back to "there" when nothing usable
// remains, so templates read naturally either way.
func DisplayName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 || parts[0] == "" {
		return "there"
	}

	runes := []rune(parts[0])
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
