package validation

import (
	"fmt"
	"strings"
)

// maxRefLength bounds catalog identifiers; real ones are around a dozen
// characters, so anything huge is garbage data.
const maxRefLength = 64

// ValidateRef checks a catalog reference received from the content service.
// The reference stays opaque — it is never parsed into components — but an
// empty or unprintable key would poison a lookup, so those are rejected.
func ValidateRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("catalog reference cannot be empty")
	}
	if len(ref) > maxRefLength {
		return fmt.Errorf("catalog reference too long (max %d characters)", maxRefLength)
	}
	if strings.ContainsAny(ref, " \t\n\r") {
		return fmt.Errorf("catalog reference contains whitespace")
	}
	for _, r := range ref {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("catalog reference contains control characters")
		}
	}
	return nil
}
