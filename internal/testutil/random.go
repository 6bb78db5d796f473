package testutil

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// RandomTitle returns a unique, title-cased book title for test fixtures,
// e.g. RandomTitle("the left hand") -> "The Left Hand 1a2b3c4d".
func RandomTitle(prefix string) string {
	return fmt.Sprintf("%s %s", titleCaser.String(prefix), uuid.NewString()[:8])
}
