package report

import (
	"embed"
	"fmt"
)

//go:embed styles/print.css
var embeddedStyles embed.FS

// BasePrintStyles returns the embedded base print stylesheet injected into
// every export document unless print styles are disabled.
func BasePrintStyles() string {
	data, err := embeddedStyles.ReadFile("styles/print.css")
	if err != nil {
		// This should never happen because the stylesheet is embedded at build time.
		panic(fmt.Errorf("report: failed to read embedded print stylesheet: %w", err))
	}
	return string(data)
}
