package notice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NewLocalizer returns a message printer for the given BCP 47 language tag.
// Unknown or empty tags fall back to English.
func NewLocalizer(lang string) Localizer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}
