package notice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notice.addon_append_failed.body", "We couldn't add your add-on to the cart.")
	message.SetString(lang, "notice.addon_append_failed.body_detail", "We couldn't add your add-on to the cart: %s")
}
