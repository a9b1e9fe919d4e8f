package notice

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.BrazilianPortuguese

	message.SetString(lang, "notice.addon_append_failed.body", "Não foi possível adicionar o complemento ao carrinho.")
	message.SetString(lang, "notice.addon_append_failed.body_detail", "Não foi possível adicionar o complemento ao carrinho: %s")
}
