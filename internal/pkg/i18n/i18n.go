// Package i18n localizes client-facing error messages.
package i18n

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

type Translator struct {
	bundle *i18n.Bundle
}

func New() *Translator {
	bundle := i18n.NewBundle(language.English)
	_ = bundle.AddMessages(language.English, english...)
	_ = bundle.AddMessages(language.Indonesian, indonesian...)
	return &Translator{bundle: bundle}
}

// Localize renders messageID for the first supported language in langs
// (Accept-Language values or tags). It returns "" for unknown ids.
func (t *Translator) Localize(messageID string, data map[string]interface{}, langs ...string) string {
	loc := i18n.NewLocalizer(t.bundle, langs...)
	msg, err := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return ""
	}
	return msg
}
