// Package i18n holds the operator-facing message catalogue. English is the
// default; Korean follows the wording the console has always used.
package i18n

import (
	"embed"
	"encoding/json"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed *.toml
var localeFS embed.FS

// catalogues lists the embedded message files, default language first
var catalogues = []string{"active.en.toml", "active.ko.toml"}

var bundle *i18n.Bundle

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, name := range catalogues {
		data, err := localeFS.ReadFile(name)
		if err != nil {
			panic("missing message catalogue " + name + ": " + err.Error())
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			panic("failed to load " + name + ": " + err.Error())
		}
	}
}

// Localizer wraps go-i18n localizer with convenience methods
type Localizer struct {
	localizer *i18n.Localizer
	locale    string
}

// NewLocalizer creates a localizer. "ko" and its regional forms select
// Korean; anything else falls back to English.
func NewLocalizer(locale string) *Localizer {
	lang := language.English
	if strings.HasPrefix(strings.ToLower(locale), "ko") {
		lang = language.Korean
	}

	return &Localizer{
		localizer: i18n.NewLocalizer(bundle, lang.String()),
		locale:    lang.String(),
	}
}

// Locale returns the resolved language tag
func (l *Localizer) Locale() string {
	return l.locale
}

// T translates a message ID. Unknown IDs are returned unchanged.
func (l *Localizer) T(messageID string) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID: messageID,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// TF translates a message with template data
func (l *Localizer) TF(messageID string, templateData map[string]interface{}) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		dataJSON, _ := json.Marshal(templateData)
		return messageID + " " + string(dataJSON)
	}
	return msg
}
