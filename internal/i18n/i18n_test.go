package i18n

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageIDs(t *testing.T, name string) map[string]bool {
	t.Helper()
	data, err := localeFS.ReadFile(name)
	require.NoError(t, err)

	var raw map[string]map[string]string
	require.NoError(t, toml.Unmarshal(data, &raw))

	ids := make(map[string]bool, len(raw))
	for id := range raw {
		ids[id] = true
	}
	return ids
}

func TestCataloguesHaveTheSameMessages(t *testing.T) {
	en := messageIDs(t, "active.en.toml")
	ko := messageIDs(t, "active.ko.toml")

	for id := range en {
		assert.True(t, ko[id], "missing Korean message %q", id)
	}
	for id := range ko {
		assert.True(t, en[id], "missing English message %q", id)
	}
}

func TestNewLocalizer(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en", "en"},
		{"ko", "ko"},
		{"ko-KR", "ko"},
		{"ko_KR", "ko"},
		{"fr", "en"},
		{"", "en"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewLocalizer(tt.locale).Locale(), tt.locale)
	}
}

func TestTranslate(t *testing.T) {
	ko := NewLocalizer("ko")
	assert.Equal(t, "정상 종료합니다.", ko.T("exit.quit"))
	assert.Equal(t, "숫자가 아닙니다. 기본값 50을 적용합니다.", ko.TF("prompt.int_fallback", map[string]interface{}{"Default": 50}))

	en := NewLocalizer("en")
	assert.Equal(t, "Exiting normally.", en.T("exit.quit"))
	assert.Equal(t, "no.such.message", en.T("no.such.message"))
	assert.Equal(t, `no.such.message {"X":1}`, en.TF("no.such.message", map[string]interface{}{"X": 1}))
}
