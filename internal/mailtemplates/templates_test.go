package mailtemplates

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

func TestRender_ActionLinkRoundTrip(t *testing.T) {
	link := "https://cliplens.app/auth/confirm?type=signup&token=abc123"
	escaped := "https://cliplens.app/auth/confirm?type=signup&amp;token=abc123"

	cases := []struct {
		name   string
		kind   Kind
		locale string
	}{
		{name: "Signup EN", kind: KindSignup, locale: "en"},
		{name: "Signup RU", kind: KindSignup, locale: "ru"},
		{name: "Recovery EN", kind: KindRecovery, locale: "en"},
		{name: "Recovery RU", kind: KindRecovery, locale: "ru"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subject, html, err := Render(tc.kind, tc.locale, ActionLinkData{ActionLink: link})
			require.NoError(t, err)
			assert.NotEmpty(t, subject)

			matches := hrefRe.FindStringSubmatch(html)
			require.Len(t, matches, 2)
			assert.Equal(t, escaped, matches[1])
		})
	}
}

func TestRender_ContactEscapesUserInput(t *testing.T) {
	_, html, err := Render(KindContact, "en", ContactData{
		Name:    "Mallory",
		Email:   "mallory@example.com",
		Message: "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestRender_UnknownKind(t *testing.T) {
	_, _, err := Render(Kind("newsletter"), "en", nil)
	require.Error(t, err)
}

func TestNormalizeLocale(t *testing.T) {
	assert.Equal(t, LocaleRU, NormalizeLocale("ru"))
	assert.Equal(t, LocaleRU, NormalizeLocale("ru-RU"))
	assert.Equal(t, LocaleEN, NormalizeLocale("en"))
	assert.Equal(t, LocaleEN, NormalizeLocale("de"))
	assert.Equal(t, LocaleEN, NormalizeLocale(""))
}
