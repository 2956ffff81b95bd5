// Package loginlang holds the language catalogue shared by the hosted login
// UI hint and the dashboard surfaces, plus locale-aware formatting for the
// balance figures.
package loginlang

import (
	"os"
	"strings"

	"github.com/cognimosyne/mediatranslator/storage"
)

// Code identifies a supported UI language.
type Code string

// Supported language codes. These mirror the hosted login page catalogue.
const (
	De   Code = "de"
	En   Code = "en"
	Es   Code = "es"
	Fr   Code = "fr"
	ID   Code = "id"
	It   Code = "it"
	Ja   Code = "ja"
	Ko   Code = "ko"
	PtBR Code = "pt_BR"
	ZhCN Code = "zh_CN"
	ZhTW Code = "zh_TW"
)

// DefaultLanguage is used when no preference is stored or detectable.
const DefaultLanguage = En

// StorageKey is the durable-store key holding the last chosen language.
const StorageKey = "cognito-login-language"

// Strings are the shared UI strings of a language.
type Strings struct {
	Login                 string
	Signup                string
	Logout                string
	LanguageSelectorLabel string
}

// CreditUsageCopy is the dashboard credit-usage page copy. Not every
// language carries it; resolution falls back across the catalogue.
type CreditUsageCopy struct {
	Title                 string
	Subtitle              string
	AvailableCreditsLabel string
	AvailableMileageLabel string
	CreditsUnitLabel      string
	MileageUnitLabel      string
	LastUpdatedLabel      string
	RefreshCTA            string
	EmptyStateTitle       string
}

// Definition is one language catalogue entry.
type Definition struct {
	Code        Code
	Label       string
	Strings     Strings
	CreditUsage *CreditUsageCopy
}

// Languages lists the catalogue in stable order.
var Languages = []Definition{de, en, es, fr, id, it, ja, ko, ptBR, zhCN, zhTW}

var languageMap = func() map[Code]Definition {
	m := make(map[Code]Definition, len(Languages))
	for _, l := range Languages {
		m[l.Code] = l
	}
	return m
}()

// Lookup returns the definition for code.
func Lookup(code Code) (Definition, bool) {
	def, ok := languageMap[code]
	return def, ok
}

// Normalize maps a free-form locale value ("pt-br", "ko_KR", "de") to a
// supported code, matching first on the full code and then on the base
// language. It returns false when nothing in the catalogue matches.
func Normalize(value string) (Code, bool) {
	if value == "" {
		return "", false
	}
	lower := strings.ToLower(value)
	for _, l := range Languages {
		if strings.ToLower(string(l.Code)) == lower || strings.ReplaceAll(strings.ToLower(string(l.Code)), "_", "-") == lower {
			return l.Code, true
		}
	}
	base := strings.FieldsFunc(lower, func(r rune) bool { return r == '-' || r == '_' })
	if len(base) == 0 {
		return "", false
	}
	for _, l := range Languages {
		langBase := strings.SplitN(strings.ToLower(string(l.Code)), "_", 2)[0]
		if langBase == base[0] {
			return l.Code, true
		}
	}
	return "", false
}

// ResolveInitial determines the starting language: the stored preference if
// valid, then the process locale environment, then the default.
func ResolveInitial(durable storage.Store) Code {
	if stored, ok := durable.TryGet(StorageKey); ok {
		if code, ok := Normalize(stored); ok {
			return code
		}
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		// "ko_KR.UTF-8" -> "ko_KR"
		if i := strings.IndexByte(v, '.'); i >= 0 {
			v = v[:i]
		}
		if code, ok := Normalize(v); ok {
			return code
		}
	}
	return DefaultLanguage
}

// Remember persists the chosen language in the durable store.
func Remember(durable storage.Store, code Code) {
	durable.TrySet(StorageKey, string(code))
}

// ResolveCreditUsage walks the candidate chain (preferred, default, Korean,
// then the rest of the catalogue) and returns the first language that
// carries credit-usage copy.
func ResolveCreditUsage(preferred Code) (Code, CreditUsageCopy) {
	candidates := make([]Code, 0, len(Languages)+3)
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	candidates = append(candidates, DefaultLanguage, Ko)
	for _, l := range Languages {
		candidates = append(candidates, l.Code)
	}

	seen := make(map[Code]bool, len(candidates))
	for _, code := range candidates {
		if seen[code] {
			continue
		}
		seen[code] = true
		if def, ok := languageMap[code]; ok && def.CreditUsage != nil {
			return code, *def.CreditUsage
		}
	}
	return DefaultLanguage, CreditUsageCopy{Title: "Credit Usage"}
}
