// Package i18n loads the static translation files served to the web app
// ({lang}/{namespace}.json) and resolves the language to use.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

const (
	// DefaultLanguage is used when nothing better matches.
	DefaultLanguage = "en"
	// DefaultNamespace is the namespace looked up by T.
	DefaultNamespace = "translation"
)

//go:embed locales/*/*.json
var embeddedLocales embed.FS

type namespace struct {
	raw      []byte
	messages map[string]string
}

// Bundle holds every loaded language and namespace.
type Bundle struct {
	langs    map[string]map[string]*namespace
	order    []string
	matcher  language.Matcher
	fallback string
}

// LoadEmbedded loads the locale files compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads locales/{lang}/{namespace}.json from fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{langs: map[string]map[string]*namespace{}, fallback: DefaultLanguage}
	for _, p := range paths {
		lang := path.Base(path.Dir(p))
		ns := strings.TrimSuffix(path.Base(p), ".json")
		if _, err := language.Parse(lang); err != nil {
			return nil, fmt.Errorf("locale %s: %w", p, err)
		}

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", p, err)
		}
		var msgs map[string]string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", p, err)
		}

		if b.langs[lang] == nil {
			b.langs[lang] = map[string]*namespace{}
			b.order = append(b.order, lang)
		}
		b.langs[lang][ns] = &namespace{raw: raw, messages: msgs}
	}

	if _, ok := b.langs[b.fallback]; !ok {
		b.fallback = b.order[0]
	}
	// The matcher's first tag is its default, so the fallback goes first.
	tags := []language.Tag{language.MustParse(b.fallback)}
	for _, l := range b.order {
		if l != b.fallback {
			tags = append(tags, language.MustParse(l))
		}
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Languages returns the loaded language codes, fallback first.
func (b *Bundle) Languages() []string {
	out := []string{b.fallback}
	for _, l := range b.order {
		if l != b.fallback {
			out = append(out, l)
		}
	}
	return out
}

// Fallback returns the language used when a lookup misses.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has at least one namespace loaded.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.langs[lang]
	return ok
}

// Raw returns the file contents for lang/ns as loaded.
func (b *Bundle) Raw(lang, ns string) ([]byte, bool) {
	n, ok := b.langs[lang][ns]
	if !ok {
		return nil, false
	}
	return n.raw, true
}

// T translates key in the default namespace. "ns:key" selects another
// namespace. Misses fall back to the fallback language, then to key itself.
func (b *Bundle) T(lang, key string) string {
	ns, k := DefaultNamespace, key
	if i := strings.IndexByte(key, ':'); i > 0 {
		ns, k = key[:i], key[i+1:]
	}
	for _, l := range []string{lang, b.fallback} {
		if n, ok := b.langs[l][ns]; ok {
			if msg, ok := n.messages[k]; ok && msg != "" {
				return msg
			}
		}
	}
	return k
}

// Match picks the best loaded language for an Accept-Language header or a
// bare tag such as "ar-EG".
func (b *Bundle) Match(preferred string) string {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return b.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(preferred)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.fallback
	}
	return b.Languages()[idx]
}

// Direction returns "rtl" for right-to-left scripts and "ltr" otherwise.
func Direction(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return "ltr"
	}
	script, _ := tag.Script()
	switch script.String() {
	case "Arab", "Hebr", "Thaa", "Syrc", "Nkoo":
		return "rtl"
	}
	return "ltr"
}
