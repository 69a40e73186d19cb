package controller

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Goofygiraffe06/otprelay/internal/i18n"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
)

// LanguageStore remembers the chosen language between runs.
type LanguageStore interface {
	Load() (string, error)
	Save(lang string) error
}

// Locale tracks the language the user picked.
type Locale struct {
	bundle *i18n.Bundle
	store  LanguageStore

	mu      sync.RWMutex
	current string
}

type LocaleOption func(*Locale)

// WithLanguageStore persists every selection to store and starts from the
// stored language when there is one.
func WithLanguageStore(store LanguageStore) LocaleOption {
	return func(l *Locale) { l.store = store }
}

// NewLocale starts in the stored language, or else in the bundle language
// that best matches preferred (an Accept-Language value or a bare tag).
func NewLocale(bundle *i18n.Bundle, preferred string, opts ...LocaleOption) *Locale {
	l := &Locale{bundle: bundle}
	for _, opt := range opts {
		opt(l)
	}
	l.current = bundle.Match(preferred)
	if l.store != nil {
		stored, err := l.store.Load()
		if err != nil {
			logging.WarnLog("Stored language unreadable: %v", err)
		} else if bundle.IsSupported(stored) {
			l.current = stored
		}
	}
	return l
}

// Select switches to lang, which must be a loaded language.
func (l *Locale) Select(lang string) error {
	if !l.bundle.IsSupported(lang) {
		return &ValidationError{Message: fmt.Sprintf("Unsupported language %q.", lang)}
	}
	l.mu.Lock()
	l.current = lang
	l.mu.Unlock()
	l.save(lang)
	return nil
}

// Toggle flips between English and Arabic and returns the new language.
func (l *Locale) Toggle() string {
	l.mu.Lock()
	if l.current == "ar" {
		l.current = "en"
	} else {
		l.current = "ar"
	}
	lang := l.current
	l.mu.Unlock()
	l.save(lang)
	return lang
}

// save records lang. A failed write keeps the switch for this session.
func (l *Locale) save(lang string) {
	if l.store == nil {
		return
	}
	if err := l.store.Save(lang); err != nil {
		logging.WarnLog("Language %s not saved: %v", lang, err)
	}
}

func (l *Locale) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Direction is the text direction of the current language.
func (l *Locale) Direction() string {
	return i18n.Direction(l.Current())
}

// T translates key in the current language.
func (l *Locale) T(key string) string {
	return l.bundle.T(l.Current(), key)
}

// Message renders err for the user, translated when it carries a key.
func (l *Locale) Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		if _, ok := messages[ve.Key]; ok {
			return l.T(ve.Key)
		}
	}
	return err.Error()
}

// Info renders the informational text of out, if any.
func (l *Locale) Info(out Outcome) string {
	if out.InfoKey != "" {
		return l.T(out.InfoKey)
	}
	return out.Info
}
