package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// SettingsAPI is the backend calls used by the settings view
type SettingsAPI interface {
	Settings(ctx context.Context) (*domain.AppSettings, error)
	SaveSettings(ctx context.Context, settings domain.AppSettings) (*domain.SaveSettingsResult, error)
}

// ErrRuleNotFound is returned when editing a rule that does not exist
var ErrRuleNotFound = errors.New("auto-reply rule not found")

// ValidateSettings checks settings before they are saved. At least one
// auto-reply rule is required and every rule needs a message.
func ValidateSettings(s domain.AppSettings) error {
	if len(s.AutoReplyRules) == 0 {
		return &ValidationError{Field: "autoReplyRules", Message: "at least one auto-reply rule is required"}
	}
	for i, rule := range s.AutoReplyRules {
		if strings.TrimSpace(rule.Message) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("autoReplyRules[%d].message", i),
				Message: "message cannot be empty",
			}
		}
	}
	return nil
}

// Settings edits the application settings. Edits apply to a working copy
// that is saved wholesale.
type Settings struct {
	api      SettingsAPI
	notifier *Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	gen      generation
	loading  bool
	saving   bool
	loaded   bool
	settings domain.AppSettings
}

func NewSettings(api SettingsAPI, notifier *Notifier, logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	return &Settings{api: api, notifier: notifier, logger: logger}
}

// Load fetches the settings, discarding unsaved edits
func (v *Settings) Load(ctx context.Context) (err error) {
	defer func() {
		observeFetch("settings", err)
		reportFetchError(v.logger, v.notifier, "settings", "settings", err)
	}()

	v.mu.Lock()
	id := v.gen.next()
	v.loading = true
	v.mu.Unlock()

	settings, err := v.api.Settings(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gen.current(id) {
		return ErrSuperseded
	}
	v.loading = false
	if err != nil {
		return err
	}
	v.settings = settings.Clone()
	v.loaded = true
	return nil
}

func (v *Settings) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *Settings) Saving() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.saving
}

// Current returns a copy of the working settings
func (v *Settings) Current() (domain.AppSettings, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.settings.Clone(), v.loaded
}

func (v *Settings) SetSentimentAnalysis(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.settings.SentimentAnalysisEnabled = enabled
}

func (v *Settings) SetDarkMode(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.settings.DarkModeEnabled = enabled
}

// AddRule appends a rule with a fresh ID
func (v *Settings) AddRule(trigger domain.Sentiment, message string) domain.AutoReplyRule {
	rule := domain.AutoReplyRule{ID: uuid.NewString(), Trigger: trigger, Message: message}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.settings.AutoReplyRules = append(v.settings.AutoReplyRules, rule)
	return rule
}

func (v *Settings) UpdateRule(id string, trigger domain.Sentiment, message string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.settings.AutoReplyRules {
		if v.settings.AutoReplyRules[i].ID == id {
			v.settings.AutoReplyRules[i].Trigger = trigger
			v.settings.AutoReplyRules[i].Message = message
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

func (v *Settings) RemoveRule(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	rules := v.settings.AutoReplyRules
	for i := range rules {
		if rules[i].ID == id {
			v.settings.AutoReplyRules = append(rules[:i:i], rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
}

// Save validates and sends the working settings. Invalid settings are
// rejected without a request.
func (v *Settings) Save(ctx context.Context) error {
	v.mu.Lock()
	settings := v.settings.Clone()
	v.mu.Unlock()

	if err := ValidateSettings(settings); err != nil {
		v.notifier.Show(ToastError, err.Error())
		return err
	}

	v.mu.Lock()
	v.saving = true
	v.mu.Unlock()

	result, err := v.api.SaveSettings(ctx, settings)
	if err == nil && !result.Success {
		err = errors.New(result.Message)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.saving = false
	if err != nil {
		v.notifier.Show(ToastError, "Failed to save settings: "+err.Error())
		return err
	}
	v.settings = result.Data.Clone()
	v.notifier.Show(ToastSuccess, "Settings saved successfully")
	return nil
}
