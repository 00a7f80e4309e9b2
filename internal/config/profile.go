package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile carries the domain knobs that change from show to show:
// which signal kinds count as claim intent, how the category tags are
// labelled in rendered output, the visible tier prefix, and how long a
// destructive command stays armed before it must be re-invoked.
//
// The file is plain YAML:
//
//	accepted_signals: [check]
//	category_labels:
//	  N: Numbered
//	  S: Special
//	tier_prefix: Winner
//	confirm_window_seconds: 60
type Profile struct {
	AcceptedSignals      []string          `yaml:"accepted_signals"`
	CategoryLabels       map[string]string `yaml:"category_labels"`
	TierPrefix           string            `yaml:"tier_prefix"`
	ConfirmWindowSeconds int               `yaml:"confirm_window_seconds"`
}

// DefaultProfile returns the built-in show profile.
func DefaultProfile() Profile {
	return Profile{
		AcceptedSignals: []string{"check"},
		CategoryLabels: map[string]string{
			"N": "Numbered",
			"S": "Special",
		},
		TierPrefix:           "Winner",
		ConfirmWindowSeconds: 60,
	}
}

// LoadProfile overlays the YAML file at path onto the defaults. An
// empty path returns the defaults unchanged. Keys absent from the file
// keep their default values; category_labels entries merge key by key.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read show profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse show profile %s: %w", path, err)
	}
	if len(p.AcceptedSignals) == 0 {
		p.AcceptedSignals = DefaultProfile().AcceptedSignals
	}
	if p.TierPrefix == "" {
		p.TierPrefix = DefaultProfile().TierPrefix
	}
	if p.ConfirmWindowSeconds <= 0 {
		p.ConfirmWindowSeconds = DefaultProfile().ConfirmWindowSeconds
	}
	return p, nil
}

// ConfirmWindow returns the confirmation window as a duration.
func (p Profile) ConfirmWindow() time.Duration {
	return time.Duration(p.ConfirmWindowSeconds) * time.Second
}
