package redirect

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"
	"variaredirect/internal/parsing"
)

// UpdateSettings applies fn to the stored settings and triggers a connectivity
// check when rpcUrl changed.
func (p *Pipeline) UpdateSettings(ctx context.Context, fn func(*models.Settings) error) (models.Settings, error) {
	before, after, err := p.Settings.UpdateSettings(ctx, fn)
	if err != nil {
		return before, err
	}
	if before.RPCURL != after.RPCURL {
		logger.Pl.I("rpcUrl changed from %q to %q", before.RPCURL, after.RPCURL)
		if p.Probe != nil {
			p.Probe.Trigger("rpcUrl changed")
		}
	}
	return after, nil
}

// ReplaceSettings replaces the whole document. Bad fields fall back to defaults.
func (p *Pipeline) ReplaceSettings(ctx context.Context, doc map[string]any) (models.Settings, error) {
	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		*s = models.ParseSettings(doc)
		return nil
	})
}

// ResetSettings restores the defaults.
func (p *Pipeline) ResetSettings(ctx context.Context) (models.Settings, error) {
	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		*s = models.DefaultSettings()
		return nil
	})
}

// SetValue sets one key from a command-line style value.
//
// The value is decoded as JSON when possible, otherwise used as a plain string.
// A value of the wrong type for key is an error.
func (p *Pipeline) SetValue(ctx context.Context, key, raw string) (models.Settings, error) {
	if !slices.Contains(models.SettingsKeys, key) {
		return models.Settings{}, fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(models.SettingsKeys, ", "))
	}

	candidates := []any{raw}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		if _, isString := decoded.(string); !isString {
			candidates = []any{decoded, raw}
		}
	}

	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		doc, err := s.Document()
		if err != nil {
			return err
		}
		for _, v := range candidates {
			doc[key] = v
			parsed := models.ParseSettings(doc)

			// Mistyped values parse back to the default.
			check, err := parsed.Document()
			if err != nil {
				return err
			}
			if sameJSON(check[key], v) {
				*s = parsed
				return nil
			}
		}
		return fmt.Errorf("invalid value %q for setting %q", raw, key)
	})
}

// AddListItem adds a normalized item to blockList, allowList or disallowedExtensions.
func (p *Pipeline) AddListItem(ctx context.Context, list, item string) (models.Settings, error) {
	item, err := normalizeItem(list, item)
	if err != nil {
		return models.Settings{}, err
	}
	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		return s.AddToList(list, item)
	})
}

// RemoveListItem removes a normalized item from a list.
func (p *Pipeline) RemoveListItem(ctx context.Context, list, item string) (models.Settings, error) {
	item, err := normalizeItem(list, item)
	if err != nil {
		return models.Settings{}, err
	}
	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		return s.RemoveFromList(list, item)
	})
}

// AddHeader adds or replaces a persistent header.
func (p *Pipeline) AddHeader(ctx context.Context, h models.HeaderItem) (models.Settings, error) {
	h.Key = strings.TrimSpace(h.Key)
	if h.Key == "" {
		return models.Settings{}, fmt.Errorf("header key is empty")
	}
	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		s.AddHeader(h)
		return nil
	})
}

// RemoveHeader removes persistent headers with key.
func (p *Pipeline) RemoveHeader(ctx context.Context, key string) (models.Settings, error) {
	key = strings.TrimSpace(key)
	return p.UpdateSettings(ctx, func(s *models.Settings) error {
		s.RemoveHeader(key)
		return nil
	})
}

// normalizeItem applies the list's normalization to item.
func normalizeItem(list, item string) (string, error) {
	var out string
	switch list {
	case models.SetBlockList, models.SetAllowList:
		out = parsing.NormalizeDomain(item)
	case models.SetDisallowedExtensions:
		out = parsing.NormalizeExtension(item)
	default:
		return "", fmt.Errorf("%q is not a list setting", list)
	}
	if out == "" {
		return "", fmt.Errorf("empty %s entry", list)
	}
	return out, nil
}

// sameJSON compares two values by their JSON encoding.
func sameJSON(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ab) == string(bb)
}
