package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// ParseSettings converts a raw stored document into Settings.
//
// Each field is taken from data when present and well-typed, otherwise from
// the defaults. A bad field never invalidates the rest of the document.
func ParseSettings(data map[string]any) Settings {
	d := DefaultSettings()
	if data == nil {
		return d
	}

	return Settings{
		Enabled:              boolOr(data[SetEnabled], d.Enabled),
		RPCURL:               stringOr(data[SetRPCURL], d.RPCURL),
		MinDownloadSize:      sizeOr(data[SetMinDownloadSize], d.MinDownloadSize),
		FilterMode:           filterModeOr(data[SetFilterMode], d.FilterMode),
		BlockList:            stringsOr(data[SetBlockList], d.BlockList),
		AllowList:            stringsOr(data[SetAllowList], d.AllowList),
		DisallowedExtensions: stringsOr(data[SetDisallowedExtensions], d.DisallowedExtensions),
		PersistentHeaders:    headersOr(data[SetPersistentHeaders], d.PersistentHeaders),
		DownloadDirectory:    stringOr(data[SetDownloadDirectory], d.DownloadDirectory),
		OrganizeByDomain:     boolOr(data[SetOrganizeByDomain], d.OrganizeByDomain),
		OrganizeByDate:       boolOr(data[SetOrganizeByDate], d.OrganizeByDate),
		CustomFilterScript:   stringOr(data[SetCustomFilterScript], d.CustomFilterScript),
		MatchSubdomains:      boolOr(data[SetMatchSubdomains], d.MatchSubdomains),
	}
}

// ParseSettingsJSON decodes a stored JSON document and applies per-field defaulting.
//
// A document that is not a JSON object yields the defaults and an error.
func ParseSettingsJSON(b []byte) (Settings, error) {
	if len(b) == 0 {
		return DefaultSettings(), nil
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return DefaultSettings(), fmt.Errorf("settings document is not a JSON object: %w", err)
	}
	return ParseSettings(raw), nil
}

// Serialize encodes s as a JSON document. Nil lists are written as empty arrays.
func Serialize(s Settings) ([]byte, error) {
	c := s.Clone()
	if c.BlockList == nil {
		c.BlockList = []string{}
	}
	if c.AllowList == nil {
		c.AllowList = []string{}
	}
	if c.DisallowedExtensions == nil {
		c.DisallowedExtensions = []string{}
	}
	if c.PersistentHeaders == nil {
		c.PersistentHeaders = []HeaderItem{}
	}
	return json.Marshal(c)
}

// Document returns s as a generic document keyed by setting name.
func (s Settings) Document() (map[string]any, error) {
	b, err := Serialize(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ******************************** Private ***************************************************************************************

func boolOr(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func sizeOr(v any, def float64) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return def
	}
	return f
}

func filterModeOr(v any, def FilterMode) FilterMode {
	var m FilterMode
	switch s := v.(type) {
	case string:
		m = FilterMode(s)
	case FilterMode:
		m = s
	default:
		return def
	}
	if !m.Valid() {
		return def
	}
	return m
}

func stringsOr(v any, def []string) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return cloneStrings(def)
			}
			out = append(out, s)
		}
		return out
	}
	return cloneStrings(def)
}

func headersOr(v any, def []HeaderItem) []HeaderItem {
	switch list := v.(type) {
	case []HeaderItem:
		out := make([]HeaderItem, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]HeaderItem, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return cloneHeaders(def)
			}
			key, kOK := m["key"].(string)
			val, vOK := m["value"].(string)
			if !kOK || !vOK {
				return cloneHeaders(def)
			}
			out = append(out, HeaderItem{Key: key, Value: val})
		}
		return out
	}
	return cloneHeaders(def)
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneHeaders(h []HeaderItem) []HeaderItem {
	out := make([]HeaderItem, len(h))
	copy(out, h)
	return out
}
