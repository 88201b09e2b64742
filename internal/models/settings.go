package models

import "slices"

// FilterMode selects which domain list is authoritative.
type FilterMode string

// Filter modes.
const (
	FilterModeBlocklist FilterMode = "blocklist"
	FilterModeAllowlist FilterMode = "allowlist"
)

// Valid reports whether m is a known filter mode.
func (m FilterMode) Valid() bool {
	return m == FilterModeBlocklist || m == FilterModeAllowlist
}

// HeaderItem is a persistent header attached to every redirected download.
type HeaderItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Settings is the single settings document read at the start of each event.
type Settings struct {
	Enabled              bool         `json:"enabled"`
	RPCURL               string       `json:"rpcUrl"`
	MinDownloadSize      float64      `json:"minDownloadSize"`
	FilterMode           FilterMode   `json:"filterMode"`
	BlockList            []string     `json:"blockList"`
	AllowList            []string     `json:"allowList"`
	DisallowedExtensions []string     `json:"disallowedExtensions"`
	PersistentHeaders    []HeaderItem `json:"persistentHeaders"`
	DownloadDirectory    string       `json:"downloadDirectory"`
	OrganizeByDomain     bool         `json:"organizeByDomain"`
	OrganizeByDate       bool         `json:"organizeByDate"`
	CustomFilterScript   string       `json:"customFilterScript"`
	MatchSubdomains      bool         `json:"matchSubdomains"`
}

// Settings document keys.
const (
	SetEnabled              = "enabled"
	SetRPCURL               = "rpcUrl"
	SetMinDownloadSize      = "minDownloadSize"
	SetFilterMode           = "filterMode"
	SetBlockList            = "blockList"
	SetAllowList            = "allowList"
	SetDisallowedExtensions = "disallowedExtensions"
	SetPersistentHeaders    = "persistentHeaders"
	SetDownloadDirectory    = "downloadDirectory"
	SetOrganizeByDomain     = "organizeByDomain"
	SetOrganizeByDate       = "organizeByDate"
	SetCustomFilterScript   = "customFilterScript"
	SetMatchSubdomains      = "matchSubdomains"
)

// SettingsKeys lists every document key in display order.
var SettingsKeys = []string{
	SetEnabled,
	SetRPCURL,
	SetMinDownloadSize,
	SetFilterMode,
	SetBlockList,
	SetAllowList,
	SetDisallowedExtensions,
	SetPersistentHeaders,
	SetDownloadDirectory,
	SetOrganizeByDomain,
	SetOrganizeByDate,
	SetCustomFilterScript,
	SetMatchSubdomains,
}

// DefaultSettings returns a fresh copy of the default settings.
func DefaultSettings() Settings {
	return Settings{
		Enabled:              true,
		RPCURL:               "http://localhost:6801/jsonrpc",
		MinDownloadSize:      0,
		FilterMode:           FilterModeBlocklist,
		BlockList:            []string{"example.com"},
		AllowList:            []string{"github.com"},
		DisallowedExtensions: []string{".exe", ".dmg"},
		PersistentHeaders: []HeaderItem{
			{Key: "User-Agent", Value: "Varia-Redirect-Extension/1.0"},
		},
		DownloadDirectory:  "",
		OrganizeByDomain:   false,
		OrganizeByDate:     false,
		CustomFilterScript: "",
		MatchSubdomains:    false,
	}
}

// Clone returns a deep copy, so snapshots never share list backing arrays.
func (s Settings) Clone() Settings {
	c := s
	c.BlockList = slices.Clone(s.BlockList)
	c.AllowList = slices.Clone(s.AllowList)
	c.DisallowedExtensions = slices.Clone(s.DisallowedExtensions)
	c.PersistentHeaders = slices.Clone(s.PersistentHeaders)
	return c
}
