package models

// FilterView is the restricted view of a download handed to custom filter scripts.
type FilterView struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	FileSize int64  `json:"fileSize"`
	Mime     string `json:"mime"`
	Referrer string `json:"referrer"`
}

// FilterResult is the validated decision of a custom filter script.
//
// Nil Dir or Filename means no override.
type FilterResult struct {
	Skip     bool    `json:"skip"`
	Dir      *string `json:"dir,omitempty"`
	Filename *string `json:"filename,omitempty"`
}

// DirOverride returns the directory override, or "" when absent.
func (r *FilterResult) DirOverride() string {
	if r == nil || r.Dir == nil {
		return ""
	}
	return *r.Dir
}

// FilenameOverride returns the filename override, or "" when absent.
func (r *FilterResult) FilenameOverride() string {
	if r == nil || r.Filename == nil {
		return ""
	}
	return *r.Filename
}

// SampleFilterView is the test data used when a filter test request carries none.
var SampleFilterView = FilterView{
	URL:      "https://example.com/test-file.pdf",
	Filename: "test-document.pdf",
	FileSize: 2048576,
	Mime:     "application/pdf",
	Referrer: "https://example.com",
}

// FilterTestRequest is the message sent by the settings UI to validate a script.
type FilterTestRequest struct {
	Type     string      `json:"type"`
	Script   string      `json:"script"`
	TestData *FilterView `json:"testData,omitempty"`
}

// FilterTestResponse reports the outcome of a filter test.
type FilterTestResponse struct {
	Success bool          `json:"success"`
	Result  *FilterResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
	Kind    string        `json:"kind,omitempty"`
}
