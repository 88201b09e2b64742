package models

// Action is what the pipeline did with a download.
type Action string

// Actions.
const (
	ActionRedirected Action = "redirected"
	ActionSkipped    Action = "skipped"
	ActionFailed     Action = "failed"
)

// Outcome is the result of handling one download event.
type Outcome struct {
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
	Kind   string `json:"kind,omitempty"`
	GID    string `json:"gid,omitempty"`
}

// Params are the aria2.addUri options computed for a redirect.
type Params struct {
	Out    string   `json:"out"`
	Header []string `json:"header"`
	Dir    string   `json:"dir,omitempty"`
}
