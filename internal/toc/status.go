package toc

import "strings"

// Status is the standards status of a section, read from a CSS class near the top of
// the page that contains it.
type Status string

const (
	StatusNone        Status = ""
	StatusDraft       Status = "draft"
	StatusTrialUse    Status = "trial-use"
	StatusNormative   Status = "normative"
	StatusInformative Status = "informative"
	StatusDeprecated  Status = "deprecated"
	StatusExternal    Status = "external"
)

var statusLabels = map[Status]string{
	StatusDraft:       "Draft",
	StatusTrialUse:    "Trial Use",
	StatusNormative:   "Normative",
	StatusInformative: "Informative",
	StatusDeprecated:  "Deprecated",
	StatusExternal:    "External",
}

// ParseStatus maps a class token to a Status. "stu" and "trial_use" are accepted as
// aliases of trial-use.
func ParseStatus(token string) (Status, bool) {
	switch t := strings.ToLower(strings.TrimSpace(token)); t {
	case "stu", "trial_use", "trialuse":
		return StatusTrialUse, true
	default:
		s := Status(t)
		_, ok := statusLabels[s]
		return s, ok
	}
}

// Label is the human readable form used in TOC badges.
func (s Status) Label() string {
	return statusLabels[s]
}
