package flash

import (
	"strings"

	"flash-backend/internal/sessions"
)

// Delivery summarizes which channels carried the handoff.
type Delivery string

const (
	DeliveryLive     Delivery = "live"
	DeliveryFallback Delivery = "fallback"
	DeliveryBoth     Delivery = "both"
	DeliveryNone     Delivery = "none"
)

// Navigation tells the caller whether to open the job posting afterwards.
type Navigation string

const (
	NavigationNone Navigation = "none"
	NavigationJob  Navigation = "job_url"
)

// Outcome merges the independent delivery attempts of one run. A failed
// run only carries State and RunID.
type Outcome struct {
	RunID             string          `json:"runId"`
	State             State           `json:"state"`
	Navigation        Navigation      `json:"navigation"`
	NavigationURL     string          `json:"navigationUrl,omitempty"`
	AgentAvailable    bool            `json:"agentAvailable"`
	LiveDelivered     bool            `json:"liveDelivered"`
	FallbackDelivered bool            `json:"fallbackDelivered"`
	UploadAbandoned   bool            `json:"uploadAbandoned"`
	Artifacts         []ArtifactBlob  `json:"artifacts"`
	Receipts          []UploadReceipt `json:"receipts"`
	Session           sessions.Record `json:"session"`
}

// Delivery reports which channels succeeded.
func (o Outcome) Delivery() Delivery {
	switch {
	case o.LiveDelivered && o.FallbackDelivered:
		return DeliveryBoth
	case o.LiveDelivered:
		return DeliveryLive
	case o.FallbackDelivered:
		return DeliveryFallback
	default:
		return DeliveryNone
	}
}

// Message is the sentence shown to the user for a finished run.
func (o Outcome) Message() string {
	var msg string
	switch o.Delivery() {
	case DeliveryBoth:
		msg = "Sent to your autofill agent and synced to your account."
	case DeliveryLive:
		msg = "Sent to your autofill agent."
	case DeliveryFallback:
		if o.AgentAvailable {
			msg = "Live delivery failed. Your files are synced for the agent to pick up."
		} else {
			msg = "Autofill agent not running. Your files are synced for the agent to pick up."
		}
	default:
		msg = "Session is active. No files were delivered."
	}
	if o.Navigation == NavigationJob {
		msg += " Opening the job posting."
	}
	return msg
}

func (o Outcome) clone() Outcome {
	out := o
	out.Artifacts = append([]ArtifactBlob(nil), o.Artifacts...)
	out.Receipts = append([]UploadReceipt(nil), o.Receipts...)
	if o.Session.Preferences != nil {
		prefs := make(map[string]any, len(o.Session.Preferences))
		for k, v := range o.Session.Preferences {
			prefs[k] = v
		}
		out.Session.Preferences = prefs
	}
	return out
}

// navigationFor echoes the caller's url byte for byte when it is usable.
func navigationFor(url string) (Navigation, string) {
	if strings.TrimSpace(url) == "" {
		return NavigationNone, ""
	}
	return NavigationJob, url
}
