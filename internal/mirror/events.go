// Package mirror contains the kiosk's gesture-driven state machines: the
// top-level widget navigator, the fitting-room flow, and the frame
// dispatcher that feeds exactly one of them per camera frame.
package mirror

// EventType identifies a UI event emitted by the state machines. The
// rendering layer consumes these over the WebSocket hub.
type EventType string

const (
	EventWidgetChanged  EventType = "widget_changed"
	EventPreviewToggled EventType = "preview_toggled"
	EventMusicToggled   EventType = "music_toggled"
	EventPhaseChanged   EventType = "phase_changed"
	EventCatalogBrowsed EventType = "catalog_browsed"
	EventCountdownTick  EventType = "countdown_tick"
	EventLookUpdated    EventType = "look_updated"
	EventLookSelected   EventType = "look_selected"
	EventFingerCount    EventType = "finger_count"
	EventThumbProgress  EventType = "thumb_progress"
	EventShareRequested EventType = "share_requested"
)

// Event is one UI notification. Only the fields relevant to the event type
// carry meaning; the rest stay at their zero values.
type Event struct {
	Type      EventType `json:"type"`
	Widget    string    `json:"widget,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	ItemID    string    `json:"itemId,omitempty"`
	SceneID   string    `json:"sceneId,omitempty"`
	Index     int       `json:"index"`
	Count     int       `json:"count"`
	Countdown int       `json:"countdown"`
	Progress  float64   `json:"progress"`
	On        bool      `json:"on"`
	Error     string    `json:"error,omitempty"`
}

// Sink receives emitted events. It must not call back into the machine that
// emitted the event.
type Sink func(Event)

// FanOut combines several sinks into one.
func FanOut(sinks ...Sink) Sink {
	return func(ev Event) {
		for _, s := range sinks {
			if s != nil {
				s(ev)
			}
		}
	}
}

// Widget is one top-level screen of the mirror.
type Widget struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FittingWidgetID is the widget the fitting-room machine owns.
const FittingWidgetID = "fitting-room"

// DefaultWidgets returns the mirror's widget carousel.
func DefaultWidgets() []Widget {
	return []Widget{
		{ID: "clock", Title: "Clock"},
		{ID: "weather", Title: "Weather"},
		{ID: "news", Title: "News"},
		{ID: FittingWidgetID, Title: "Fitting Room"},
	}
}
