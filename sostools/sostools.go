// Package sostools provides the standard ResQTalk emergency tools: siren,
// screen flash, page navigation, checklist, and location. Side effects are
// supplied by the host through small interfaces so the same registrations
// work in any frontend.
package sostools

import (
	"context"
	"fmt"

	resqtalk "github.com/resqtalk/resqtalk-go"
)

// Player controls the siren sound.
type Player interface {
	Play() error
	Stop() error
}

// Flasher controls the attention-grabbing screen flash.
type Flasher interface {
	StartFlash() error
	StopFlash() error
}

// Navigator presents an affordance taking the user to another page.
type Navigator interface {
	NavigateTo(title, url string) error
}

// Locator resolves the device's current position.
type Locator interface {
	CurrentLocation(ctx context.Context) (latitude, longitude float64, err error)
}

// Deps collects the host-provided side effects. Nil fields skip the
// corresponding registrations.
type Deps struct {
	Player    Player
	Flasher   Flasher
	Navigator Navigator
	Locator   Locator
	Checklist *ChecklistStore
}

// RegisterAll registers every tool whose dependency is present.
func RegisterAll(reg *resqtalk.Registry, deps Deps) {
	if deps.Player != nil {
		reg.Register(NewPlaySound(deps.Player))
		reg.Register(NewStopSound(deps.Player))
	}
	if deps.Flasher != nil {
		reg.Register(NewStartFlash(deps.Flasher))
		reg.Register(NewStopFlash(deps.Flasher))
	}
	if deps.Navigator != nil {
		reg.Register(NewNavigateToMaps(deps.Navigator))
		reg.Register(NewNavigateToLiveAlerts(deps.Navigator))
		reg.Register(NewNavigateToChecklist(deps.Navigator))
	}
	if deps.Locator != nil {
		reg.Register(NewGetLocation(deps.Locator))
	}
	if deps.Checklist != nil {
		reg.Register(NewAddToList(deps.Checklist))
	}
}

// NewPlaySound builds the siren tool.
func NewPlaySound(p Player) resqtalk.Tool {
	return resqtalk.NewVoidTool(
		"playSound",
		"Play a siren, this can be used to alert others in case of emergency/disasters",
		nil,
		func(context.Context, map[string]any) error { return p.Play() },
		resqtalk.WithUsageGuideline("Invoke when the user asks to alert or signal people nearby."),
	)
}

// NewStopSound builds the siren-stop tool.
func NewStopSound(p Player) resqtalk.Tool {
	return resqtalk.NewVoidTool(
		"stopSound",
		"Stop the siren",
		nil,
		func(context.Context, map[string]any) error { return p.Stop() },
		resqtalk.WithUsageGuideline("Invoke when the user asks to stop the siren."),
	)
}

// NewStartFlash builds the screen-flash tool.
func NewStartFlash(f Flasher) resqtalk.Tool {
	return resqtalk.NewVoidTool(
		"startFlash",
		"Flash the screen in white and black, useful for signalling rescuers in the dark",
		nil,
		func(context.Context, map[string]any) error { return f.StartFlash() },
		resqtalk.WithUsageGuideline("Invoke when the user needs a visual distress signal."),
	)
}

// NewStopFlash builds the flash-stop tool.
func NewStopFlash(f Flasher) resqtalk.Tool {
	return resqtalk.NewVoidTool(
		"stopFlash",
		"Stop flashing the screen",
		nil,
		func(context.Context, map[string]any) error { return f.StopFlash() },
		resqtalk.WithUsageGuideline("Invoke when the user asks to stop the screen flash."),
	)
}

// NewGetLocation builds the location tool. The computed coordinates string
// is returned straight from the invocation; a lookup failure degrades to an
// empty result rather than failing the dispatch.
func NewGetLocation(l Locator) resqtalk.Tool {
	invoke := func(ctx context.Context, _ map[string]any) (string, error) {
		lat, lon, err := l.CurrentLocation(ctx)
		if err != nil {
			return "", nil
		}
		return fmt.Sprintf("Latitude: %v, Longitude: %v", lat, lon), nil
	}
	return resqtalk.NewTool(
		"getLocation",
		"Get the user's current location as latitude and longitude",
		nil,
		invoke,
		resqtalk.WithUsageGuideline("Invoke when the user asks where they are or needs coordinates for rescuers."),
	)
}

// NewAddToList builds the checklist tool.
func NewAddToList(store *ChecklistStore) resqtalk.Tool {
	params := []resqtalk.Param{{Name: "item", Type: "string", Required: true}}
	return resqtalk.NewVoidTool(
		"addToList",
		"Add an item to the user's emergency checklist",
		params,
		func(_ context.Context, p map[string]any) error {
			item, _ := p["item"].(string)
			return store.Append(item)
		},
		resqtalk.WithUsageGuideline("Invoke when the user wants to remember a supply or task."),
	)
}

// NewNavigateToMaps, NewNavigateToLiveAlerts, and NewNavigateToChecklist
// build the page-navigation tools; each reports a fixed confirmation so the
// conversation shows where the user is being taken.
func NewNavigateToMaps(n Navigator) resqtalk.Tool {
	return newNavigate(n, "navigateToMaps", "Maps", "/maps",
		"Open the offline maps page",
		"Invoke when the user asks for maps or directions.")
}

func NewNavigateToLiveAlerts(n Navigator) resqtalk.Tool {
	return newNavigate(n, "navigateToLiveAlerts", "Live Alerts", "/alerts",
		"Open the live weather alerts page",
		"Invoke when the user asks about current warnings or alerts.")
}

func NewNavigateToChecklist(n Navigator) resqtalk.Tool {
	return newNavigate(n, "navigateToList", "Checklist", "/checklist",
		"Open the emergency checklist page",
		"Invoke when the user asks to see their checklist.")
}

func newNavigate(n Navigator, name, title, url, description, guideline string) resqtalk.Tool {
	return resqtalk.NewVoidTool(
		name,
		description,
		nil,
		func(context.Context, map[string]any) error { return n.NavigateTo(title, url) },
		resqtalk.WithUsageGuideline(guideline),
		resqtalk.WithFixedResult("Taking you to "+title+"."),
	)
}
