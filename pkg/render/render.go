// Package render adapts map and card renderers to attendance surfaces.
// It never draws anything itself: MapRenderer and UIRenderer are the
// boundary to whatever does.
package render

import (
	"fmt"
	"html"
	"strconv"

	"attendance/internal/models"
)

// DateLayout is used for every "last checked in" timestamp shown to users.
const DateLayout = "Jan 2, 2006, 3:04:05 PM"

type MarkerHandle int

type CardHandle int

// MapRenderer draws markers and moves the map view.
type MapRenderer interface {
	AddMarker(lat, lng float64, content string) MarkerHandle
	SetMarkerContent(h MarkerHandle, content string)
	OpenPopup(h MarkerHandle)
	PanTo(lat, lng float64, zoom int)
}

// UIRenderer draws location cards.
type UIRenderer interface {
	RenderCard(name string) CardHandle
	SetCounterText(h CardHandle, text string)
	SetLastVisitText(h CardHandle, text string)
}

// PopupContent is the HTML shown in a marker popup.
func PopupContent(s models.Snapshot, address string) string {
	content := fmt.Sprintf("<div><strong>%s</strong><br>", html.EscapeString(s.Name))
	if address != "" {
		content += fmt.Sprintf("<small>%s</small><br>", html.EscapeString(address))
	}
	content += fmt.Sprintf("Attendance Count: <span class=\"attendance-count\">%d</span><br>", s.VisitCount)
	content += fmt.Sprintf("Last Checked In: %s</div>", html.EscapeString(s.LastVisitedLabel(DateLayout)))
	return content
}

func CounterText(s models.Snapshot) string {
	return strconv.Itoa(s.VisitCount)
}

func LastVisitText(s models.Snapshot) string {
	return "Last checked in: " + s.LastVisitedLabel(DateLayout)
}
