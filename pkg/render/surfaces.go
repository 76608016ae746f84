package render

import (
	"attendance/internal/models"
	"attendance/pkg/attendance"
)

// MarkerSurface shows one location as a map marker with a popup.
type MarkerSurface struct {
	renderer MapRenderer
	handle   MarkerHandle
	record   models.Record
	zoom     int
}

// NewMarkerSurface places the marker for rec, showing an unvisited popup.
func NewMarkerSurface(m MapRenderer, rec models.Record, zoom int) *MarkerSurface {
	h := m.AddMarker(rec.Latitude, rec.Longitude, PopupContent(models.Snapshot{Name: rec.Name}, rec.Address))
	return &MarkerSurface{renderer: m, handle: h, record: rec, zoom: zoom}
}

// UpdateCounter is a no-op: a marker shows its count inside the popup.
func (s *MarkerSurface) UpdateCounter(models.Snapshot) {}

func (s *MarkerSurface) UpdatePopup(snap models.Snapshot) {
	s.renderer.SetMarkerContent(s.handle, PopupContent(snap, s.record.Address))
	s.renderer.OpenPopup(s.handle)
}

func (s *MarkerSurface) HighlightOnMap(models.Snapshot) {
	s.renderer.PanTo(s.record.Latitude, s.record.Longitude, s.zoom)
	s.renderer.OpenPopup(s.handle)
}

// CardSurface shows one location as a card with a counter.
type CardSurface struct {
	renderer UIRenderer
	handle   CardHandle
}

func NewCardSurface(ui UIRenderer, name string) *CardSurface {
	h := ui.RenderCard(name)
	initial := models.Snapshot{Name: name}
	ui.SetCounterText(h, CounterText(initial))
	ui.SetLastVisitText(h, LastVisitText(initial))
	return &CardSurface{renderer: ui, handle: h}
}

func (s *CardSurface) UpdateCounter(snap models.Snapshot) {
	s.renderer.SetCounterText(s.handle, CounterText(snap))
	s.renderer.SetLastVisitText(s.handle, LastVisitText(snap))
}

func (s *CardSurface) UpdatePopup(models.Snapshot) {}

func (s *CardSurface) HighlightOnMap(models.Snapshot) {}

var (
	_ attendance.Surface = (*MarkerSurface)(nil)
	_ attendance.Surface = (*CardSurface)(nil)
)
