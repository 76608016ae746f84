package attendance

import "attendance/internal/models"

// Surface is anything that displays the state of one location, such as a
// card or a marker popup. The controller hands it the latest snapshot and
// never inspects it further.
type Surface interface {
	UpdateCounter(models.Snapshot)
	UpdatePopup(models.Snapshot)
	HighlightOnMap(models.Snapshot)
}

// SurfaceFuncs adapts plain functions to Surface. Nil fields are no-ops.
type SurfaceFuncs struct {
	Counter   func(models.Snapshot)
	Popup     func(models.Snapshot)
	Highlight func(models.Snapshot)
}

func (f SurfaceFuncs) UpdateCounter(s models.Snapshot) {
	if f.Counter != nil {
		f.Counter(s)
	}
}

func (f SurfaceFuncs) UpdatePopup(s models.Snapshot) {
	if f.Popup != nil {
		f.Popup(s)
	}
}

func (f SurfaceFuncs) HighlightOnMap(s models.Snapshot) {
	if f.Highlight != nil {
		f.Highlight(s)
	}
}
