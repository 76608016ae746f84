package render

import "sync"

type View struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

type Marker struct {
	ID      MarkerHandle `json:"id"`
	Lat     float64      `json:"lat"`
	Lon     float64      `json:"lon"`
	Content string       `json:"content"`
}

type Card struct {
	ID        CardHandle `json:"id"`
	Name      string     `json:"name"`
	Counter   string     `json:"counter"`
	LastVisit string     `json:"lastVisit"`
}

// BoardState is a copy of everything currently drawn on a Board.
type BoardState struct {
	Version   uint64   `json:"version"`
	View      View     `json:"view"`
	Markers   []Marker `json:"markers"`
	Cards     []Card   `json:"cards"`
	OpenPopup *int     `json:"openPopup,omitempty"`
}

// Board is an in-memory map and card renderer. Browsers poll its state and
// draw it; the core only ever talks to the renderer interfaces.
type Board struct {
	mu        sync.RWMutex
	version   uint64
	view      View
	markers   []Marker
	cards     []Card
	openPopup int
}

func NewBoard(center View) *Board {
	return &Board{view: center, openPopup: -1}
}

func (b *Board) AddMarker(lat, lng float64, content string) MarkerHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := MarkerHandle(len(b.markers))
	b.markers = append(b.markers, Marker{ID: h, Lat: lat, Lon: lng, Content: content})
	b.version++
	return h
}

func (b *Board) SetMarkerContent(h MarkerHandle, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(h) < 0 || int(h) >= len(b.markers) {
		return
	}
	b.markers[h].Content = content
	b.version++
}

func (b *Board) OpenPopup(h MarkerHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(h) < 0 || int(h) >= len(b.markers) {
		return
	}
	b.openPopup = int(h)
	b.version++
}

func (b *Board) PanTo(lat, lng float64, zoom int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = View{Lat: lat, Lon: lng, Zoom: zoom}
	b.version++
}

func (b *Board) RenderCard(name string) CardHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := CardHandle(len(b.cards))
	b.cards = append(b.cards, Card{ID: h, Name: name})
	b.version++
	return h
}

func (b *Board) SetCounterText(h CardHandle, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(h) < 0 || int(h) >= len(b.cards) {
		return
	}
	b.cards[h].Counter = text
	b.version++
}

func (b *Board) SetLastVisitText(h CardHandle, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if int(h) < 0 || int(h) >= len(b.cards) {
		return
	}
	b.cards[h].LastVisit = text
	b.version++
}

// Reset clears all markers and cards, e.g. before a reload.
func (b *Board) Reset(center View) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = center
	b.markers = nil
	b.cards = nil
	b.openPopup = -1
	b.version++
}

func (b *Board) State() BoardState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st := BoardState{
		Version: b.version,
		View:    b.view,
		Markers: append([]Marker(nil), b.markers...),
		Cards:   append([]Card(nil), b.cards...),
	}
	if b.openPopup >= 0 {
		open := b.openPopup
		st.OpenPopup = &open
	}
	return st
}

var (
	_ MapRenderer = (*Board)(nil)
	_ UIRenderer  = (*Board)(nil)
)
