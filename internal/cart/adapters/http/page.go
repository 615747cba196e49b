package http

import (
	"path"
	"strings"
	"sync"

	"github.com/dejobratic/cartwidget/internal/cart/render"
)

// PageTargets holds the rendered state shared by every page. The projector
// writes into it through the render target interfaces; the notifier uses it
// as its overlay.
type PageTargets struct {
	mu           sync.RWMutex
	rows         []render.Row
	totalText    string
	count        int
	badgeVisible bool
	panelVisible bool
	toast        string
	toastVisible bool
}

// NewPageTargets starts with an empty list and the panel shown.
func NewPageTargets() *PageTargets {
	return &PageTargets{totalText: "0", panelVisible: true}
}

func (p *PageTargets) ReplaceRows(rows []render.Row) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = rows
}

func (p *PageTargets) SetText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalText = text
}

func (p *PageTargets) SetBadge(count int, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = count
	p.badgeVisible = visible
}

func (p *PageTargets) SetVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panelVisible = visible
}

func (p *PageTargets) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.panelVisible
}

// Show and Hide make PageTargets the notification overlay.
func (p *PageTargets) Show(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toast = message
	p.toastVisible = true
}

func (p *PageTargets) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toastVisible = false
}

// Row returns the row at index in the current render.
func (p *PageTargets) Row(index int) (render.Row, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index < 0 || index >= len(p.rows) {
		return render.Row{}, false
	}
	return p.rows[index], true
}

// PageState is a point-in-time copy of the rendered state.
type PageState struct {
	Rows         []render.Row
	TotalText    string
	Count        int
	BadgeVisible bool
	PanelVisible bool
	Toast        string
	ToastVisible bool
}

func (p *PageTargets) Snapshot() PageState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rows := make([]render.Row, len(p.rows))
	copy(rows, p.rows)
	return PageState{
		Rows:         rows,
		TotalText:    p.totalText,
		Count:        p.count,
		BadgeVisible: p.badgeVisible,
		PanelVisible: p.panelVisible,
		Toast:        p.toast,
		ToastVisible: p.toastVisible,
	}
}

// PageName returns the lower-cased last segment of a request path.
func PageName(urlPath string) string {
	if urlPath == "" || strings.HasSuffix(urlPath, "/") {
		return ""
	}
	return strings.ToLower(path.Base(urlPath))
}

// IsHome reports whether the page at urlPath is one of homes.
func IsHome(urlPath string, homes []string) bool {
	page := PageName(urlPath)
	for _, home := range homes {
		if page == strings.ToLower(home) {
			return true
		}
	}
	return false
}
