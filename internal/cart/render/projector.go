package render

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dejobratic/cartwidget/internal/cart/domain"
	"github.com/dejobratic/cartwidget/internal/cart/ports"
)

// DefaultCurrencySymbol prefixes prices in row labels.
const DefaultCurrencySymbol = "₹"

// Row is one rendered cart entry. Index is the entry's position in the view
// it belongs to and is only valid until the next render.
type Row struct {
	Index int
	Name  string
	Price float64
	Qty   int
	Label string

	// Remove deletes this row's entry. It is nil when no Remover is configured.
	Remove func(ctx context.Context)
}

// Remover deletes a cart entry by position.
type Remover interface {
	Remove(ctx context.Context, index int)
}

// View is the derived, read-only projection of a cart.
type View struct {
	Version      uint64
	Rows         []Row
	Total        float64
	TotalText    string
	Count        int
	BadgeVisible bool
}

// ListTarget receives the full list of rows on every render.
type ListTarget interface {
	ReplaceRows(rows []Row)
}

// TextTarget displays a single piece of text.
type TextTarget interface {
	SetText(text string)
}

// BadgeTarget displays the item count.
type BadgeTarget interface {
	SetBadge(count int, visible bool)
}

// PanelTarget is the collapsible cart panel.
type PanelTarget interface {
	SetVisible(visible bool)
	Visible() bool
}

// Targets maps logical render targets to concrete handles. Any field may be
// nil; the corresponding part of the projection is skipped.
type Targets struct {
	ItemList ListTarget
	Total    TextTarget
	Badge    BadgeTarget
	Panel    PanelTarget
}

// Projector renders cart change events into its targets. It never mutates the cart.
type Projector struct {
	mu       sync.Mutex
	targets  Targets
	remover  Remover
	currency string
	last     View
	applied  bool
}

type Option func(*Projector)

// WithRemover binds row remove actions to r.
func WithRemover(r Remover) Option {
	return func(p *Projector) {
		p.remover = r
	}
}

func WithCurrencySymbol(symbol string) Option {
	return func(p *Projector) {
		p.currency = symbol
	}
}

// NewProjector resolves the targets once; they cannot be changed later.
func NewProjector(targets Targets, opts ...Option) *Projector {
	p := &Projector{
		targets:  targets,
		currency: DefaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CartChanged implements ports.ChangeListener. Events older than the last
// applied one are dropped.
func (p *Projector) CartChanged(_ context.Context, event ports.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.applied && event.Version < p.last.Version {
		return
	}
	p.applyLocked(p.build(event.Version, event.Items))
}

// Render projects items directly, bypassing the event stream.
func (p *Projector) Render(items domain.Cart) View {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := p.build(p.last.Version, items)
	p.applyLocked(view)
	return view
}

// Current returns the last applied view.
func (p *Projector) Current() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// TogglePanel flips panel visibility. Without a panel target it leaves state
// alone and returns a hint carrying the saved item count.
func (p *Projector) TogglePanel() (visible bool, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.targets.Panel == nil {
		return false, SavedHint(p.last.Count)
	}

	visible = !p.targets.Panel.Visible()
	p.targets.Panel.SetVisible(visible)
	return visible, ""
}

func (p *Projector) build(version uint64, items domain.Cart) View {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = Row{
			Index: i,
			Name:  item.Name,
			Price: item.Price,
			Qty:   item.Qty,
			Label: fmt.Sprintf("%s (%s%s) x %d", item.Name, p.currency, FormatAmount(item.Price), item.Qty),
		}
		if p.remover != nil {
			index := i
			rows[i].Remove = func(ctx context.Context) {
				p.remover.Remove(ctx, index)
			}
		}
	}

	total := items.Total()
	count := items.ItemCount()
	return View{
		Version:      version,
		Rows:         rows,
		Total:        total,
		TotalText:    FormatAmount(total),
		Count:        count,
		BadgeVisible: count > 0,
	}
}

func (p *Projector) applyLocked(view View) {
	if p.targets.ItemList != nil {
		rows := make([]Row, len(view.Rows))
		copy(rows, view.Rows)
		p.targets.ItemList.ReplaceRows(rows)
	}
	if p.targets.Total != nil {
		p.targets.Total.SetText(view.TotalText)
	}
	if p.targets.Badge != nil {
		p.targets.Badge.SetBadge(view.Count, view.BadgeVisible)
	}
	p.last = view
	p.applied = true
}

// SavedHint is shown in place of the panel on pages that do not carry one.
func SavedHint(count int) string {
	return fmt.Sprintf("Cart saved (%d items). Go to Home to view cart.", count)
}

// FormatAmount prints the shortest decimal representation of an amount,
// without trailing zeros: 2400, 99.5.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
