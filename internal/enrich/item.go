package enrich

import (
	"context"
	"strings"
	"sync"

	"github.com/devfolio/portfolio/catalog"
)

// DefaultPlaceholderIcon is shown whenever no catalog artwork is available.
const DefaultPlaceholderIcon = "/img/app-placeholder.svg"

// ItemConfig is the locally known data for one rendered item.
type ItemConfig struct {
	CatalogID       string
	Country         string
	Title           string
	PlaceholderIcon string
}

// View is what the page renders for an item. It is always complete:
// failures degrade to the configured title and placeholder icon.
type View struct {
	State         State    `json:"state"`
	Enriched      bool     `json:"enriched"`
	Title         string   `json:"title"`
	IconURL       string   `json:"iconUrl"`
	Screenshots   []string `json:"screenshots"`
	PriceLabel    string   `json:"priceLabel"`
	Genre         string   `json:"genre"`
	Rating        float64  `json:"rating"`
	RatingCount   int64    `json:"ratingCount"`
	ContentRating string   `json:"contentRating"`
	Description   string   `json:"description"`
	StoreURL      string   `json:"storeUrl"`
}

// Item is one mounted UI element backed by a catalog lookup.
type Item struct {
	cfg    ItemConfig
	loader *Loader

	mu         sync.Mutex
	state      State
	record     catalog.Record
	mounted    bool
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	doneClosed bool
}

func NewItem(loader *Loader, cfg ItemConfig) *Item {
	if cfg.PlaceholderIcon == "" {
		cfg.PlaceholderIcon = DefaultPlaceholderIcon
	}
	return &Item{cfg: cfg, loader: loader, state: Idle, done: make(chan struct{})}
}

// Mount starts the lookup. Without a catalog id the item stays Idle.
// Mounting an already mounted item is a no-op.
func (it *Item) Mount(ctx context.Context) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.mounted {
		return
	}
	it.mounted = true
	it.generation++
	it.done = make(chan struct{})
	it.doneClosed = false

	if strings.TrimSpace(it.cfg.CatalogID) == "" {
		it.state = Idle
		it.finishLocked()
		return
	}

	req, err := catalog.NewRequest(it.cfg.CatalogID, it.cfg.Country)
	if err != nil {
		it.state = Failed
		it.finishLocked()
		return
	}

	it.state = Loading
	lctx, cancel := context.WithCancel(ctx)
	it.cancel = cancel
	go it.run(lctx, req, it.generation)
}

func (it *Item) run(ctx context.Context, req catalog.Request, gen uint64) {
	res := it.loader.Load(ctx, req, it.cfg.Title)

	it.mu.Lock()
	defer it.mu.Unlock()
	// Unmounted or remounted since: the result belongs to nobody.
	if !it.mounted || gen != it.generation {
		return
	}
	it.state = res.State
	it.record = res.Record
	it.finishLocked()
}

// Unmount abandons an in-flight lookup. A pending result is discarded.
func (it *Item) Unmount() {
	it.mu.Lock()
	defer it.mu.Unlock()
	if !it.mounted {
		return
	}
	it.mounted = false
	if it.cancel != nil {
		it.cancel()
		it.cancel = nil
	}
	if it.state == Loading {
		it.state = Idle
	}
	it.finishLocked()
}

// Done is closed once the current mount reaches a terminal state or the
// item is unmounted.
func (it *Item) Done() <-chan struct{} {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.done
}

func (it *Item) State() State {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

// View renders the current state.
func (it *Item) View() View {
	it.mu.Lock()
	defer it.mu.Unlock()

	v := View{
		State:       it.state,
		Title:       it.cfg.Title,
		IconURL:     it.cfg.PlaceholderIcon,
		Screenshots: []string{},
	}
	if it.state != Success {
		return v
	}

	rec := it.record
	v.Enriched = true
	if rec.DisplayName != "" {
		v.Title = rec.DisplayName
	}
	if rec.IconURL != nil && *rec.IconURL != "" {
		v.IconURL = *rec.IconURL
	}
	if len(rec.ScreenshotURLs) > 0 {
		v.Screenshots = append([]string(nil), rec.ScreenshotURLs...)
	}
	v.PriceLabel = rec.PriceLabel
	v.Genre = rec.Genre
	v.Rating = rec.AverageRating
	v.RatingCount = rec.RatingCount
	v.ContentRating = rec.ContentRating
	v.Description = rec.Description
	v.StoreURL = rec.TrackViewURL
	return v
}

func (it *Item) finishLocked() {
	if !it.doneClosed {
		close(it.done)
		it.doneClosed = true
	}
}
