package enrich

import "context"

// RenderAll mounts one item per config, waits for all of them (or ctx),
// and returns their views in input order. Items are unmounted afterwards.
func RenderAll(ctx context.Context, loader *Loader, cfgs []ItemConfig) []View {
	items := make([]*Item, len(cfgs))
	for i, c := range cfgs {
		items[i] = NewItem(loader, c)
		items[i].Mount(ctx)
	}

	views := make([]View, len(items))
	for i, it := range items {
		select {
		case <-it.Done():
		case <-ctx.Done():
		}
		views[i] = it.View()
		if views[i].State == Loading {
			// ctx ran out first; render the fallback rather than a spinner
			views[i].State = Failed
		}
		it.Unmount()
	}
	return views
}
