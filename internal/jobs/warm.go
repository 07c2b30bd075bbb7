package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/devfolio/portfolio/catalog"
)

type Lookuper interface {
	Lookup(ctx context.Context, req catalog.Request) (catalog.Result, catalog.Request, error)
}

type RecordStore interface {
	Put(catalogID string, rec catalog.Record) error
}

// Warmer refreshes cached catalog records ahead of visitors.
type Warmer struct {
	Catalog Lookuper
	Store   RecordStore
	Logger  zerolog.Logger
}

func (w *Warmer) HandleWarmCatalog(ctx context.Context, t *asynq.Task) error {
	var p WarmCatalogPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.Logger.Error().Err(err).Msg("bad warm payload")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	req, err := catalog.NewRequest(p.CatalogID, p.Country)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	start := time.Now()
	res, served, err := w.Catalog.Lookup(ctx, req)
	duration := time.Since(start)
	if err != nil {
		if isRetryableError(err) {
			w.Logger.Warn().Err(err).Str("id", req.ID).Dur("duration", duration).Msg("warm retryable error")
			return err
		}
		w.Logger.Info().Err(err).Str("id", req.ID).Dur("duration", duration).Msg("warm dropped")
		return nil
	}

	if err := w.Store.Put(req.ID, catalog.Normalize(res, "")); err != nil {
		return fmt.Errorf("cache %s: %w", req, err)
	}
	w.Logger.Info().Str("id", req.ID).Str("title", p.Title).Str("country", served.Country).Dur("duration", duration).Msg("warm done")
	return nil
}

// isRetryableError reports transient upstream conditions worth another try.
func isRetryableError(err error) bool {
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrParse) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *catalog.StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	var ne net.Error
	return errors.As(err, &ne)
}
