// SPDX-License-Identifier: MIT

package obs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rinman24/arcobs/internal/access/blob"
	"github.com/rinman24/arcobs/internal/access/local"
	"github.com/rinman24/arcobs/internal/catalog"
	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/engine"
	"github.com/rinman24/arcobs/internal/engine/filter"
	"github.com/rinman24/arcobs/internal/engine/format"
	"github.com/rinman24/arcobs/internal/engine/transform"
	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/metrics"
	"github.com/rinman24/arcobs/internal/ncdf"
)

// Manager runs the observation workflows against blob storage and the
// product catalog.
type Manager struct {
	store   blob.Access
	catalog *catalog.Catalog
	tracker *Tracker
	workers int
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Option adjusts a Manager.
type Option func(*Manager)

// WithWorkers bounds concurrent blob downloads per day.
func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithUploadLimiter rate-limits product uploads.
func WithUploadLimiter(l *rate.Limiter) Option {
	return func(m *Manager) { m.limiter = l }
}

// NewManager wires a Manager. The catalog may be nil, in which case
// products are not indexed.
func NewManager(store blob.Access, cat *catalog.Catalog, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		catalog: cat,
		tracker: NewTracker(),
		workers: 4,
		logger:  log.WithComponent("obs"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Jobs exposes the manager's job tracker.
func (m *Manager) Jobs() *Tracker { return m.tracker }

// LaunchDailyFiles queues CreateDailyFiles as a tracked job.
func (m *Manager) LaunchDailyFiles(ctx context.Context, req DailyRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if _, err := rawStrategy(req.Observatory, req.Instrument); err != nil {
		return "", err
	}
	return m.tracker.Launch(ctx, "daily", func(ctx context.Context) error {
		return m.CreateDailyFiles(ctx, req)
	}), nil
}

// LaunchDailyMasks queues CreateDailyMasks as a tracked job.
func (m *Manager) LaunchDailyMasks(ctx context.Context, req DailyRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if _, err := maskSettingsFor(req.Observatory, req.Instrument); err != nil {
		return "", err
	}
	return m.tracker.Launch(ctx, "masks", func(ctx context.Context) error {
		return m.CreateDailyMasks(ctx, req)
	}), nil
}

// CreateDailyFiles builds one daily file per day of the requested month
// from the raw blobs of the instrument.
func (m *Manager) CreateDailyFiles(ctx context.Context, req DailyRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	strategy, err := rawStrategy(req.Observatory, req.Instrument)
	if err != nil {
		return err
	}
	container := string(req.Observatory)
	prefix := fmt.Sprintf("%s/raw/%d/", req.Instrument, req.Year)
	blobs, err := m.store.List(ctx, container, prefix)
	if err != nil {
		return fmt.Errorf("obs: daily files: %w", err)
	}
	logger := log.WithComponentFromContext(ctx, "obs")
	logger.Info().
		Str("observatory", container).
		Str("instrument", string(req.Instrument)).
		Int("year", req.Year).
		Int("month", int(req.Month)).
		Int("raw_blobs", len(blobs)).
		Msg("creating daily files")

	for _, target := range datesInMonth(req.Year, req.Month) {
		if err := ctx.Err(); err != nil {
			return err
		}
		selected, err := filter.NamesByDate(target, blobs, chrono.ToSecond)
		if err != nil {
			return fmt.Errorf("obs: daily files %s: %w", chrono.StampDate(target), err)
		}
		if len(selected) == 0 {
			continue
		}
		results, err := m.hydrateAll(ctx, container, selected, strategy)
		if err != nil {
			return fmt.Errorf("obs: daily files %s: %w", chrono.StampDate(target), err)
		}
		data, err := filter.IndicesByDate(target, results)
		if err != nil {
			if errors.Is(err, filter.ErrEmptyDay) {
				metrics.IncEmptyDay(container, string(req.Instrument))
				continue
			}
			return fmt.Errorf("obs: daily files %s: %w", chrono.StampDate(target), err)
		}
		name := fmt.Sprintf("%s-%s-%s.ncdf", chrono.StampDate(target), req.Observatory, req.Instrument)
		blobName := fmt.Sprintf("%s/daily/%d/%s", req.Instrument, req.Year, name)
		payload, err := m.serialize(data, map[string]string{
			"observatory": string(req.Observatory),
			"instrument":  string(req.Instrument),
		})
		if err != nil {
			return fmt.Errorf("obs: daily files %s: %w", chrono.StampDate(target), err)
		}
		if err := m.upload(ctx, container, blobName, payload); err != nil {
			return err
		}
		metrics.IncDailyFile(container, string(req.Instrument))
		m.index(ctx, catalog.Record{
			Observatory: container,
			Instrument:  string(req.Instrument),
			Date:        chrono.StampDate(target),
			Kind:        catalog.KindDaily,
			Container:   container,
			Blob:        blobName,
			Size:        int64(len(payload)),
			SHA256:      digest(payload),
			CreatedAt:   time.Now().UTC(),
		})
		logger.Info().Str("blob", blobName).Msg("daily file written")
	}
	return nil
}

// CreateDailyMasks derives a cloud mask from each daily file of the
// requested month.
func (m *Manager) CreateDailyMasks(ctx context.Context, req DailyRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	settings, err := maskSettingsFor(req.Observatory, req.Instrument)
	if err != nil {
		return err
	}
	strategy, err := dailyStrategy(req.Observatory, req.Instrument)
	if err != nil {
		return err
	}
	container := string(req.Observatory)
	prefix := fmt.Sprintf("%s/daily/%d/", req.Instrument, req.Year)
	blobs, err := m.store.List(ctx, container, prefix)
	if err != nil {
		return fmt.Errorf("obs: daily masks: %w", err)
	}
	logger := log.WithComponentFromContext(ctx, "obs")

	for _, target := range datesInMonth(req.Year, req.Month) {
		if err := ctx.Err(); err != nil {
			return err
		}
		selected, err := filter.NamesByDate(target, blobs, chrono.ToDay)
		if err != nil {
			return fmt.Errorf("obs: daily masks %s: %w", chrono.StampDate(target), err)
		}
		if len(selected) == 0 {
			continue
		}
		results, err := m.hydrateAll(ctx, container, selected, strategy)
		if err != nil {
			return fmt.Errorf("obs: daily masks %s: %w", chrono.StampDate(target), err)
		}
		data := results[0]
		signal, ok := data.Variables[settings.signal]
		if !ok {
			return fmt.Errorf("obs: daily masks %s: no %q variable", chrono.StampDate(target), settings.signal)
		}
		mask, err := transform.Mask(transform.MaskRequest{
			Values:    signal.Matrix,
			Length:    maskLength,
			Height:    settings.height,
			Threshold: settings.threshold,
			Scale:     maskScale,
			DType:     maskDType,
		})
		if err != nil {
			return fmt.Errorf("obs: daily masks %s: %w", chrono.StampDate(target), err)
		}
		data.Variables["cloud_mask"] = &transform.Variable{
			Dimensions: []transform.Dimension{
				{Name: engine.Time, Size: len(mask)},
				{Name: engine.Level, Size: len(mask[0])},
			},
			DType:    transform.MaskType,
			LongName: settings.longName,
			Units:    engine.UnitsNone,
			Scale:    engine.ScaleOne,
			Matrix:   mask,
		}
		// Mask files carry the observatory alone; the instrument lives
		// in the blob path.
		name := fmt.Sprintf("%s-%s.ncdf", chrono.StampDate(target), req.Observatory)
		blobName := fmt.Sprintf("%s/masks/%d/threshold_%g/%s", req.Instrument, req.Year, settings.threshold.Value, name)
		payload, err := m.serialize(data, map[string]string{
			"observatory": string(req.Observatory),
		})
		if err != nil {
			return fmt.Errorf("obs: daily masks %s: %w", chrono.StampDate(target), err)
		}
		if err := m.upload(ctx, container, blobName, payload); err != nil {
			return err
		}
		metrics.IncMask(container, string(req.Instrument))
		m.index(ctx, catalog.Record{
			Observatory: container,
			Instrument:  string(req.Instrument),
			Date:        chrono.StampDate(target),
			Kind:        catalog.KindMask,
			Container:   container,
			Blob:        blobName,
			Size:        int64(len(payload)),
			SHA256:      digest(payload),
			CreatedAt:   time.Now().UTC(),
		})
		logger.Info().Str("blob", blobName).Msg("daily mask written")
	}
	return nil
}

// MaskSummary reports the cloud statistics of one daily mask product.
type MaskSummary struct {
	Date        string  `json:"date"`
	Coverage    float64 `json:"coverage"`
	Persistence int     `json:"persistence"`
}

// SummarizeMasks re-reads the month's mask products and reports, per
// day, the fraction of cloudy cells and the longest cloudy streak in
// samples. Days without a mask product are omitted.
func (m *Manager) SummarizeMasks(ctx context.Context, req DailyRequest) ([]MaskSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	settings, err := maskSettingsFor(req.Observatory, req.Instrument)
	if err != nil {
		return nil, err
	}
	container := string(req.Observatory)
	prefix := fmt.Sprintf("%s/masks/%d/threshold_%g/", req.Instrument, req.Year, settings.threshold.Value)
	blobs, err := m.store.List(ctx, container, prefix)
	if err != nil {
		return nil, fmt.Errorf("obs: mask summary: %w", err)
	}
	summaries := make([]MaskSummary, 0, len(blobs))
	for _, target := range datesInMonth(req.Year, req.Month) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		selected, err := filter.NamesByDate(target, blobs, chrono.ToDay)
		if err != nil {
			return nil, fmt.Errorf("obs: mask summary %s: %w", chrono.StampDate(target), err)
		}
		if len(selected) == 0 {
			continue
		}
		results, err := m.hydrateAll(ctx, container, selected, transform.DailyMask{})
		if err != nil {
			return nil, fmt.Errorf("obs: mask summary %s: %w", chrono.StampDate(target), err)
		}
		mask, ok := results[0].Variables["cloud_mask"]
		if !ok {
			return nil, fmt.Errorf("obs: mask summary %s: no cloud_mask variable", chrono.StampDate(target))
		}
		summaries = append(summaries, summarizeMask(chrono.StampDate(target), mask.Matrix))
	}
	return summaries, nil
}

// RenameRawFiles renames every matching file in the request directory
// into the canonical timestamp grammar. It returns the new names.
func (m *Manager) RenameRawFiles(req RenameRequest) ([]string, error) {
	strategy, err := req.strategy()
	if err != nil {
		return nil, err
	}
	current, err := local.ListFiles(req.Directory, req.Extension)
	if err != nil {
		return nil, err
	}
	yearHint := fmt.Sprintf("%04d", req.Year)
	renamed := make([]string, len(current))
	for i, name := range current {
		renamed[i], err = format.Reformat(name, yearHint, strategy)
		if err != nil {
			return nil, fmt.Errorf("obs: rename: %w", err)
		}
	}
	if err := local.RenameFiles(req.Directory, current, renamed); err != nil {
		return nil, err
	}
	m.logger.Info().
		Str("directory", req.Directory).
		Int("files", len(renamed)).
		Msg("raw files renamed")
	return renamed, nil
}

// hydrateAll downloads and hydrates the named blobs, bounded by the
// worker count. Results keep the order of names.
func (m *Manager) hydrateAll(ctx context.Context, container string, names []string, strategy transform.Strategy) ([]*transform.InstrumentData, error) {
	results := make([]*transform.InstrumentData, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, name := range names {
		g.Go(func() error {
			raw, err := m.store.Get(ctx, container, name)
			metrics.RecordDownload(container, err)
			if err != nil {
				return err
			}
			ds, err := ncdf.Read(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("%q: %w", name, err)
			}
			data, err := strategy.Hydrate(ds, name)
			if err != nil {
				return err
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Manager) serialize(data *transform.InstrumentData, attrs map[string]string) ([]byte, error) {
	f, err := transform.Serialize(data, attrs)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Manager) upload(ctx context.Context, container, name string, payload []byte) error {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	err := m.store.Put(ctx, container, name, payload)
	metrics.RecordUpload(container, err)
	if err != nil {
		return fmt.Errorf("obs: upload %s/%s: %w", container, name, err)
	}
	return nil
}

func (m *Manager) index(ctx context.Context, rec catalog.Record) {
	if m.catalog == nil {
		return
	}
	if err := m.catalog.Upsert(ctx, rec); err != nil {
		m.logger.Warn().Err(err).Str("blob", rec.Blob).Msg("catalog update failed")
	}
}

func datesInMonth(year int, month time.Month) []chrono.DateTime {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	out := make([]chrono.DateTime, days)
	for d := 1; d <= days; d++ {
		out[d-1] = chrono.DateTime{Year: year, Month: int(month), Day: d}
	}
	return out
}

func digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
