package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/config"
	"github.com/JonMunkholm/vizboard/internal/dataset"
	"github.com/JonMunkholm/vizboard/internal/history"
	"github.com/JonMunkholm/vizboard/internal/logging"
	"github.com/JonMunkholm/vizboard/internal/store"
)

var (
	// ErrNoDataset is returned when the session has nothing uploaded.
	ErrNoDataset = errors.New("no dataset uploaded")
	// ErrNoFile is returned when an upload request carries no file.
	ErrNoFile = errors.New("no file provided")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNotEnoughData is returned for KPI requests on a dataset without
	// numeric columns.
	ErrNotEnoughData = fmt.Errorf("%w: no numeric columns", charts.ErrUnavailable)
)

// cachedDataset is a parsed upload. The upload ID ties it to the bytes in
// the session store so a replaced upload is never served stale.
type cachedDataset struct {
	uploadID uuid.UUID
	ds       *dataset.Dataset
}

// Service owns the per-session datasets and renders dashboards from them.
type Service struct {
	cfg     *config.Config
	store   store.Store
	history history.Recorder
	limiter *UploadLimiter
	cache   *lru.Cache[string, cachedDataset]
	variant charts.Variant
	now     func() time.Time
}

// NewService wires the service to a session store and a history recorder.
func NewService(cfg *config.Config, st store.Store, rec history.Recorder) (*Service, error) {
	cache, err := lru.New[string, cachedDataset](cfg.Session.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create dataset cache: %w", err)
	}
	if rec == nil {
		rec = history.Nop{}
	}

	return &Service{
		cfg:     cfg,
		store:   st,
		history: rec,
		limiter: NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		cache:   cache,
		variant: charts.Variant(strings.ToLower(cfg.Dashboard.Variant)),
		now:     time.Now,
	}, nil
}

// Variant returns the chart battery the service renders.
func (s *Service) Variant() charts.Variant {
	return s.variant
}

// Title returns the dashboard title.
func (s *Service) Title() string {
	return s.cfg.Dashboard.Title
}

// Upload parses data and makes it the session's dataset, replacing any
// previous upload.
func (s *Service) Upload(ctx context.Context, sessionID, fileName string, data []byte) (*DatasetSummary, error) {
	if len(data) == 0 && fileName == "" {
		return nil, ErrNoFile
	}
	if limit := s.cfg.Upload.MaxFileSize; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), limit)
	}

	logger := logging.WithFields(ctx, "file", fileName, "size_bytes", len(data))

	var ds *dataset.Dataset
	start := time.Now()
	err := s.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		ds, err = dataset.Load(ctx, fileName, data, dataset.LoadOptions{MaxRows: s.cfg.Upload.MaxRows})
		return err
	})
	if err != nil {
		logger.Warn("upload rejected", "error", err)
		return nil, fmt.Errorf("load %s: %w", fileName, err)
	}

	u := &store.Upload{
		ID:         uuid.New(),
		Name:       fileName,
		Data:       data,
		UploadedAt: s.now(),
	}
	if err := s.store.Put(ctx, sessionID, u); err != nil {
		return nil, err
	}
	s.cache.Add(sessionID, cachedDataset{uploadID: u.ID, ds: ds})

	entry := history.Entry{
		ID:         u.ID,
		SessionID:  sessionID,
		FileName:   fileName,
		Encoding:   string(ds.Encoding()),
		SizeBytes:  int64(len(data)),
		Rows:       ds.Rows(),
		Columns:    len(ds.Columns()),
		UploadedAt: u.UploadedAt,
	}
	if err := s.history.Record(ctx, entry); err != nil {
		logger.Error("failed to record upload history", "error", err)
	}

	logger.Info("dataset uploaded",
		"upload_id", u.ID,
		"encoding", ds.Encoding(),
		"rows", ds.Rows(),
		"columns", len(ds.Columns()),
		"duration_ms", time.Since(start).Milliseconds(),
		"ip", ClientIP(ctx),
	)

	return Summarize(ds, s.cfg.Upload.PreviewRows), nil
}

// Dataset returns the session's parsed dataset. The store lookup refreshes
// the session TTL; parsing is skipped when the cache holds the same upload.
func (s *Service) Dataset(ctx context.Context, sessionID string) (*dataset.Dataset, error) {
	if sessionID == "" {
		return nil, ErrNoDataset
	}

	u, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		s.cache.Remove(sessionID)
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, err
	}

	if c, ok := s.cache.Get(sessionID); ok && c.uploadID == u.ID {
		return c.ds, nil
	}

	var ds *dataset.Dataset
	err = s.limiter.Do(ctx, func(ctx context.Context) error {
		var err error
		ds, err = dataset.Load(ctx, u.Name, u.Data, dataset.LoadOptions{MaxRows: s.cfg.Upload.MaxRows})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reload %s: %w", u.Name, err)
	}

	s.cache.Add(sessionID, cachedDataset{uploadID: u.ID, ds: ds})
	logging.FromContext(ctx).Debug("dataset reparsed from session store", "upload_id", u.ID)
	return ds, nil
}

// Summary returns the preview summary of the session's dataset.
func (s *Service) Summary(ctx context.Context, sessionID string) (*DatasetSummary, error) {
	ds, err := s.Dataset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Summarize(ds, s.cfg.Upload.PreviewRows), nil
}

// Discard drops the session's dataset.
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return s.store.Delete(ctx, sessionID)
}

// History lists recent uploads across all sessions.
func (s *Service) History(ctx context.Context, limit int) ([]history.Entry, error) {
	return s.history.Recent(ctx, limit)
}

// UploadLimiterStatus returns the current parse slot usage.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight parses finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// CachedDatasets returns the number of parsed datasets held in memory.
func (s *Service) CachedDatasets() int {
	return s.cache.Len()
}
