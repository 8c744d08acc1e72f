// Package collector orchestrates merchant capture: it drives an Android
// device through a map app's search results, runs the extraction packages
// over each screen and persists the records it trusts.
//
// The extraction itself is stateless and lives in classify, cards and
// detail; this package owns the device loop, the store and the MCP and
// HTTP surfaces built on top of both.
package collector

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/mapsieve/cards"
	"github.com/hazyhaar/mapsieve/classify"
	"github.com/hazyhaar/mapsieve/collector/internal/store"
	"github.com/hazyhaar/mapsieve/detail"
	"github.com/hazyhaar/mapsieve/device"
	"github.com/hazyhaar/mapsieve/idgen"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// Merchant is one captured business listing. Re-exported from the store.
type Merchant = store.Merchant

// Run is the bookkeeping row for one collection session.
type Run = store.Run

// Service ties the extraction packages to a device and a store.
type Service struct {
	store  *store.Store
	device device.Controller
	cfg    *Config
	logger *slog.Logger
	newID  func() string
}

// New wires a Service. The controller may be nil for analyze-only use;
// Collect then fails with ErrNoDevice. A nil cfg uses defaults.
func New(st *store.Store, ctrl device.Controller, cfg *Config, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Classify.Logger == nil {
		cfg.Classify.Logger = logger
	}
	if cfg.Cards.Logger == nil {
		cfg.Cards.Logger = logger
	}
	if cfg.Detail.Logger == nil {
		cfg.Detail.Logger = logger
	}
	return &Service{
		store:  st,
		device: ctrl,
		cfg:    cfg,
		logger: logger,
		newID:  idgen.New,
	}
}

// Close releases the store.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// DetailResult pairs the screen verdict with the extracted record.
type DetailResult struct {
	Verdict classify.DetailVerdict `json:"verdict"`
	Record  detail.Record          `json:"record"`
	Usable  bool                   `json:"usable"`
}

// ClassifyPage parses a raw uiautomator dump and classifies the screen.
func (s *Service) ClassifyPage(dump []byte) (classify.PageVerdict, error) {
	snap, err := snapshot.ParseBytes(dump)
	if err != nil {
		return classify.PageVerdict{}, err
	}
	return classify.Page(snap.Root, snap.Screen, s.cfg.Classify), nil
}

// LocateCards parses a dump and returns tappable listing candidates.
func (s *Service) LocateCards(dump []byte) ([]cards.Candidate, error) {
	snap, err := snapshot.ParseBytes(dump)
	if err != nil {
		return nil, err
	}
	return cards.Locate(snap.Root, snap.Screen, s.cfg.Cards), nil
}

// ExtractDetail parses a dump, verifies it is a detail screen and extracts
// the merchant record. expectedName, when non-empty, is fuzzily checked
// against the screen.
func (s *Service) ExtractDetail(dump []byte, expectedName string) (*DetailResult, error) {
	snap, err := snapshot.ParseBytes(dump)
	if err != nil {
		return nil, err
	}
	verdict := classify.VerifyDetail(snap.Root, snap.Screen, expectedName, s.cfg.Classify)
	rec := detail.Extract(snap.Root, snap.Screen, s.cfg.Detail)
	return &DetailResult{
		Verdict: verdict,
		Record:  rec,
		Usable:  rec.Usable(),
	}, nil
}

// GetMerchant retrieves a stored merchant. Returns nil, nil when unknown.
func (s *Service) GetMerchant(ctx context.Context, id string) (*Merchant, error) {
	return s.store.GetMerchant(ctx, id)
}

// ListMerchants returns stored merchants newest first.
func (s *Service) ListMerchants(ctx context.Context, limit, offset int) ([]*Merchant, error) {
	return s.store.ListMerchants(ctx, limit, offset)
}

// CountMerchants returns the total number of stored merchants.
func (s *Service) CountMerchants(ctx context.Context) (int, error) {
	return s.store.CountMerchants(ctx)
}

// ListRuns returns collection runs newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	return s.store.ListRuns(ctx, limit)
}
