package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/mapsieve/cards"
	"github.com/hazyhaar/mapsieve/classify"
	"github.com/hazyhaar/mapsieve/collector/internal/store"
	"github.com/hazyhaar/mapsieve/detail"
	"github.com/hazyhaar/mapsieve/device"
	"github.com/hazyhaar/mapsieve/idgen"
	"github.com/hazyhaar/mapsieve/match"
	"github.com/hazyhaar/mapsieve/snapshot"
)

// runLabel names unlabeled runs; timestamped so adjacent runs sort.
var runLabel = idgen.Timestamped(idgen.NanoID(6))

// Collect walks the current search results screen card by card: tap,
// verify, extract, persist, back. It stops once the configured number of
// merchants is saved, no unvisited cards remain, or ctx is cancelled.
// The returned run reflects what was persisted, also on error.
func (s *Service) Collect(ctx context.Context, label string) (*Run, error) {
	if s.device == nil {
		return nil, ErrNoDevice
	}
	if label == "" {
		label = runLabel()
	}
	run := &store.Run{ID: s.newID(), Label: label}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	s.logger.Info("run started", "run_id", run.ID, "label", run.Label)

	err := s.collect(ctx, run)
	switch {
	case err == nil:
		run.Status = "done"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		run.Status = "cancelled"
		run.Error = err.Error()
	default:
		run.Status = "failed"
		run.Error = err.Error()
	}

	// The loop context may already be cancelled; the final write gets
	// its own deadline.
	finCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ferr := s.store.FinishRun(finCtx, run); ferr != nil {
		s.logger.Error("finish run", "run_id", run.ID, "error", ferr)
	}
	s.logger.Info("run finished", "run_id", run.ID, "status", run.Status,
		"pages", run.PagesSeen, "cards", run.CardsSeen, "saved", run.MerchantsSaved)
	return run, err
}

func (s *Service) collect(ctx context.Context, run *store.Run) error {
	screen, err := s.device.ScreenSize(ctx)
	if err != nil {
		return fmt.Errorf("screen size: %w", err)
	}

	var seen []string // names saved or skipped this run
	observed := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		snap, err := s.dump(ctx)
		if err != nil {
			return err
		}
		sc := screenOf(snap, screen)
		run.PagesSeen++

		verdict := classify.Page(snap.Root, sc, s.cfg.Classify)
		if verdict.PageType != classify.PageSearchResults {
			if run.PagesSeen == 1 {
				return fmt.Errorf("%w: classified as %s", ErrNotSearchResults, verdict.PageType)
			}
			s.logger.Warn("screen drifted away from results, stopping",
				"page_type", verdict.PageType)
			return nil
		}

		cands := cards.Locate(snap.Root, sc, s.cfg.Cards)
		for _, c := range cands {
			if !observed[c.Name] {
				observed[c.Name] = true
				run.CardsSeen++
			}
		}

		next, ok := s.pickNext(cands, &seen)
		if !ok {
			s.logger.Info("no unvisited cards left", "cards_on_screen", len(cands))
			return nil
		}
		seen = append(seen, next.Name)

		saved, err := s.visit(ctx, run, sc, next)
		if err != nil {
			return err
		}
		if saved {
			run.MerchantsSaved++
			if run.MerchantsSaved >= s.cfg.Collect.MaxMerchants {
				s.logger.Info("merchant cap reached", "max", s.cfg.Collect.MaxMerchants)
				return nil
			}
		}
	}
}

// pickNext returns the first unvisited candidate worth tapping.
// Low-confidence candidates are marked visited so the loop cannot spin
// on them.
func (s *Service) pickNext(cands []cards.Candidate, seen *[]string) (cards.Candidate, bool) {
	for _, c := range cands {
		if visited(*seen, c.Name) {
			continue
		}
		if c.Confidence < s.cfg.Collect.MinConfidence {
			s.logger.Info("skipping low-confidence card",
				"name", c.Name, "confidence", c.Confidence)
			*seen = append(*seen, c.Name)
			continue
		}
		return c, true
	}
	return cards.Candidate{}, false
}

func visited(seen []string, name string) bool {
	for _, v := range seen {
		if match.NameSimilar(v, name) {
			return true
		}
	}
	return false
}

// visit taps one card, extracts the detail screen behind it and returns
// to the results list.
func (s *Service) visit(ctx context.Context, run *store.Run, screen snapshot.ScreenContext, cand cards.Candidate) (bool, error) {
	log := s.logger.With("name", cand.Name, "run_id", run.ID)
	log.Debug("visiting card",
		"tap_x", cand.TapPoint.X, "tap_y", cand.TapPoint.Y, "confidence", cand.Confidence)

	if err := s.device.Tap(ctx, cand.TapPoint.X, cand.TapPoint.Y); err != nil {
		return false, fmt.Errorf("tap: %w", err)
	}
	if err := s.settle(ctx); err != nil {
		return false, err
	}

	saved, err := s.extractCurrent(ctx, run, screen, cand, log)
	if err != nil {
		return false, err
	}

	if err := s.device.Back(ctx); err != nil {
		return saved, fmt.Errorf("back: %w", err)
	}
	if err := s.settle(ctx); err != nil {
		return saved, err
	}
	return saved, nil
}

func (s *Service) extractCurrent(ctx context.Context, run *store.Run, screen snapshot.ScreenContext, cand cards.Candidate, log *slog.Logger) (bool, error) {
	snap, err := s.dump(ctx)
	if err != nil {
		return false, err
	}
	sc := screenOf(snap, screen)

	verdict := classify.VerifyDetail(snap.Root, sc, cand.Name, s.cfg.Classify)
	if !verdict.IsDetailPage {
		log.Warn("tap did not land on a detail screen")
		return false, nil
	}
	if verdict.NameChecked && !verdict.NameMatched {
		log.Warn("detail screen shows a different name")
	}

	rec := detail.Extract(snap.Root, sc, s.cfg.Detail)
	if !rec.Usable() {
		log.Info("record not usable, skipping",
			"phones", len(rec.Phones), "address", rec.Address)
		return false, nil
	}

	name := rec.Name
	if name == "" {
		name = cand.Name
	}
	m := &store.Merchant{
		ID:         s.newID(),
		RunID:      run.ID,
		Name:       name,
		Phones:     rec.Phones,
		Address:    rec.Address,
		Hours:      rec.Hours,
		Rating:     rec.Rating,
		RawText:    rec.RawText,
		Confidence: cand.Confidence,
	}
	if err := s.store.InsertMerchant(ctx, m); err != nil {
		if errors.Is(err, store.ErrDuplicateMerchant) {
			log.Info("already recorded")
			return false, nil
		}
		return false, fmt.Errorf("insert merchant: %w", err)
	}
	log.Info("merchant saved",
		"merchant_id", m.ID, "phones", len(m.Phones), "rating", m.Rating)
	return true, nil
}

// dump captures and parses the current screen, retrying once when
// uiautomator reports no hierarchy.
func (s *Service) dump(ctx context.Context) (*snapshot.Snapshot, error) {
	raw, err := s.device.DumpHierarchy(ctx)
	if errors.Is(err, device.ErrNoHierarchy) {
		if werr := s.settle(ctx); werr != nil {
			return nil, werr
		}
		raw, err = s.device.DumpHierarchy(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("dump hierarchy: %w", err)
	}
	snap, err := snapshot.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("parse dump: %w", err)
	}
	return snap, nil
}

// settle waits for the UI to come to rest after an input event.
func (s *Service) settle(ctx context.Context) error {
	t := time.NewTimer(s.cfg.Collect.Settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// screenOf prefers the dump's own dimensions over the wm size fallback;
// flaky dumps can carry a zero root.
func screenOf(snap *snapshot.Snapshot, fallback snapshot.ScreenContext) snapshot.ScreenContext {
	if snap.Screen.Width > 0 && snap.Screen.Height > 0 {
		return snap.Screen
	}
	return fallback
}
