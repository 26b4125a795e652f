package backtest

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/drakos74/tradescore/internal/model"
	"github.com/drakos74/tradescore/internal/storage"
)

const (
	decisionsKind   = "decisions"
	simulationsKind = "simulations"
	tiersKind       = "tiers"
	exitsKind       = "exits"
	exclusionsKind  = "exclusions"
)

// ByVersion groups the decisions by rule set version, keeping the evaluation order.
func (r Report) ByVersion() ([]string, map[string][]model.Decision) {
	versions := make([]string, 0)
	groups := make(map[string][]model.Decision)
	for _, d := range r.Decisions {
		if _, ok := groups[d.Version]; !ok {
			versions = append(versions, d.Version)
		}
		groups[d.Version] = append(groups[d.Version], d)
	}
	return versions, groups
}

// Store hands every output of the report to the given persistence.
func (r Report) Store(p storage.Persistence) error {
	versions, groups := r.ByVersion()
	for _, v := range versions {
		if err := p.Store(storage.Key{Run: r.RunID, Kind: decisionsKind, Label: v}, groups[v]); err != nil {
			return fmt.Errorf("could not store decisions of '%s': %w", v, err)
		}
	}
	outputs := []struct {
		kind  string
		value interface{}
	}{
		{kind: simulationsKind, value: r.Simulations},
		{kind: tiersKind, value: r.Tiers},
		{kind: exitsKind, value: r.Exits},
		{kind: exclusionsKind, value: r.Exclusions},
	}
	for _, o := range outputs {
		if err := p.Store(storage.Key{Run: r.RunID, Kind: o.kind}, o.value); err != nil {
			return fmt.Errorf("could not store %s: %w", o.kind, err)
		}
	}
	log.Info().Str("run", r.RunID).Int("versions", len(versions)).Msg("stored report")
	return nil
}
