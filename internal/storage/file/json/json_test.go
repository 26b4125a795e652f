package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakos74/tradescore/internal/model"
	"github.com/drakos74/tradescore/internal/storage"
)

func TestBlobStorage_StoreAndLoad(t *testing.T) {
	root := t.TempDir()
	s := NewJsonBlob("backtest", "run-1", true).WithRoot(root)

	k := storage.Key{Run: "r1", Kind: "decisions", Label: "v2_1"}
	decisions := []model.Decision{
		{Instrument: "7203", Version: "v2_1", Action: model.Buy, TotalScore: 35, Rationale: []model.Reason{{Factor: model.RSI, Delta: 35, Text: "RSI 25"}}},
		{Instrument: "6758", Version: "v2_1", Action: model.Sell, TotalScore: -25},
	}
	require.NoError(t, s.Store(k, decisions))

	_, err := os.Stat(filepath.Join(root, "backtest", "run-1", "r1", "decisions_v2_1.json"))
	require.NoError(t, err)

	loaded := make([]model.Decision, 0)
	require.NoError(t, s.Load(k, &loaded))
	assert.Equal(t, decisions[0].Action, loaded[0].Action)
	assert.Equal(t, decisions[0].Rationale, loaded[0].Rationale)
	assert.Equal(t, decisions[1].TotalScore, loaded[1].TotalScore)
}

func TestLoad_Errors(t *testing.T) {
	root := t.TempDir()
	err := Load(root, "missing", &struct{}{})
	assert.ErrorIs(t, err, storage.NotFoundErr)

	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.json"), []byte("{"), 0o644))
	err = Load(root, "broken", &struct{}{})
	assert.ErrorIs(t, err, storage.CouldNotLoadErr)
}
