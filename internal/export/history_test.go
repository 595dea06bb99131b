package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsync-dev/clinsync/internal/model"
)

func TestHistoryWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewHistoryWriter(dir, "run-123")

	require.NoError(t, w.WriteDay(sampleDate(), sampleGroups()))

	file, err := ReadHistory(dir, sampleDate())
	require.NoError(t, err)
	assert.Equal(t, "run-123", file.RunID)
	assert.Equal(t, sampleDate(), file.Date)
	assert.False(t, file.GeneratedAt.IsZero())
	require.Len(t, file.Groups, 2)
	assert.Equal(t, "Ana", file.Groups[0].PatientName)
	require.Len(t, file.Groups[0].Transactions, 1)
	txn := file.Groups[0].Transactions[0]
	assert.Equal(t, model.SourceProposal, txn.Source)
	require.Len(t, txn.Items, 2)
	assert.True(t, txn.Items[0].Value.Equal(decimal.NewFromInt(300)))
}

func TestHistoryWriterReplacesEarlierRun(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, NewHistoryWriter(dir, "run-1").WriteDay(sampleDate(), sampleGroups()))
	require.NoError(t, NewHistoryWriter(dir, "run-2").WriteDay(sampleDate(), nil))

	file, err := ReadHistory(dir, sampleDate())
	require.NoError(t, err)
	assert.Equal(t, "run-2", file.RunID)
	assert.Empty(t, file.Groups)
}

func TestReadHistoryMissing(t *testing.T) {
	_, err := ReadHistory(t.TempDir(), sampleDate())
	require.Error(t, err)
}

func TestHistoryWriterCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewHistoryWriter(dir, "run-1")

	require.NoError(t, w.WriteDay(sampleDate(), nil))

	_, err := os.Stat(filepath.Join(dir, "history-2026-02-05.json"))
	require.NoError(t, err)
}
