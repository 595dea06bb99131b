package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsync-dev/clinsync/internal/model"
)

func sampleDate() civil.Date { return civil.Date{Year: 2026, Month: 2, Day: 5} }

func sampleGroups() []model.DayGroup {
	return []model.DayGroup{
		{
			PatientID:   1,
			PatientName: "Ana",
			Date:        sampleDate(),
			Transactions: []model.EnrichedTransaction{
				{
					Transaction: model.Transaction{PatientID: 1, PatientName: "Ana", Date: sampleDate(), Value: decimal.NewFromInt(450)},
					Source:      model.SourceProposal,
					Items: []model.ClassifiedItem{
						{
							Name:        "Soroterapia",
							ProcedureID: 42,
							Value:       decimal.NewFromInt(300),
							Quantity:    1,
							Category:    model.CategorySerotherapy,
							Provenance:  model.ProvenanceID,
						},
						{
							Name:       "Ligação",
							Value:      decimal.NewFromInt(150),
							Quantity:   1,
							Category:   model.CategoryDiscard,
							Provenance: model.ProvenanceID,
						},
					},
				},
			},
		},
		{
			PatientID:   2,
			PatientName: "Bruno",
			Date:        sampleDate(),
			Transactions: []model.EnrichedTransaction{
				{
					Transaction: model.Transaction{PatientID: 2, PatientName: "Bruno", Date: sampleDate(), Value: decimal.NewFromInt(200)},
					Source:      model.SourcePaymentOnly,
					PaymentOnly: true,
				},
			},
		},
	}
}

func readSheet(t *testing.T, dir string, date civil.Date) [][]string {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "reconciliation-"+date.String()+".csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSpreadsheetWriterWritesDay(t *testing.T) {
	dir := t.TempDir()
	w := NewSpreadsheetWriter(dir)

	require.NoError(t, w.WriteDay(sampleDate(), sampleGroups()))

	rows := readSheet(t, dir, sampleDate())
	require.Len(t, rows, 3, "header + one item row + one payment-only row")
	assert.Equal(t, strings.Split(Header, ","), rows[0])

	item := rows[1]
	assert.Equal(t, "1", item[colPatientID])
	assert.Equal(t, "Ana", item[colPatient])
	assert.Equal(t, "2026-02-05", item[colDate])
	assert.Equal(t, "proposal", item[colSource])
	assert.Equal(t, "Soroterapia", item[colItem])
	assert.Equal(t, "42", item[colProcID])
	assert.Equal(t, "300.00", item[colValue])
	assert.Equal(t, "SEROTHERAPY", item[colCategory])
	assert.Equal(t, "id", item[colProv])
	assert.Empty(t, item[colLowConf])
}

func TestSpreadsheetWriterSkipsDiscardedItems(t *testing.T) {
	dir := t.TempDir()
	w := NewSpreadsheetWriter(dir)

	require.NoError(t, w.WriteDay(sampleDate(), sampleGroups()))

	rows := readSheet(t, dir, sampleDate())
	for _, row := range rows[1:] {
		assert.NotEqual(t, "Ligação", row[colItem])
		assert.NotEqual(t, string(model.CategoryDiscard), row[colCategory])
	}
}

func TestSpreadsheetWriterPaymentOnlyRow(t *testing.T) {
	dir := t.TempDir()
	w := NewSpreadsheetWriter(dir)

	require.NoError(t, w.WriteDay(sampleDate(), sampleGroups()))

	rows := readSheet(t, dir, sampleDate())
	row := rows[2]
	assert.Equal(t, "2", row[colPatientID])
	assert.Equal(t, "payment-only", row[colSource])
	assert.Equal(t, "200.00", row[colValue])
	assert.Empty(t, row[colItem])
	assert.Empty(t, row[colCategory])
}

func TestSpreadsheetWriterMarksLowConfidence(t *testing.T) {
	dir := t.TempDir()
	w := NewSpreadsheetWriter(dir)
	groups := []model.DayGroup{{
		PatientID:   3,
		PatientName: "Carla",
		Date:        sampleDate(),
		Transactions: []model.EnrichedTransaction{{
			Transaction: model.Transaction{PatientID: 3, PatientName: "Carla", Date: sampleDate(), Value: decimal.NewFromInt(100)},
			Source:      model.SourceReportDistributed,
			Items: []model.ClassifiedItem{{
				Name:          "Exame",
				Value:         decimal.NewFromInt(100),
				Quantity:      1,
				Category:      model.CategoryExams,
				Provenance:    model.ProvenanceName,
				LowConfidence: true,
			}},
		}},
	}}

	require.NoError(t, w.WriteDay(sampleDate(), groups))

	rows := readSheet(t, dir, sampleDate())
	require.Len(t, rows, 2)
	assert.Equal(t, "true", rows[1][colLowConf])
}

func TestSpreadsheetWriterCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	w := NewSpreadsheetWriter(dir)

	require.NoError(t, w.WriteDay(sampleDate(), nil))

	rows := readSheet(t, dir, sampleDate())
	require.Len(t, rows, 1, "header only for an empty day")
}
