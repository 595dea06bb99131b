// Package export renders processed days for the finance team: a per-date CSV
// sheet and a per-date JSON history file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// Header is the CSV header for a day's reconciliation sheet.
const Header = "patient_id,patient_name,date,source,item,procedure_id,value,quantity,discount,category,provenance,low_confidence"

const (
	numFields    = 12
	colPatientID = 0
	colPatient   = 1
	colDate      = 2
	colSource    = 3
	colItem      = 4
	colProcID    = 5
	colValue     = 6
	colQuantity  = 7
	colDiscount  = 8
	colCategory  = 9
	colProv      = 10
	colLowConf   = 11
)

// SpreadsheetWriter writes one CSV per processed date.
type SpreadsheetWriter struct {
	dir string
}

// NewSpreadsheetWriter creates a SpreadsheetWriter rooted at dir.
func NewSpreadsheetWriter(dir string) *SpreadsheetWriter {
	return &SpreadsheetWriter{dir: dir}
}

// WriteDay renders the day's groups to <dir>/reconciliation-<date>.csv.
// Discarded items are excluded; payment-only transactions appear as a single
// row without item detail.
func (w *SpreadsheetWriter) WriteDay(date civil.Date, groups []model.DayGroup) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("reconciliation-%s.csv", date))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	defer f.Close()

	if err := writeRows(f, groups); err != nil {
		return fmt.Errorf("writing sheet %s: %w", path, err)
	}
	return nil
}

func writeRows(w io.Writer, groups []model.DayGroup) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, group := range groups {
		for _, txn := range group.Transactions {
			if txn.PaymentOnly {
				if err := cw.Write(marshalPaymentOnly(txn)); err != nil {
					return err
				}
				continue
			}
			for _, item := range txn.Items {
				if item.Discarded() {
					continue
				}
				if err := cw.Write(marshalItem(txn, item)); err != nil {
					return err
				}
			}
		}
	}
	return cw.Error()
}

func marshalPaymentOnly(txn model.EnrichedTransaction) []string {
	row := make([]string, numFields)
	row[colPatientID] = strconv.Itoa(txn.PatientID)
	row[colPatient] = txn.PatientName
	row[colDate] = txn.Date.String()
	row[colSource] = string(txn.Source)
	row[colValue] = txn.Value.StringFixed(2)
	return row
}

func marshalItem(txn model.EnrichedTransaction, item model.ClassifiedItem) []string {
	row := make([]string, numFields)
	row[colPatientID] = strconv.Itoa(txn.PatientID)
	row[colPatient] = txn.PatientName
	row[colDate] = txn.Date.String()
	row[colSource] = string(txn.Source)
	row[colItem] = item.Name

	if item.ProcedureID != 0 {
		row[colProcID] = strconv.Itoa(item.ProcedureID)
	}

	row[colValue] = item.Value.StringFixed(2)
	row[colQuantity] = strconv.Itoa(item.Quantity)

	if !item.Discount.IsZero() {
		row[colDiscount] = item.Discount.StringFixed(2)
	}

	row[colCategory] = string(item.Category)
	row[colProv] = string(item.Provenance)

	if item.LowConfidence {
		row[colLowConf] = "true"
	}
	return row
}
