package httpadapter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avasilkov/secure-doc-portal/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportHistory renders a document's audit trail as an xlsx workbook for
// compliance reviews.
func (rt *Router) exportHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := rt.actor(w, r); !ok {
		return
	}

	documentID := r.PathValue("id")
	entries, err := rt.lifecycle.History(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	workbook, err := historyWorkbook(documentID, entries)
	if err != nil {
		writeError(w, err)
		return
	}
	defer workbook.Close()

	rt.metrics.RecordHistoryExport(serviceName)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", documentID+"_history.xlsx"))
	w.WriteHeader(http.StatusOK)
	if err := workbook.Write(w); err != nil {
		// Headers already sent; nothing left to do but log via access log status.
		return
	}
}

func historyWorkbook(documentID string, entries []domain.AuditEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "History"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Document ID", "From State", "To State", "Actor", "Role", "Comment", "Timestamp"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, entry := range entries {
		row := i + 2
		values := []any{
			documentID,
			string(entry.FromState),
			string(entry.ToState),
			entry.ActorID,
			string(entry.ActorRole),
			entry.Comment,
			entry.Timestamp.UTC().Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write audit row: %w", err)
			}
		}
	}

	return f, nil
}
