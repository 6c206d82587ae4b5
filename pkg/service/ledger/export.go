package ledger

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/money"
	"github.com/google/uuid"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportTransactions renders the filtered journal as CSV or JSON. Pure
// read-side projection, no balance side effects. Each record carries the
// minor-unit amount and its major-unit rendering side by side.
func (s *Service) ExportTransactions(
	ctx context.Context,
	tenantID uuid.UUID,
	filter dto.TransactionFilter,
	format string,
) ([]byte, string, error) {
	reads, err := s.ListTransactions(ctx, tenantID, filter)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(reads, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	case FormatCSV, "":
		data, err := renderCSV(reads)
		if err != nil {
			return nil, "", err
		}
		return data, "text/csv", nil
	default:
		return nil, "", fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, format)
	}
}

func renderCSV(reads []dto.TransactionRead) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	header := []string{
		"id", "account_id", "category_id", "kind", "role",
		"amount_minor", "amount_major", "currency", "value_date", "note",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range reads {
		categoryID := ""
		if r.CategoryID != nil {
			categoryID = r.CategoryID.String()
		}
		major := money.FromData(r.Amount, r.Currency).AmountFloat()
		record := []string{
			r.ID.String(),
			r.AccountID.String(),
			categoryID,
			r.Kind,
			r.Role,
			strconv.FormatInt(r.Amount, 10),
			strconv.FormatFloat(major, 'f', -1, 64),
			r.Currency,
			r.ValueDate.Format(time.DateOnly),
			r.Note,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
