package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"ads-insights-go/internal/logger"
	"ads-insights-go/internal/types"
)

const dateLayout = "2006-01-02"

var requiredColumns = []string{
	"date", "campaign_name", "audience_type",
	"spend", "impressions", "clicks", "purchases", "revenue",
}

// Load reads the ads performance file and returns normalized records.
// Both CSV and Excel sources are supported, chosen by extension. A missing
// or unreadable file is an error; malformed numeric cells inside a row
// coerce to 0 instead of failing the row.
func Load(path string) ([]types.AdRecord, error) {
	log := logger.New().WithField("component", "dataset.loader").WithField("path", path)

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcel(path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		log.WithError(err).Error("dataset load failed")
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	idx, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]types.AdRecord, 0, len(rows)-1)
	skipped := 0
	for _, r := range rows[1:] {
		d, err := time.Parse(dateLayout, strings.TrimSpace(cell(r, idx["date"])))
		if err != nil {
			skipped++
			continue
		}
		rec := types.AdRecord{
			Date:            d,
			CampaignName:    strings.TrimSpace(cell(r, idx["campaign_name"])),
			AudienceType:    strings.TrimSpace(cell(r, idx["audience_type"])),
			Spend:           num(cell(r, idx["spend"])),
			Impressions:     num(cell(r, idx["impressions"])),
			Clicks:          num(cell(r, idx["clicks"])),
			Purchases:       num(cell(r, idx["purchases"])),
			Revenue:         num(cell(r, idx["revenue"])),
			CreativeMessage: strings.TrimSpace(cell(r, idx["creative_message"])),
		}
		// Rates are always derived here; the source file's roas/ctr
		// columns, if present, are ignored.
		if rec.Spend > 0 {
			rec.ROAS = rec.Revenue / rec.Spend
		}
		if rec.Impressions > 0 {
			rec.CTR = rec.Clicks / rec.Impressions
		}
		out = append(out, rec)
	}
	log.WithField("rows", len(out)).WithField("skipped", skipped).Info("dataset loaded")
	return out, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

// columnIndex maps lowercased header names to positions. The required
// columns must all be present; creative_message is optional (-1 if absent).
func columnIndex(header []string) (map[string]int, error) {
	idx := map[string]int{"creative_message": -1}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// num coerces a raw cell to float64; anything non-numeric becomes 0.
func num(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
