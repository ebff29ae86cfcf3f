package importer

import (
	"strconv"
	"strings"
	"time"
)

// excelEpochOffset is the number of days between the spreadsheet serial
// epoch (1899-12-30) and the unix epoch.
const excelEpochOffset = 25569

// Spreadsheet column headers recognized in the legacy workbook.
const (
	colName        = "NAMA"
	colAddress     = "ALAMAT"
	colDate        = "TGL"
	colAge         = "UMUR"
	colTariff      = "TARIF"
	colCOGS        = "HPP"
	colCOGSAlt     = "RINCIAN OBAT"
	colDiagnosis   = "DIAGNOSA"
	colAction      = "TINDAKAN"
	colTherapy     = "TERAPI"
	colWeight      = "BB"
	colBP          = "TD"
	colPulse       = "N"
	colTemperature = "S"
	colSpO2        = "SPO"
	colStaff       = "PETUGAS"
)

// headerIndex maps normalized header names to their column positions.
// It reports false when the row is not the workbook's header row.
func headerIndex(cells []string) (map[string]int, bool) {
	idx := make(map[string]int, len(cells))
	for i, cell := range cells {
		name := strings.ToUpper(strings.TrimSpace(cell))
		if name == colCOGSAlt {
			name = colCOGS
		}
		if name != "" {
			idx[name] = i
		}
	}
	if _, ok := idx[colName]; !ok {
		return nil, false
	}
	return idx, true
}

func cellAt(cells []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// parseDate accepts spreadsheet serial numbers and slash- or dash-separated
// day/month/year strings. Anything else falls back to the import timestamp.
func parseDate(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		secs := int64((serial - excelEpochOffset) * 86400)
		return time.Unix(secs, 0).UTC()
	}
	raw = strings.ReplaceAll(raw, "-", "/")
	for _, layout := range []string{"2/1/2006", "02/01/2006", "2/1/06", "2006/01/02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

// parseMoney strips everything but digits from a currency cell
// ("Rp 50.000" becomes 50000).
func parseMoney(raw string) int64 {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// parseAge reads a whole-year age. Month-denominated ages like "3 BLN"
// round down to zero years.
func parseAge(raw string) int {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || strings.Contains(raw, "BLN") {
		return 0
	}
	digits := ""
	for _, r := range raw {
		if r < '0' || r > '9' {
			break
		}
		digits += string(r)
	}
	if digits == "" {
		return 0
	}
	n, _ := strconv.Atoi(digits)
	return n
}
