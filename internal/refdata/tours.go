package refdata

import "tennisetl/internal/match"

// TourColumns names the tournament dictionary's columns.
type TourColumns struct {
	ID      string
	Name    string
	Surface string // court-type ID, dereferenced through the courts Table
	Date    string
	Country string
}

// Tours resolves tournament IDs to match.TourInfo, dereferencing the
// court-surface ID through a separately loaded courts dictionary. The
// courts Table must be loaded before Tours.Load runs.
type Tours struct {
	path   string
	cols   TourColumns
	courts *Table

	Encoding string
	Logger   Logger

	infos map[string]match.TourInfo
}

// NewTours prepares a provider over the tours file at path. courts is the
// loaded court-type dictionary.
func NewTours(path string, cols TourColumns, courts *Table) *Tours {
	return &Tours{path: path, cols: cols, courts: courts}
}

// Load reads the dictionary and builds the TourInfo records. A surface ID
// with no courts entry leaves that tournament's surface empty (logged);
// matches played there fail validity later and are skipped individually
// rather than failing the load.
func (t *Tours) Load() error {
	rows, err := loadColumns(t.path, t.cols.ID,
		[]string{t.cols.Name, t.cols.Surface, t.cols.Date, t.cols.Country}, t.Encoding)
	if err != nil {
		return err
	}

	t.infos = make(map[string]match.TourInfo, len(rows))
	for id, vals := range rows {
		name, surfaceID, date, country := vals[0], vals[1], vals[2], vals[3]
		surface, err := t.courts.Resolve(surfaceID)
		if err != nil {
			t.logf("WARN: cannot dereference court %q for tournament %s (%s): %v",
				surfaceID, id, name, err)
			surface = ""
		}
		t.infos[id] = match.TourInfo{
			ID:      id,
			Name:    name,
			Surface: surface,
			Date:    date,
			Country: country,
		}
	}
	t.logf("refdata: loaded %d tournaments from %s", len(t.infos), t.path)
	return nil
}

// TourInfo resolves a tournament ID.
func (t *Tours) TourInfo(id string) (match.TourInfo, error) {
	info, ok := t.infos[id]
	if !ok {
		return match.TourInfo{}, &NotFoundError{File: t.path, ID: id}
	}
	return info, nil
}

// Len reports the number of loaded tournament records.
func (t *Tours) Len() int { return len(t.infos) }

func (t *Tours) logf(format string, v ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, v...)
	}
}
