// Package importer parses the venue and personnel CSV files into typed rows.
// Parsing is complete before anything is written, so a bad row aborts the
// whole file.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mathmusci/optivenue/internal/entity"
)

const (
	ColLocationName      = "location_name"
	ColVenueName         = "venue_name"
	ColCapacity          = "capacity"
	ColPersonnelRequired = "personnel_required"
	ColOpenTime          = "open_time"
	ColCloseTime         = "close_time"

	ColMonth              = "month"
	ColAvailablePersonnel = "available_personnel"
)

type VenueRow struct {
	Line              int              `csv:"-"`
	LocationName      string           `csv:"location_name" validate:"required,max=255"`
	VenueName         string           `csv:"venue_name" validate:"required,max=255"`
	Capacity          int              `csv:"capacity" validate:"gte=0"`
	PersonnelRequired int              `csv:"personnel_required" validate:"gte=0"`
	OpenTime          entity.TimeOfDay `csv:"open_time"`
	CloseTime         entity.TimeOfDay `csv:"close_time"`
}

type PersonnelRow struct {
	Line               int    `csv:"-"`
	Month              string `csv:"month" validate:"required"`
	AvailablePersonnel int    `csv:"available_personnel" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("csv")
	})
	return v
}

// table is a header-addressed view over a CSV file.
type table struct {
	r       *csv.Reader
	columns map[string]int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &entity.ImportError{Err: errors.New("file is empty")}
	}
	if err != nil {
		return nil, csvError(err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, &entity.ImportError{Line: 1, Field: name, Err: errors.New("missing column")}
		}
	}
	return &table{r: cr, columns: columns}, nil
}

// row is one record plus its line in the file.
type row struct {
	line    int
	record  []string
	columns map[string]int
}

func (t *table) next() (*row, error) {
	record, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, csvError(err)
	}
	line, _ := t.r.FieldPos(0)
	return &row{line: line, record: record, columns: t.columns}, nil
}

func (r *row) get(column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *row) fail(field string, err error) error {
	return &entity.ImportError{Line: r.line, Field: field, Err: err}
}

func (r *row) integer(column string) (int, error) {
	s := r.get(column)
	if s == "" {
		return 0, r.fail(column, errors.New("value is required"))
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// spreadsheets export whole numbers as 12.0
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, r.fail(column, fmt.Errorf("%q is not an integer", s))
		}
		n = int(f)
	}
	return n, nil
}

func (r *row) timeOfDay(column string, fallback entity.TimeOfDay) (entity.TimeOfDay, error) {
	s := r.get(column)
	if s == "" {
		return fallback, nil
	}
	tod, err := entity.ParseTimeOfDay(s)
	if err != nil {
		return 0, r.fail(column, err)
	}
	return tod, nil
}

func (r *row) check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return r.fail(fe.Field(), fmt.Errorf("failed %q constraint", fe.Tag()))
	}
	return r.fail("", err)
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &entity.ImportError{Line: pe.Line, Err: pe.Err}
	}
	return &entity.ImportError{Err: err}
}

// ParseVenues reads location_name, venue_name, capacity, personnel_required
// and the optional open_time and close_time columns. Empty times default to
// 09:00 and 23:00.
func ParseVenues(r io.Reader) ([]VenueRow, error) {
	t, err := newTable(r, ColLocationName, ColVenueName, ColCapacity, ColPersonnelRequired)
	if err != nil {
		return nil, err
	}

	var rows []VenueRow
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		v := VenueRow{
			Line:         rec.line,
			LocationName: rec.get(ColLocationName),
			VenueName:    rec.get(ColVenueName),
		}
		if v.Capacity, err = rec.integer(ColCapacity); err != nil {
			return nil, err
		}
		if v.PersonnelRequired, err = rec.integer(ColPersonnelRequired); err != nil {
			return nil, err
		}
		if v.OpenTime, err = rec.timeOfDay(ColOpenTime, entity.DefaultOpenTime); err != nil {
			return nil, err
		}
		if v.CloseTime, err = rec.timeOfDay(ColCloseTime, entity.DefaultCloseTime); err != nil {
			return nil, err
		}
		if err := rec.check(v); err != nil {
			return nil, err
		}
		rows = append(rows, v)
	}
}

// ParsePersonnel reads month (YYYY-MM) and available_personnel.
func ParsePersonnel(r io.Reader) ([]PersonnelRow, error) {
	t, err := newTable(r, ColMonth, ColAvailablePersonnel)
	if err != nil {
		return nil, err
	}

	var rows []PersonnelRow
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		p := PersonnelRow{Line: rec.line}
		if raw := rec.get(ColMonth); raw != "" {
			if p.Month, err = entity.ParseMonth(raw); err != nil {
				return nil, rec.fail(ColMonth, err)
			}
		}
		if p.AvailablePersonnel, err = rec.integer(ColAvailablePersonnel); err != nil {
			return nil, err
		}
		if err := rec.check(p); err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
}

// Venue converts the row into an entity bound to locationID.
func (v VenueRow) Venue(locationID int64) *entity.Venue {
	return &entity.Venue{
		Name:              v.VenueName,
		Capacity:          v.Capacity,
		PersonnelRequired: v.PersonnelRequired,
		LocationID:        locationID,
		OpenTime:          v.OpenTime,
		CloseTime:         v.CloseTime,
	}
}

func (p PersonnelRow) Record() *entity.PersonnelAvailability {
	return &entity.PersonnelAvailability{Month: p.Month, AvailablePersonnel: p.AvailablePersonnel}
}
