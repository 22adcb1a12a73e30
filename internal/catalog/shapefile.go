package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/ngmaloney/surf-spotter/internal/models"
)

// DBF attribute columns of a spot shapefile. Names are limited to 10 chars.
var shapeFields = []shp.Field{
	shp.StringField("NAME", 80),
	shp.StringField("CITY", 80),
	shp.StringField("SOURCE_ID", 120),
	shp.StringField("TYPE", 20),
	shp.StringField("ORIENT", 4),
	shp.StringField("SEASON", 40),
	shp.FloatField("SWELL_MIN", 8, 2),
	shp.FloatField("SWELL_MAX", 8, 2),
	shp.StringField("SWELL_DIR", 4),
	shp.FloatField("SWELL_Q", 6, 3),
	shp.StringField("WIND_DIRS", 80),
	shp.FloatField("WIND_Q", 6, 3),
	shp.StringField("TIDE", 120),
}

// ReadShapefile reads spots from a point shapefile. Coordinates come from the
// geometry (X = longitude, Y = latitude), the profile from DBF attributes.
func ReadShapefile(path string) ([]models.SpotProfile, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	// Map attribute names to their column
	cols := make(map[string]int)
	for i, f := range shape.Fields() {
		cols[strings.ToUpper(f.String())] = i
	}
	if _, ok := cols["NAME"]; !ok {
		return nil, fmt.Errorf("shapefile %s has no NAME attribute", path)
	}
	attr := func(row int, name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		// unwritten bytes of a record are NUL
		return strings.Trim(shape.ReadAttribute(row, i), " \x00")
	}

	var spots []models.SpotProfile
	for shape.Next() {
		n, p := shape.Shape()

		var loc *models.Location
		switch pt := p.(type) {
		case *shp.Point:
			loc = &models.Location{Latitude: pt.Y, Longitude: pt.X}
		case *shp.PointZ:
			loc = &models.Location{Latitude: pt.Y, Longitude: pt.X}
		default:
			return nil, fmt.Errorf("record %d: want point geometry, got %T", n, p)
		}

		s := models.SpotProfile{
			Name:             attr(n, "NAME"),
			City:             attr(n, "CITY"),
			Location:         loc,
			ForecastSourceID: attr(n, "SOURCE_ID"),
			Type:             attr(n, "TYPE"),
			Orientation:      attr(n, "ORIENT"),
			BestSeason:       attr(n, "SEASON"),
			SwellCompat: models.SwellCompat{
				IdealSizeRangeM: models.SizeRange{Min: number(attr(n, "SWELL_MIN")), Max: number(attr(n, "SWELL_MAX"))},
				IdealDirection:  attr(n, "SWELL_DIR"),
				Quality:         number(attr(n, "SWELL_Q")),
			},
			WindCompat: models.WindCompat{
				BestDirection: splitList(attr(n, "WIND_DIRS")),
				Quality:       number(attr(n, "WIND_Q")),
			},
		}
		tide, err := parseTide(attr(n, "TIDE"))
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", n, s.Name, err)
		}
		s.TideBehavior = tide

		normalize(&s)
		spots = append(spots, s)
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile: %w", err)
	}
	return spots, nil
}

// WriteShapefile exports spots with coordinates as a point shapefile
func WriteShapefile(path string, spots []models.SpotProfile) (int, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	w, err := shp.Create(base+".shp", shp.POINT)
	if err != nil {
		return 0, fmt.Errorf("creating shapefile: %w", err)
	}

	written, err := writeSpots(w, spots)
	w.Close()
	if err != nil {
		return written, err
	}

	// go-shp v0.1.1 names the attribute table "<base>dbf"
	if _, statErr := os.Stat(base + "dbf"); statErr == nil {
		if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
			return written, fmt.Errorf("renaming attribute table: %w", err)
		}
	}
	return written, nil
}

func writeSpots(w *shp.Writer, spots []models.SpotProfile) (int, error) {
	if err := w.SetFields(shapeFields); err != nil {
		return 0, fmt.Errorf("setting fields: %w", err)
	}

	written := 0
	for _, s := range spots {
		if s.Location == nil {
			continue
		}
		row := int(w.Write(&shp.Point{X: s.Location.Longitude, Y: s.Location.Latitude}))
		values := []any{
			s.Name, s.City, s.ForecastSourceID, s.Type, s.Orientation, s.BestSeason,
			s.SwellCompat.IdealSizeRangeM.Min, s.SwellCompat.IdealSizeRangeM.Max,
			s.SwellCompat.IdealDirection, s.SwellCompat.Quality,
			strings.Join(s.WindCompat.BestDirection, ","), s.WindCompat.Quality,
			formatTide(s.TideBehavior),
		}
		for field, v := range values {
			if err := w.WriteAttribute(row, field, v); err != nil {
				return written, fmt.Errorf("writing %s: %w", s.Name, err)
			}
		}
		written++
	}
	return written, nil
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// parseTide reads "low:0.9,rising:0.7" pairs
func parseTide(s string) (models.TideBehavior, error) {
	tb := make(models.TideBehavior)
	for _, pair := range splitList(s) {
		state, q, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("tide entry %q: want state:quality", pair)
		}
		ts, ok := models.ParseTideState(state)
		if !ok {
			return nil, fmt.Errorf("tide entry %q: unknown state", pair)
		}
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			return nil, fmt.Errorf("tide entry %q: %w", pair, err)
		}
		tb[ts] = v
	}
	return tb, nil
}

func formatTide(tb models.TideBehavior) string {
	parts := make([]string, 0, len(tb))
	for _, st := range models.TideStates {
		if q, ok := tb[st]; ok {
			parts = append(parts, fmt.Sprintf("%s:%s", st, strconv.FormatFloat(q, 'f', -1, 64)))
		}
	}
	return strings.Join(parts, ",")
}
