package trackio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// ReadOrigin returns the UTM origin (xUtmOrigin, yUtmOrigin) from the first
// data row of a recording meta CSV.
func ReadOrigin(r io.Reader) (orb.Point, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return orb.Point{}, fmt.Errorf("failed to read recording meta: %w", err)
	}
	if len(records) < 2 {
		return orb.Point{}, fmt.Errorf("insufficient data in recording meta")
	}

	col, err := columnIndex(records[0], []string{"xUtmOrigin", "yUtmOrigin"})
	if err != nil {
		return orb.Point{}, err
	}
	row := records[1]

	var origin orb.Point
	for i, name := range []string{"xUtmOrigin", "yUtmOrigin"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col[name]]), 64)
		if err != nil {
			return orb.Point{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		origin[i] = v
	}
	return origin, nil
}

// LoadOrigin reads the origin from a recording meta CSV file.
func LoadOrigin(path string) (orb.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return orb.Point{}, fmt.Errorf("failed to open recording meta: %w", err)
	}
	defer f.Close()
	return ReadOrigin(f)
}
