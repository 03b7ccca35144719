package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var pointHeader = []string{"x", "y"}

// ReadCSV reads "x,y" rows. A leading header row is skipped if its first
// field is not a number.
func ReadCSV(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []Point
	for first := true; ; first = false {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading points: %w", err)
		}

		x, errX := strconv.ParseFloat(record[0], 64)
		y, errY := strconv.ParseFloat(record[1], 64)
		if first && errX != nil {
			continue
		}
		if errX != nil || errY != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("error parsing point on line %d: %w", line, errors.Join(errX, errY))
		}
		points = append(points, Point{X: x, Y: y})
	}
	return points, nil
}

// WriteCSV writes points as "x,y" rows under a header.
func WriteCSV(w io.Writer, points []Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(pointHeader); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{formatFloat(p.X), formatFloat(p.Y)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResults writes one "x,interpolated,reference" row per query. ref may
// be nil, in which case the reference column is left out.
func WriteResults(w io.Writer, xs, ys, ref []float64) error {
	if len(xs) != len(ys) || (ref != nil && len(ref) != len(xs)) {
		return fmt.Errorf("column lengths differ: %d, %d, %d", len(xs), len(ys), len(ref))
	}

	cw := csv.NewWriter(w)
	header := []string{"x", "interpolated"}
	if ref != nil {
		header = append(header, "reference")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i := range xs {
		row[0], row[1] = formatFloat(xs[i]), formatFloat(ys[i])
		if ref != nil {
			row[2] = formatFloat(ref[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
