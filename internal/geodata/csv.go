package geodata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// WriteCSV encodes a slice of csv-tagged structs as a delimited table with
// a header row.
func WriteCSV(path string, rows any) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "geodata: encode CSV %s", path)
	}
	return writeAtomic(path, data)
}

// ReadCSV decodes a delimited table with a header row into a slice of
// csv-tagged structs.
func ReadCSV(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "geodata: read CSV %s", path)
	}
	if err := csvutil.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "geodata: decode CSV %s", path)
	}
	return nil
}

// WriteTable writes a delimited table with an explicit header. Used for
// outputs whose column names depend on runtime values, like the
// target-year-keyed demand summary.
func WriteTable(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "geodata: write CSV header %s", path)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "geodata: write CSV row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "geodata: flush CSV %s", path)
	}
	return writeAtomic(path, buf.Bytes())
}

// WriteJSON persists v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "geodata: encode JSON %s", path)
	}
	return writeAtomic(path, data)
}
