package ingest

import (
	"bufio"
	"io"
	"strings"
)

// ReadTable reads a delimited table: one header line naming the columns,
// then one row per line. Fields are split on bare commas with no quoting or
// escaping, matching the legacy export format exactly. Rows shorter than the
// header leave the trailing columns absent; extra fields are ignored.
func ReadTable(r io.Reader) ([]map[string]string, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	var rows []map[string]string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if header == nil {
			header = strings.Split(line, ",")
			for i := range header {
				header[i] = strings.TrimSpace(header[i])
			}
			continue
		}

		values := strings.Split(line, ",")
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i >= len(values) {
				break
			}
			row[name] = strings.TrimSpace(values[i])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
