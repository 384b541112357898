// Package output writes normalized tables to the files analysts work with
// and reads them back.
package output

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// WriteJSON writes all tables as one JSON array, in the order given
func WriteJSON(path string, tables []model.Table) error {
	if tables == nil {
		tables = []model.Table{}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create JSON file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tables); err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}

// ReadJSON reads a file written by WriteJSON
func ReadJSON(path string) ([]model.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read JSON file")
	}
	var tables []model.Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return tables, nil
}
