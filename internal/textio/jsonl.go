package textio

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
)

// Record is one document in a JSONL batch file.
type Record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// LoadJSONL loads records from a JSONL file. Malformed lines are logged and
// skipped; records without an id get "line-N".
func LoadJSONL(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read file %s: %v", internalerr.ErrIO, path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", internalerr.ErrEncoding, path)
	}

	var records []Record
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("line-%d", i+1)
		}
		records = append(records, rec)
	}

	return records, nil
}

// AppendJSONL writes one record as a JSON line.
func AppendJSONL(f *os.File, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("%w: write %s: %v", internalerr.ErrIO, f.Name(), err)
	}
	return nil
}
