package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// JSONProvider loads programs from a UTF-8 JSON array on disk. Catalog
// exports from legacy systems occasionally double-encode accented
// characters through cp1252/latin1; repairEncoding reverses that before
// parsing so "Étudiant" doesn't survive as "Ã‰tudiant" into the model.
type JSONProvider struct {
	Path      string
	WeekStart time.Time
}

// NewJSONProvider constructs a JSONProvider for the given path and target
// week.
func NewJSONProvider(path string, weekStart time.Time) *JSONProvider {
	return &JSONProvider{Path: path, WeekStart: weekStart}
}

// Load reads and parses the catalog file.
func (p *JSONProvider) Load() ([]Program, time.Time, error) {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: read %s: %w", p.Path, err)
	}

	raw = repairEncoding(raw)

	var programs []Program
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&programs); err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: parse %s: %w", p.Path, err)
	}

	for i, prog := range programs {
		if prog.ID == "" {
			return nil, time.Time{}, fmt.Errorf("catalog: program at index %d missing required field %q", i, "id")
		}
	}

	return programs, p.WeekStart, nil
}

// repairEncoding detects the double-encoding pattern (valid UTF-8 bytes
// that are themselves the cp1252 encoding of an earlier UTF-8 string) and
// reverses it. If the input is not double-encoded, it is returned
// unmodified; re-encoding is a one-shot best-effort pass and never fails
// the load.
func repairEncoding(data []byte) []byte {
	if !utf8.Valid(data) {
		return data
	}
	if !looksDoubleEncoded(data) {
		return data
	}

	// Re-encode the mangled runes back to single cp1252 bytes, then read
	// that byte stream as UTF-8.
	encoder := charmap.Windows1252.NewEncoder()
	repaired, err := encoder.Bytes(data)
	if err != nil {
		return data
	}
	if !utf8.Valid(repaired) {
		return data
	}
	return repaired
}

// looksDoubleEncoded is a cheap heuristic: it counts 0xC3 or 0xC2 bytes
// followed by any byte >= 0x80, as in the classic cp1252-over-UTF-8
// mangling (e.g. "Ã©" for "é"). Correctly encoded accents match too ("é"
// is C3 A9), so a true result only sends the data through repairEncoding,
// whose round trip decides whether anything changes.
func looksDoubleEncoded(data []byte) bool {
	count := 0
	for i := 0; i+1 < len(data); i++ {
		if (data[i] == 0xC3 || data[i] == 0xC2) && data[i+1] >= 0x80 {
			count++
		}
	}
	return count > 0 && count*20 > len(data)/100
}
