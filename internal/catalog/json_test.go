package catalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/airtime/gridplanner/internal/catalog"
)

func writeCatalog(t *testing.T, raw []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestJSONProviderLoadsWellFormedCatalog(t *testing.T) {
	programs := []catalog.Program{
		{ID: "p1", Title: "Le Film", Genre: "Film", DurationMinutes: 90, Cost: 1000, BaseAudience: 1_000_000, Origin: "France"},
	}
	raw, err := json.Marshal(programs)
	require.NoError(t, err)
	path := writeCatalog(t, raw)

	week := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	loaded, gotWeek, err := catalog.NewJSONProvider(path, week).Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "p1", loaded[0].ID)
	assert.Equal(t, week, gotWeek)
}

func TestJSONProviderRejectsMissingID(t *testing.T) {
	path := writeCatalog(t, []byte(`[{"title":"no id here"}]`))
	_, _, err := catalog.NewJSONProvider(path, time.Now()).Load()
	assert.Error(t, err)
}

func TestJSONProviderErrorsOnMissingFile(t *testing.T) {
	_, _, err := catalog.NewJSONProvider(filepath.Join(t.TempDir(), "missing.json"), time.Now()).Load()
	assert.Error(t, err)
}

func TestJSONProviderErrorsOnMalformedJSON(t *testing.T) {
	path := writeCatalog(t, []byte(`not json`))
	_, _, err := catalog.NewJSONProvider(path, time.Now()).Load()
	assert.Error(t, err)
}

// TestJSONProviderRepairsDoubleEncodedAccents exercises the cp1252-over-UTF-8
// repair pass: "Étudiant" mangled through a latin1 round trip and re-wrapped
// in valid UTF-8 bytes must come back out as the original string.
func TestJSONProviderRepairsDoubleEncodedAccents(t *testing.T) {
	original := "Étudiant en médecine"
	mangled := mangleAsCp1252OverUTF8(t, original)

	raw := []byte(`[{"id":"p1","title":"` + mangled + `"}]`)
	path := writeCatalog(t, raw)

	loaded, _, err := catalog.NewJSONProvider(path, time.Now()).Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, original, loaded[0].Title)
}

// mangleAsCp1252OverUTF8 simulates the legacy export bug: reinterpret the
// UTF-8 bytes of s as Windows-1252 code points and re-encode that as UTF-8,
// the inverse of what repairEncoding is built to reverse.
func mangleAsCp1252OverUTF8(t *testing.T, s string) string {
	t.Helper()
	mangled, err := charmap.Windows1252.NewDecoder().String(s)
	require.NoError(t, err)
	return mangled
}
