package testsupport

import (
	"embed"
	"encoding/json"
	"path"
	"sort"
	"testing"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Identifiers of the documents in the seeded catalog.
const (
	FilmAlienID       = "3a7d1b2c-0000-4000-8000-000000000001"
	FilmBladeRunnerID = "3a7d1b2c-0000-4000-8000-000000000002"
	GenreHorrorID     = "0b4f7e1a-0000-4000-8000-0000000000a1"
	GenreSciFiID      = "0b4f7e1a-0000-4000-8000-0000000000a2"
	PersonScottID     = "5c2e9d3f-0000-4000-8000-0000000000b3"
	PersonFordID      = "5c2e9d3f-0000-4000-8000-0000000000b4"
)

// Fixture returns the content of a shared fixture file by name.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

// FixtureJSON decodes a shared fixture file into dest.
func FixtureJSON(t testing.TB, name string, dest any) {
	t.Helper()

	if err := json.Unmarshal(Fixture(t, name), dest); err != nil {
		t.Fatalf("failed to unmarshal fixture %s: %v", name, err)
	}
}

// FixtureNames lists the shared fixture files.
func FixtureNames() []string {
	entries, _ := fixtures.ReadDir("testdata")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// catalogSearches maps each collection to the canned search response it
// answers with once seeded.
var catalogSearches = map[string]string{
	"movies":  "search_movies.json",
	"genres":  "search_genres.json",
	"persons": "search_persons.json",
}

// SeedCatalog loads every document of catalog.json into f and installs a
// canned search response per collection.
func SeedCatalog(t testing.TB, f *FakeElastic) {
	t.Helper()

	var catalog map[string]map[string]json.RawMessage
	FixtureJSON(t, "catalog.json", &catalog)

	for index, docs := range catalog {
		for id, source := range docs {
			f.AddDocument(index, id, source)
		}
	}
	for index, name := range catalogSearches {
		f.SetSearchResponse(index, Fixture(t, name))
	}
}
