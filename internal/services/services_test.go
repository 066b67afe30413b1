package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/swapi-mirror/internal/clients/swapi"
	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/data/dberr"
	"github.com/yungbote/swapi-mirror/internal/data/repos"
	"github.com/yungbote/swapi-mirror/internal/data/repos/testutil"
	types "github.com/yungbote/swapi-mirror/internal/domain"
	pkgerrors "github.com/yungbote/swapi-mirror/internal/pkg/errors"
)

// stubClient serves canned records per endpoint and counts calls.
type stubClient struct {
	mu      sync.Mutex
	records map[string][]types.Record
	fail    map[string]bool
	calls   map[string]int
}

func (c *stubClient) Fetch(ctx context.Context, endpoint string, opts ...swapi.FetchOption) ([]types.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[endpoint]++
	if c.fail[endpoint] {
		return nil, &swapi.FetchError{Endpoint: endpoint, Attempts: 3, Err: errors.New("503 Service Unavailable")}
	}
	return c.records[endpoint], nil
}

func luke() types.Record {
	return types.Record{"name": "Luke Skywalker", "gender": "male", "birth_year": "19BBY", "height": "172"}
}

func leia() types.Record {
	return types.Record{"name": "Leia Organa", "gender": "female", "birth_year": "19BBY"}
}

func newHope() types.Record {
	return types.Record{"title": "A New Hope", "director": "George Lucas", "release_date": "1977-05-25"}
}

func xwing() types.Record {
	return types.Record{"name": "X-wing", "model": "T-65 X-wing", "manufacturer": "Incom Corporation"}
}

type fixture struct {
	db     *gorm.DB
	store  CatalogStore
	filler RelationshipFiller
	query  CatalogQuery
	runs   repos.SyncRunRepo
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	log := testutil.Logger(t)
	chars := repos.NewCharacterRepo(db, log)
	films := repos.NewFilmRepo(db, log)
	ships := repos.NewStarshipRepo(db, log)
	links := repos.NewLinkRepo(db, log)
	return &fixture{
		db:     db,
		store:  NewCatalogStore(db, log, chars, films, ships),
		filler: NewRelationshipFiller(db, log, chars, films, ships, links),
		query:  NewCatalogQuery(log, chars, films, ships, true),
		runs:   repos.NewSyncRunRepo(db, log),
	}
}

func (f *fixture) syncer(t *testing.T, client swapi.Client, failFast bool) SyncService {
	t.Helper()
	return NewSyncService(context.Background(), testutil.Logger(t), client, f.store, f.filler, f.runs, nil, SyncOptions{FailFast: failFast})
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestCatalogStoreSkipsExistingKeys(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))

	added, err := f.store.StoreCharacters(ctx, []types.Record{luke(), leia()})
	if err != nil {
		t.Fatalf("StoreCharacters: %v", err)
	}
	if added != 2 {
		t.Fatalf("first store: want=2 got=%d", added)
	}
	added, err = f.store.StoreCharacters(ctx, []types.Record{luke(), leia()})
	if err != nil {
		t.Fatalf("StoreCharacters again: %v", err)
	}
	if added != 0 {
		t.Fatalf("second store: want=0 got=%d", added)
	}
	if n := count(t, f.db, "character"); n != 2 {
		t.Fatalf("character rows: want=2 got=%d", n)
	}
}

func TestCatalogStoreRollsBackOnDuplicateInBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))

	if _, err := f.store.StoreFilms(ctx, []types.Record{newHope(), {"title": "The Empire Strikes Back"}, newHope()}); err == nil {
		t.Fatalf("expected integrity error for duplicate title in one batch")
	}
	if n := count(t, f.db, "film"); n != 0 {
		t.Fatalf("film rows after rollback: want=0 got=%d", n)
	}
}

func TestCatalogStoreRejectsRecordWithoutKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))

	added, err := f.store.StoreCharacters(ctx, []types.Record{{"gender": "n/a"}, luke()})
	if !dberr.IsKind(err, dberr.KindIntegrity) {
		t.Fatalf("record without name: want integrity error got=%v", err)
	}
	if added != 0 {
		t.Fatalf("added: want=0 got=%d", added)
	}
	if n := count(t, f.db, "character"); n != 0 {
		t.Fatalf("character rows after rollback: want=0 got=%d", n)
	}

	if _, err := f.store.StoreFilms(ctx, []types.Record{newHope(), {"title": nil}}); !dberr.IsKind(err, dberr.KindIntegrity) {
		t.Fatalf("film with null title: want integrity error got=%v", err)
	}
	if n := count(t, f.db, "film"); n != 0 {
		t.Fatalf("film rows after rollback: want=0 got=%d", n)
	}
}

func TestCatalogStoreMissingTablesAreSkipped(t *testing.T) {
	f := newFixture(t, testutil.EmptySQLite(t))
	added, err := f.store.StoreStarships(context.Background(), []types.Record{xwing()})
	if err != nil {
		t.Fatalf("missing table should be logged, not returned: %v", err)
	}
	if added != 0 {
		t.Fatalf("added: want=0 got=%d", added)
	}
}

func TestRelationshipFillerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedCatalog(t, ctx, db, 3, 2, 4)
	f := newFixture(t, db)

	counts, err := f.filler.Fill(ctx)
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := LinkCounts{CharacterFilms: 6, CharacterStarships: 12, FilmStarships: 8}
	if counts != want {
		t.Fatalf("first fill: want=%+v got=%+v", want, counts)
	}
	counts, err = f.filler.Fill(ctx)
	if err != nil {
		t.Fatalf("Fill again: %v", err)
	}
	if counts.Total() != 0 {
		t.Fatalf("second fill: want=0 got=%+v", counts)
	}
	if n := count(t, db, "character_starship"); n != 12 {
		t.Fatalf("character_starship rows: want=12 got=%d", n)
	}
}

func TestRelationshipFillerRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	// The join table is replaced below, so this test needs a private database.
	db := testutil.SQLite(t)
	testutil.SeedCatalog(t, ctx, db, 2, 1, 1)
	f := newFixture(t, db)

	// film_starship is filled last; a column the filler never sets makes that insert fail.
	if err := db.Exec(`DROP TABLE film_starship`).Error; err != nil {
		t.Fatalf("drop film_starship: %v", err)
	}
	if err := db.Exec(`CREATE TABLE film_starship (film_id INTEGER, starship_id INTEGER, note TEXT NOT NULL)`).Error; err != nil {
		t.Fatalf("recreate film_starship: %v", err)
	}

	counts, err := f.filler.Fill(ctx)
	if !dberr.IsKind(err, dberr.KindIntegrity) {
		t.Fatalf("Fill: want integrity error got=%v", err)
	}
	if counts.Total() != 0 {
		t.Fatalf("counts after failure: want=0 got=%+v", counts)
	}
	for _, table := range []string{"character_film", "character_starship", "film_starship"} {
		if n := count(t, db, table); n != 0 {
			t.Fatalf("%s rows after rollback: want=0 got=%d", table, n)
		}
	}
}

func TestSyncAllMirrorsAndLinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))
	client := &stubClient{records: map[string][]types.Record{
		swapi.EndpointPeople:    {luke()},
		swapi.EndpointFilms:     {newHope()},
		swapi.EndpointStarships: {xwing()},
	}}
	svc := f.syncer(t, client, true)

	res, err := svc.SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if res.Message != "All SWAPI data synced successfully" {
		t.Fatalf("message: got=%q", res.Message)
	}
	if res.Characters.Message != "1 characters synced successfully" || res.Characters.Added != 1 {
		t.Fatalf("characters: got=%+v", res.Characters)
	}
	if (res.Links != LinkCounts{CharacterFilms: 1, CharacterStarships: 1, FilmStarships: 1}) {
		t.Fatalf("links: got=%+v", res.Links)
	}

	chars, err := f.query.ListCharacters(ctx, 0, 100)
	if err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if len(chars) != 1 || chars[0].Name != "Luke Skywalker" || chars[0].BirthYear != "19BBY" {
		t.Fatalf("characters: got=%+v", chars)
	}
	if len(chars[0].Films) != 1 || chars[0].Films[0].Title != "A New Hope" {
		t.Fatalf("luke films: got=%+v", chars[0].Films)
	}
	if len(chars[0].Starships) != 1 || chars[0].Starships[0].Name != "X-wing" {
		t.Fatalf("luke starships: got=%+v", chars[0].Starships)
	}

	run, err := svc.GetRun(ctx, res.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun: run=%v err=%v", run, err)
	}
	if run.State != "done" || run.Scope != "all" || run.FinishedAt == nil {
		t.Fatalf("run: got=%+v", run)
	}

	// A second sync adds nothing.
	res, err = svc.SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll again: %v", err)
	}
	if res.Characters.Added != 0 || res.Links.Total() != 0 {
		t.Fatalf("second sync: got=%+v", res)
	}
	if n := count(t, f.db, "character"); n != 1 {
		t.Fatalf("character rows: want=1 got=%d", n)
	}
}

func TestSyncAllStopsOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))
	client := &stubClient{
		records: map[string][]types.Record{swapi.EndpointPeople: {luke()}},
		fail:    map[string]bool{swapi.EndpointFilms: true},
	}
	svc := f.syncer(t, client, true)

	_, err := svc.SyncAll(ctx)
	if !errors.Is(err, swapi.ErrRemoteFetch) {
		t.Fatalf("want ErrRemoteFetch got=%v", err)
	}
	if client.calls[swapi.EndpointStarships] != 0 {
		t.Fatalf("starships should not be fetched after a failure")
	}
	// Characters stored before the failure stay stored.
	if n := count(t, f.db, "character"); n != 1 {
		t.Fatalf("character rows: want=1 got=%d", n)
	}
	if n := count(t, f.db, "character_film"); n != 0 {
		t.Fatalf("no links expected: got=%d", n)
	}

	runs, err := svc.ListRuns(ctx, 5)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].State != "failed" || runs[0].Error == "" {
		t.Fatalf("runs: got=%+v", runs)
	}
}

func TestSyncAllContinuesPastEmptyKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))
	client := &stubClient{records: map[string][]types.Record{
		swapi.EndpointPeople:    {luke()},
		swapi.EndpointStarships: {xwing()},
	}}

	res, err := f.syncer(t, client, true).SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if res.Films.Fetched != 0 || res.Films.Message != "No films found to sync" {
		t.Fatalf("films: got=%+v", res.Films)
	}
	if (res.Links != LinkCounts{CharacterStarships: 1}) {
		t.Fatalf("links: got=%+v", res.Links)
	}
	if n := count(t, f.db, "character_starship"); n != 1 {
		t.Fatalf("character_starship rows: want=1 got=%d", n)
	}
}

func TestSyncAllWithoutFailFastTreatsExhaustedKindAsEmpty(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/people":
			_, _ = w.Write([]byte(`[{"name":"Luke Skywalker"},{"name":"Leia Organa"}]`))
		case "/films":
			_, _ = w.Write([]byte(`[{"title":"A New Hope"}]`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	f := newFixture(t, testutil.DB(t))
	client := swapi.NewClient(testutil.Logger(t), config.SwapiConfig{BaseURL: srv.URL, Retries: 2, RetryDelay: 0, Timeout: 5 * time.Second})
	svc := f.syncer(t, client, false)

	res, err := svc.SyncAll(ctx)
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if res.Starships.Fetched != 0 || res.Starships.Message != "No starships found to sync" {
		t.Fatalf("starships: got=%+v", res.Starships)
	}
	if (res.Links != LinkCounts{CharacterFilms: 2}) {
		t.Fatalf("links: got=%+v", res.Links)
	}
	run, err := svc.GetRun(ctx, res.RunID)
	if err != nil || run.State != "done" {
		t.Fatalf("run: got=%+v err=%v", run, err)
	}
}

func TestTruncateUTF8KeepsRunesWhole(t *testing.T) {
	msg := strings.Repeat("a", 1999) + "é" + "tail"
	got := truncateUTF8(msg, maxRunErrorBytes)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated message is not valid UTF-8: %q", got[len(got)-4:])
	}
	if len(got) != 1999 {
		t.Fatalf("length: want=1999 got=%d", len(got))
	}
	if short := truncateUTF8("Film failed", maxRunErrorBytes); short != "Film failed" {
		t.Fatalf("short message changed: got=%q", short)
	}
}

func TestSyncKindEmptyResult(t *testing.T) {
	f := newFixture(t, testutil.DB(t))
	svc := f.syncer(t, &stubClient{}, false)

	res, err := svc.SyncStarships(context.Background())
	if err != nil {
		t.Fatalf("SyncStarships: %v", err)
	}
	if res.Message != "No starships found to sync" || res.Fetched != 0 {
		t.Fatalf("result: got=%+v", res)
	}
	if _, err := svc.SyncKind(context.Background(), types.Kind("planets")); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("unknown kind: want ErrInvalidArgument got=%v", err)
	}
	if _, err := svc.GetRun(context.Background(), uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing run: want ErrNotFound got=%v", err)
	}
}

func TestSearchIsCaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, testutil.DB(t))
	if _, err := f.store.StoreCharacters(ctx, []types.Record{luke(), leia(), {"name": "Darth Vader"}}); err != nil {
		t.Fatalf("StoreCharacters: %v", err)
	}

	got, err := f.query.SearchCharacters(ctx, "LUKE", 0, 10)
	if err != nil {
		t.Fatalf("SearchCharacters: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Luke Skywalker" {
		t.Fatalf("search LUKE: got=%+v", got)
	}
	if got[0].Films == nil || len(got[0].Films) != 0 {
		t.Fatalf("films should be an empty list: got=%v", got[0].Films)
	}

	got, err = f.query.SearchCharacters(ctx, "E", 1, 1)
	if err != nil {
		t.Fatalf("SearchCharacters: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Leia Organa" {
		t.Fatalf("search E skip=1 limit=1: got=%+v", got)
	}

	got, err = f.query.SearchCharacters(ctx, "yoda", 0, 10)
	if err != nil {
		t.Fatalf("SearchCharacters: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("search yoda: got=%+v", got)
	}
}

func TestQueryMissingTablesReturnError(t *testing.T) {
	f := newFixture(t, testutil.EmptySQLite(t))
	if _, err := f.query.ListFilms(context.Background(), 0, 10); err == nil {
		t.Fatalf("expected error listing films without tables")
	}
}

func TestStartSyncAllRunsInBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, testutil.DB(t))
	client := &stubClient{records: map[string][]types.Record{
		swapi.EndpointPeople:    {luke(), leia()},
		swapi.EndpointFilms:     {newHope()},
		swapi.EndpointStarships: {xwing()},
	}}
	svc := f.syncer(t, client, true)

	id, err := svc.StartSyncAll(ctx)
	if err != nil {
		t.Fatalf("StartSyncAll: %v", err)
	}
	// The request context ending must not stop the run.
	cancel()
	svc.Wait()

	run, err := svc.GetRun(context.Background(), id)
	if err != nil || run == nil {
		t.Fatalf("GetRun: run=%v err=%v", run, err)
	}
	if run.State != "done" || !run.Async {
		t.Fatalf("run: got=%+v", run)
	}
	if n := count(t, f.db, "character_film"); n != 2 {
		t.Fatalf("character_film rows: want=2 got=%d", n)
	}
}
