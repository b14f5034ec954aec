package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/user/smartlink/internal/models"
	"github.com/user/smartlink/internal/normalize"
	"github.com/user/smartlink/internal/repository"
	"github.com/user/smartlink/internal/validation"
	"go.uber.org/zap"
)

// memStore is an in-memory LinkStore honoring the same contract as
// the PostgreSQL repository: sentinel errors, server-assigned fields
// and a single-operation click increment.
type memStore struct {
	mu    sync.Mutex
	links map[string]*models.SmartLink
	order []string // creation order, oldest first
}

func newMemStore() *memStore {
	return &memStore{links: map[string]*models.SmartLink{}}
}

func (m *memStore) Create(_ context.Context, link *models.SmartLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Slug]; ok {
		return repository.ErrDuplicateSlug
	}

	link.ID = uuid.New()
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now
	link.ClickStats = models.ClickStats{TotalViews: 0, Clicks: map[string]int64{}}

	m.links[link.Slug] = link
	m.order = append(m.order, link.Slug)
	return nil
}

func (m *memStore) GetBySlug(_ context.Context, slug string) (*models.SmartLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *memStore) ListAll(_ context.Context) ([]models.SmartLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	links := make([]models.SmartLink, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- { // newest first
		if link, ok := m.links[m.order[i]]; ok {
			links = append(links, *link)
		}
	}
	return links, nil
}

func (m *memStore) Exists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.links[slug]
	return ok, nil
}

func (m *memStore) Update(_ context.Context, slug string, link *models.SmartLink) (*models.SmartLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.links[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if link.Slug != slug {
		if _, taken := m.links[link.Slug]; taken {
			return nil, repository.ErrDuplicateSlug
		}
	}

	updated := *link
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	updated.ClickStats = existing.ClickStats

	delete(m.links, slug)
	m.links[updated.Slug] = &updated
	for i, s := range m.order {
		if s == slug {
			m.order[i] = updated.Slug
		}
	}
	copied := updated
	return &copied, nil
}

func (m *memStore) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[slug]; !ok {
		return repository.ErrNotFound
	}
	delete(m.links, slug)
	return nil
}

func (m *memStore) IncrementClick(_ context.Context, slug, platform string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[slug]
	if !ok {
		return repository.ErrNotFound
	}
	link.ClickStats.TotalViews++
	link.ClickStats.Clicks[platform]++
	return nil
}

func newTestService() (*LinkService, *memStore) {
	store := newMemStore()
	return NewLinkService(store, zap.NewNop()), store
}

func rawJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func validPayload(t *testing.T, slug string) *models.LinkPayload {
	t.Helper()
	return &models.LinkPayload{
		Artist: "Daft Punk",
		Title:  "Harder Better Faster Stronger",
		Slug:   slug,
		StreamingLinks: rawJSON(t, map[string]string{
			"spotify": "https://open.spotify.com/track/abc123",
			"deezer":  "https://www.deezer.com/track/123",
		}),
	}
}

func waitForViews(t *testing.T, store *memStore, slug string, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		link, err := store.GetBySlug(context.Background(), slug)
		if err == nil && link.ClickStats.TotalViews == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	link, _ := store.GetBySlug(context.Background(), slug)
	t.Fatalf("totalViews never reached %d, last seen %+v", want, link.ClickStats)
}

func TestCreateNormalizesSlugAndZeroesStats(t *testing.T) {
	svc, _ := newTestService()

	payload := validPayload(t, "  My-Track-01 ")
	payload.Artist = "  Daft Punk  "

	link, err := svc.Create(context.Background(), payload)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if link.Slug != "my-track-01" {
		t.Errorf("slug = %q, want %q", link.Slug, "my-track-01")
	}
	if link.Artist != "Daft Punk" {
		t.Errorf("artist = %q, want trimmed", link.Artist)
	}
	if link.CoverURL != normalize.DefaultCoverURL {
		t.Errorf("coverUrl = %q, want placeholder default", link.CoverURL)
	}
	if link.ClickStats.TotalViews != 0 || len(link.ClickStats.Clicks) != 0 {
		t.Errorf("clickStats = %+v, want zeroed", link.ClickStats)
	}
	if link.CreatedAt.IsZero() || link.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}
}

func TestCreateDuplicateSlug(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), validPayload(t, "my-track")); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// Same slug after normalization.
	_, err := svc.Create(context.Background(), validPayload(t, "  MY-TRACK  "))
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("err = %v, want ErrSlugTaken", err)
	}
}

func TestCreateCollectsAllValidationErrors(t *testing.T) {
	svc, store := newTestService()

	payload := validPayload(t, "Bad Slug!")
	payload.Artist = "   "
	payload.Analytics = &models.AnalyticsTags{GtmID: "INVALID-ID"}

	_, err := svc.Create(context.Background(), payload)

	var invalid *validation.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *validation.InvalidInputError", err)
	}
	if len(invalid.Fields) < 3 {
		t.Fatalf("got %d field errors, want at least 3: %+v", len(invalid.Fields), invalid.Fields)
	}

	fields := map[string]bool{}
	for _, fe := range invalid.Fields {
		fields[fe.Field] = true
	}
	for _, want := range []string{"artist", "slug", "analytics.gtmId"} {
		if !fields[want] {
			t.Errorf("missing field error for %q in %+v", want, invalid.Fields)
		}
	}

	if n, _ := store.Exists(context.Background(), "bad slug!"); n {
		t.Error("invalid payload must never be persisted")
	}
}

func TestCreateAcceptsMixedCaseGTMID(t *testing.T) {
	svc, _ := newTestService()

	payload := validPayload(t, "mixed-case-gtm")
	payload.Analytics = &models.AnalyticsTags{GtmID: "GTM-572GXWPP"}

	link, err := svc.Create(context.Background(), payload)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if link.Analytics == nil || link.Analytics.GtmID != "GTM-572GXWPP" {
		t.Errorf("analytics = %+v, want gtmId kept", link.Analytics)
	}
}

func TestResolveRedirectsAndTracksClick(t *testing.T) {
	svc, store := newTestService()

	if _, err := svc.Create(context.Background(), validPayload(t, "my-track")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dest, err := svc.Resolve(context.Background(), "my-track", "spotify")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != "https://open.spotify.com/track/abc123" {
		t.Errorf("destination = %q", dest)
	}

	// The increment is fire-and-forget; wait for it to land.
	waitForViews(t, store, "my-track", 1)

	link, _ := store.GetBySlug(context.Background(), "my-track")
	if link.ClickStats.Clicks["spotify"] != 1 {
		t.Errorf("clicks[spotify] = %d, want 1", link.ClickStats.Clicks["spotify"])
	}
}

func TestResolveUnknownSlug(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Resolve(context.Background(), "nope", "spotify")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound", err)
	}
}

func TestResolveUnavailablePlatformDoesNotTrack(t *testing.T) {
	svc, store := newTestService()

	if _, err := svc.Create(context.Background(), validPayload(t, "my-track")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Resolve(context.Background(), "my-track", "tidal")
	if !errors.Is(err, ErrPlatformUnavailable) {
		t.Fatalf("err = %v, want ErrPlatformUnavailable", err)
	}

	time.Sleep(50 * time.Millisecond)
	link, _ := store.GetBySlug(context.Background(), "my-track")
	if link.ClickStats.TotalViews != 0 {
		t.Errorf("totalViews = %d, want 0", link.ClickStats.TotalViews)
	}
}

func TestConcurrentIncrementsLoseNoUpdates(t *testing.T) {
	_, store := newTestService()

	link := &models.SmartLink{
		Artist:         "Daft Punk",
		Title:          "One More Time",
		Slug:           "one-more-time",
		CoverURL:       normalize.DefaultCoverURL,
		StreamingLinks: map[string]string{"spotify": "https://open.spotify.com/track/x"},
	}
	if err := store.Create(context.Background(), link); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := store.IncrementClick(context.Background(), "one-more-time", "spotify"); err != nil {
				t.Errorf("IncrementClick: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := store.GetBySlug(context.Background(), "one-more-time")
	if got.ClickStats.TotalViews != n {
		t.Errorf("totalViews = %d, want %d", got.ClickStats.TotalViews, n)
	}
	if got.ClickStats.Clicks["spotify"] != n {
		t.Errorf("clicks[spotify] = %d, want %d", got.ClickStats.Clicks["spotify"], n)
	}
}

func TestUpdateReplacesFieldsAndKeepsStats(t *testing.T) {
	svc, store := newTestService()

	if _, err := svc.Create(context.Background(), validPayload(t, "my-track")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.IncrementClick(context.Background(), "my-track", "spotify"); err != nil {
		t.Fatalf("IncrementClick: %v", err)
	}

	payload := validPayload(t, "my-track")
	payload.Title = "Around The World"

	updated, err := svc.Update(context.Background(), "my-track", payload)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Around The World" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.ClickStats.TotalViews != 1 {
		t.Errorf("totalViews = %d, want stats preserved", updated.ClickStats.TotalViews)
	}
}

func TestUpdateUnknownSlug(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), "ghost", validPayload(t, "ghost"))
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("err = %v, want ErrLinkNotFound", err)
	}
}

func TestDeleteThenGet(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Create(context.Background(), validPayload(t, "my-track")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), "my-track"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "my-track"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("second Delete err = %v, want ErrLinkNotFound", err)
	}
	if _, err := svc.Get(context.Background(), "my-track"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrLinkNotFound", err)
	}
}

func TestCheckSlugAvailableIsPureRead(t *testing.T) {
	svc, _ := newTestService()

	for i := 0; i < 3; i++ {
		available, err := svc.CheckSlugAvailable(context.Background(), "fresh-slug")
		if err != nil || !available {
			t.Fatalf("CheckSlugAvailable = %v, %v; want true, nil", available, err)
		}
	}

	if _, err := svc.Create(context.Background(), validPayload(t, "fresh-slug")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	available, err := svc.CheckSlugAvailable(context.Background(), "fresh-slug")
	if err != nil || available {
		t.Fatalf("CheckSlugAvailable = %v, %v; want false, nil", available, err)
	}
}

func TestAnalyticsSummary(t *testing.T) {
	svc, store := newTestService()

	if _, err := svc.Create(context.Background(), validPayload(t, "my-track")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.IncrementClick(context.Background(), "my-track", "spotify"); err != nil {
			t.Fatalf("IncrementClick: %v", err)
		}
	}
	if err := store.IncrementClick(context.Background(), "my-track", "deezer"); err != nil {
		t.Fatalf("IncrementClick: %v", err)
	}

	summary, err := svc.Analytics(context.Background(), "my-track")
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if summary.TotalViews != 4 {
		t.Errorf("totalViews = %d, want 4", summary.TotalViews)
	}
	if summary.ClicksByPlatform["spotify"] != 3 || summary.ClicksByPlatform["deezer"] != 1 {
		t.Errorf("clicksByPlatform = %+v", summary.ClicksByPlatform)
	}
	if summary.Artist != "Daft Punk" || summary.Slug != "my-track" {
		t.Errorf("summary = %+v", summary)
	}

	if _, err := svc.Analytics(context.Background(), "ghost"); !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("Analytics(ghost) err = %v, want ErrLinkNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, _ := newTestService()

	for _, slug := range []string{"first", "second", "third"} {
		if _, err := svc.Create(context.Background(), validPayload(t, slug)); err != nil {
			t.Fatalf("Create(%s): %v", slug, err)
		}
	}

	links, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("len = %d, want 3", len(links))
	}
	if links[0].Slug != "third" || links[2].Slug != "first" {
		t.Errorf("order = [%s %s %s], want newest first", links[0].Slug, links[1].Slug, links[2].Slug)
	}
}
