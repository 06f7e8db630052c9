package service_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/mocks"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// newContent starts a fake backend and wires the catalogs to it
func newContent(t *testing.T) (*mocks.FakeBackend, *service.ContentService) {
	t.Helper()
	fb := mocks.NewFakeBackend()
	t.Cleanup(fb.Close)

	client, err := backend.New(backend.Config{BaseURL: fb.URL(), Timeout: 5 * time.Second}, backend.Chain{backend.ContextToken{}, backend.StaticToken("service-token")}, zerolog.Nop())
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	content := service.NewContentService(service.NewStores(client), config.ListingConfig{
		PageSize:                9,
		CompactPageSize:         6,
		PublicCaseStudyStatuses: []string{"Approved", "Published"},
	}, time.Second, zerolog.Nop())
	t.Cleanup(content.Wait)
	return fb, content
}
