package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/service"
)

func TestCatalog_PublicCaseStudiesSurvivePartialFailure(t *testing.T) {
	fb, content := newContent(t)
	fb.Seed(models.KindCaseStudy,
		map[string]any{"title": "Dravet syndrome in a toddler", "status": "Approved"},
		map[string]any{"title": "Cerebral malaria sequelae", "status": "Approved"},
		map[string]any{"title": "Unreviewed", "status": "Pending Review"},
	)
	fb.Fail("GET", "/case-study-submissions/?status=Published", 500)

	l, err := content.CaseStudies().List(context.Background(), service.ScopePublic, models.FilterState{}, 0)
	if err != nil {
		t.Fatalf("expected partial listing, got error: %v", err)
	}
	if l.Total != 2 || len(l.Items) != 2 {
		t.Errorf("expected exactly the 2 approved items, got total=%d items=%d", l.Total, len(l.Items))
	}
	if !l.Partial() || len(l.Failed) != 1 {
		t.Fatalf("expected one failed source, got %+v", l.Failed)
	}
	if l.Failed[0].Branch != "case-studies:Published" || !l.Failed[0].Retryable {
		t.Errorf("unexpected failure: %+v", l.Failed[0])
	}
}

func TestCatalog_AllBranchesFailing(t *testing.T) {
	fb, content := newContent(t)
	fb.Fail("GET", "/case-study-submissions/?status=Approved", 503)
	fb.Fail("GET", "/case-study-submissions/?status=Published", 500)

	_, err := content.CaseStudies().List(context.Background(), service.ScopePublic, models.FilterState{}, 0)
	if err == nil {
		t.Fatal("expected an error when every source failed")
	}
	if !backend.Retryable(err) {
		t.Errorf("expected a retryable error, got %v", err)
	}
}

func TestCatalog_PublicListingShowsOnlyPublished(t *testing.T) {
	fb, content := newContent(t)
	for i := 0; i < 12; i++ {
		status := "Published"
		if i%4 == 0 {
			status = "Draft"
		}
		fb.Seed(models.KindResource, map[string]any{
			"title": "Resource", "category": "Epilepsy", "status": status,
		})
	}
	ctx := context.Background()

	public, err := content.Resources().List(ctx, service.ScopePublic, models.FilterState{}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if public.Total != 9 || len(public.Items) != 9 || public.HasMore {
		t.Errorf("public: total=%d items=%d hasMore=%v", public.Total, len(public.Items), public.HasMore)
	}

	admin, err := content.Resources().List(ctx, service.ScopeAdmin, models.FilterState{}, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if admin.Total != 12 || len(admin.Items) != 9 || !admin.HasMore {
		t.Errorf("admin: total=%d items=%d hasMore=%v", admin.Total, len(admin.Items), admin.HasMore)
	}

	more, _ := content.Resources().List(ctx, service.ScopeAdmin, models.FilterState{}, 18)
	if len(more.Items) != 12 || more.HasMore {
		t.Errorf("second page: items=%d hasMore=%v", len(more.Items), more.HasMore)
	}
}

func TestCatalog_FiltersApplyAfterFetch(t *testing.T) {
	fb, content := newContent(t)
	fb.Seed(models.KindResource,
		map[string]any{"title": "Epilepsy basics", "category": "Epilepsy", "status": "Published", "resource_type": "Fact Sheet"},
		map[string]any{"title": "Autism at school", "category": "Autism", "status": "Published", "resource_type": "Guide"},
		map[string]any{"title": "Seizure diary", "category": "Epilepsy", "status": "Published", "resource_type": "Toolkit"},
	)

	state := models.FilterState{Search: "SEIZURE"}.WithFacet("category", "Epilepsy")
	l, err := content.Resources().List(context.Background(), service.ScopePublic, state, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if l.Total != 1 || l.Items[0].Title != "Seizure diary" {
		t.Errorf("unexpected filtered listing: %+v", l.Items)
	}
	if l.Entity != models.KindResource {
		t.Errorf("entity = %q", l.Entity)
	}
}

func TestCatalog_DetailTracksViewsOptimistically(t *testing.T) {
	fb, content := newContent(t)
	ids := fb.Seed(models.KindResource, map[string]any{
		"title":        "Febrile seizures",
		"status":       "Published",
		"full_content": "# Febrile seizures\n\nStay calm.",
		"view_count":   4,
		"image_url":    "/media/resources/febrile.png",
	})

	d, err := content.Resources().Detail(context.Background(), service.ScopePublic, ids[0])
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	detail, ok := d.(models.ResourceDetail)
	if !ok {
		t.Fatalf("expected ResourceDetail, got %T", d)
	}
	if detail.ViewCount != 5 {
		t.Errorf("expected optimistic view count 5, got %d", detail.ViewCount)
	}
	if !strings.Contains(detail.ContentHTML, "<h1") {
		t.Errorf("expected rendered markdown, got %q", detail.ContentHTML)
	}
	if want := fb.Server.URL + "/media/resources/febrile.png"; detail.ImageURL != want {
		t.Errorf("ImageURL = %q, want %q", detail.ImageURL, want)
	}

	content.Wait()
	if got := fb.Record(models.KindResource, ids[0])["view_count"]; got != 5 {
		t.Errorf("expected backend view count 5, got %v", got)
	}
}

func TestCatalog_CaseStudyDetailSections(t *testing.T) {
	fb, content := newContent(t)
	ids := fb.Seed(models.KindCaseStudy, map[string]any{
		"title":        "Dravet syndrome",
		"status":       "Published",
		"full_content": `{"patientPresentation":"Prolonged **febrile** seizures","diagnosis":"Dravet syndrome"}`,
	})

	d, err := content.CaseStudies().Detail(context.Background(), service.ScopePublic, ids[0])
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	detail := d.(models.CaseStudyDetail)
	if len(detail.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(detail.Sections))
	}
	if !strings.Contains(detail.Sections[0].HTML, "<strong>febrile</strong>") {
		t.Errorf("unexpected section html %q", detail.Sections[0].HTML)
	}
}

func TestCatalog_HiddenAndMissingEntities(t *testing.T) {
	fb, content := newContent(t)
	ids := fb.Seed(models.KindResource, map[string]any{"title": "Draft", "status": "Draft"})
	ctx := context.Background()

	if _, err := content.Resources().Detail(ctx, service.ScopePublic, ids[0]); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("draft in public scope: expected ErrNotFound, got %v", err)
	}
	if _, err := content.Resources().Detail(ctx, service.ScopeAdmin, ids[0]); err != nil {
		t.Errorf("draft in admin scope: %v", err)
	}
	if _, err := content.Resources().Get(ctx, service.ScopeAdmin, 999); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("missing id: expected ErrNotFound, got %v", err)
	}

	content.Wait()
	for _, r := range fb.Requests() {
		if strings.Contains(r, "increment_view") {
			t.Errorf("hidden or admin details must not be tracked: %s", r)
		}
	}
}

func TestCatalog_TrackDownload(t *testing.T) {
	fb, content := newContent(t)
	ids := fb.Seed(models.KindResource, map[string]any{"title": "Toolkit", "status": "Published", "download_count": 10})
	ctx := context.Background()

	r, err := content.Resources().TrackDownload(ctx, ids[0])
	if err != nil {
		t.Fatalf("TrackDownload: %v", err)
	}
	if r.DownloadCount != 11 {
		t.Errorf("expected optimistic download count 11, got %d", r.DownloadCount)
	}
	content.Wait()
	if got := fb.Record(models.KindResource, ids[0])["download_count"]; got != 11 {
		t.Errorf("expected backend download count 11, got %v", got)
	}

	if _, err := content.Projects().TrackDownload(ctx, 1); !errors.Is(err, service.ErrUnsupported) {
		t.Errorf("projects have no downloads: got %v", err)
	}
}

func TestCatalog_ForwardsRequestToken(t *testing.T) {
	fb, content := newContent(t)
	fb.Seed(models.KindProject, map[string]any{"title": "Cohort study", "status": "Active"})

	ctx := backend.WithToken(context.Background(), "admin-token")
	if _, err := content.Projects().List(ctx, service.ScopeAdmin, models.FilterState{}, 0); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := content.Projects().List(context.Background(), service.ScopeAdmin, models.FilterState{}, 0); err != nil {
		t.Fatalf("List: %v", err)
	}
	tokens := fb.Tokens()
	if len(tokens) != 2 || tokens[0] != "admin-token" || tokens[1] != "service-token" {
		t.Errorf("unexpected tokens %v", tokens)
	}
}
