package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
)

type mockLinkRepository struct {
	createFn        func(ctx context.Context, link *model.Link) error
	getByCodeFn     func(ctx context.Context, code string) (*model.Link, error)
	getByIDFn       func(ctx context.Context, id string) (*model.Link, error)
	listByOwnerFn   func(ctx context.Context, ownerID string, limit, offset int) ([]model.Link, error)
	updateFn        func(ctx context.Context, link *model.Link) error
	deactivateFn    func(ctx context.Context, code string) error
	appendHistoryFn func(ctx context.Context, entry *model.LinkHistory) error
	listHistoryFn   func(ctx context.Context, linkID string) ([]model.LinkHistory, error)
}

func (m *mockLinkRepository) Create(ctx context.Context, link *model.Link) error {
	if m.createFn != nil {
		return m.createFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, code)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) GetByID(ctx context.Context, id string) (*model.Link, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Link, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID, limit, offset)
	}
	return nil, nil
}

func (m *mockLinkRepository) Update(ctx context.Context, link *model.Link) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) Deactivate(ctx context.Context, code string) error {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, code)
	}
	return nil
}

func (m *mockLinkRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *mockLinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (m *mockLinkRepository) AllCodes(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockLinkRepository) AppendHistory(ctx context.Context, entry *model.LinkHistory) error {
	if m.appendHistoryFn != nil {
		return m.appendHistoryFn(ctx, entry)
	}
	return nil
}

func (m *mockLinkRepository) ListHistory(ctx context.Context, linkID string) ([]model.LinkHistory, error) {
	if m.listHistoryFn != nil {
		return m.listHistoryFn(ctx, linkID)
	}
	return nil, nil
}

func newTestGenerator(t *testing.T) *CodeGenerator {
	t.Helper()
	gen, err := NewCodeGenerator(context.Background(), &mockLinkRepository{})
	if err != nil {
		t.Fatalf("NewCodeGenerator error: %v", err)
	}
	return gen
}

func TestLinkService_CreateLink_GeneratesCode(t *testing.T) {
	repo := &mockLinkRepository{
		createFn: func(ctx context.Context, link *model.Link) error {
			if link.ShortCode == "" {
				t.Fatal("expected generated short code")
			}
			if link.ID == "" {
				t.Fatal("expected id to be set")
			}
			if !link.Active || !link.ShowPreview || !link.AnalyticsEnabled {
				t.Fatal("expected defaults active/show_preview/analytics_enabled true")
			}
			if link.QRColor != "#000000" || link.QRBackground != "#FFFFFF" {
				t.Fatalf("unexpected default colors: %s / %s", link.QRColor, link.QRBackground)
			}
			return nil
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		Destination: "https://example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
}

func TestLinkService_CreateLink_CustomCode(t *testing.T) {
	repo := &mockLinkRepository{
		createFn: func(ctx context.Context, link *model.Link) error {
			if link.ShortCode != "mycode" {
				t.Fatalf("expected custom code, got %s", link.ShortCode)
			}
			return nil
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	_, err := svc.CreateLink(context.Background(), CreateLinkInput{
		Code:        "mycode",
		Destination: "https://example.com",
	})
	if err != nil {
		t.Fatalf("CreateLink returned error: %v", err)
	}
}

func TestLinkService_GetLink_NotFound(t *testing.T) {
	repo := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return nil, repository.ErrLinkNotFound
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	_, err := svc.GetLink(context.Background(), "missing")
	if !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestLinkService_UpdateLink_AppendsHistoryOnDestinationChange(t *testing.T) {
	owner := "owner-1"
	historyCalled := false

	repo := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{
				ID:          "link-1",
				OwnerID:     &owner,
				ShortCode:   code,
				Destination: "https://old.example.com",
			}, nil
		},
		appendHistoryFn: func(ctx context.Context, entry *model.LinkHistory) error {
			historyCalled = true
			if entry.OldURL != "https://old.example.com" {
				t.Fatalf("unexpected old url %s", entry.OldURL)
			}
			if entry.NewURL != "https://new.example.com" {
				t.Fatalf("unexpected new url %s", entry.NewURL)
			}
			if entry.ChangedBy == nil || *entry.ChangedBy != owner {
				t.Fatal("expected changed_by to carry the actor")
			}
			return nil
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	dest := "https://new.example.com"
	_, err := svc.UpdateLink(context.Background(), "abc", owner, UpdateLinkInput{
		Destination: &dest,
	})
	if err != nil {
		t.Fatalf("UpdateLink error: %v", err)
	}
	if !historyCalled {
		t.Fatal("expected history entry to be appended")
	}
}

func TestLinkService_UpdateLink_NoHistoryWhenDestinationUnchanged(t *testing.T) {
	repo := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{ID: "link-1", ShortCode: code, Destination: "https://same.example.com"}, nil
		},
		appendHistoryFn: func(ctx context.Context, entry *model.LinkHistory) error {
			t.Fatal("history must not be written for a title-only change")
			return nil
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	title := "New title"
	_, err := svc.UpdateLink(context.Background(), "abc", "", UpdateLinkInput{
		Title: &title,
	})
	if err != nil {
		t.Fatalf("UpdateLink error: %v", err)
	}
}

func TestLinkService_UpdateLink_RejectsForeignLink(t *testing.T) {
	owner := "owner-1"
	repo := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{ID: "link-1", OwnerID: &owner, ShortCode: code}, nil
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	active := false
	_, err := svc.UpdateLink(context.Background(), "abc", "someone-else", UpdateLinkInput{
		Active: &active,
	})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestLinkService_DeleteLink_SoftDeletes(t *testing.T) {
	deactivated := false
	repo := &mockLinkRepository{
		getByCodeFn: func(ctx context.Context, code string) (*model.Link, error) {
			return &model.Link{ID: "link-1", ShortCode: code}, nil
		},
		deactivateFn: func(ctx context.Context, code string) error {
			deactivated = true
			return nil
		},
	}

	svc := NewLinkService(repo, newTestGenerator(t))
	if err := svc.DeleteLink(context.Background(), "abc", ""); err != nil {
		t.Fatalf("DeleteLink error: %v", err)
	}
	if !deactivated {
		t.Fatal("expected Deactivate to be called")
	}
}
