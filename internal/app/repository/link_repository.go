package repository

import (
	"context"
	"errors"
	"time"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrCodeTaken signals a short-code uniqueness violation on create.
	ErrCodeTaken = errors.New("short code already taken")
)

// LinkRepository defines the data access contract for short links.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByCode(ctx context.Context, code string) (*model.Link, error)
	GetByID(ctx context.Context, id string) (*model.Link, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Link, error)
	Update(ctx context.Context, link *model.Link) error
	Deactivate(ctx context.Context, code string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	AllCodes(ctx context.Context) ([]string, error)
	AppendHistory(ctx context.Context, entry *model.LinkHistory) error
	ListHistory(ctx context.Context, linkID string) ([]model.LinkHistory, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrCodeTaken
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) GetByID(ctx context.Context, id string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.Link, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var result []model.Link
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *linkRepository) Update(ctx context.Context, link *model.Link) error {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("id = ?", link.ID).
		Updates(map[string]interface{}{
			"destination":       link.Destination,
			"title":             link.Title,
			"active":            link.Active,
			"show_preview":      link.ShowPreview,
			"analytics_enabled": link.AnalyticsEnabled,
			"qr_color":          link.QRColor,
			"qr_background":     link.QRBackground,
			"expires_at":        link.ExpiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}

	return r.db.WithContext(ctx).Where("id = ?", link.ID).First(link).Error
}

// Deactivate flips the active flag; scan history stays intact.
func (r *linkRepository) Deactivate(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("short_code = ?", code).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// DeactivateExpired flips the active flag on every link whose expiry has
// passed, returning the number of rows touched.
func (r *linkRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("active = ? AND expires_at IS NOT NULL AND expires_at < ?", true, now).
		Update("active", false)
	return result.RowsAffected, result.Error
}

func (r *linkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("short_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AllCodes returns every short code; used to seed the generator's bloom filter.
func (r *linkRepository) AllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("short_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *linkRepository) AppendHistory(ctx context.Context, entry *model.LinkHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *linkRepository) ListHistory(ctx context.Context, linkID string) ([]model.LinkHistory, error) {
	var history []model.LinkHistory
	if err := r.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("changed_at DESC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
