package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/RigelNana/edumarket/pkg/metrics"
	"github.com/RigelNana/edumarket/pkg/session"
	"github.com/RigelNana/edumarket/services/resource-service/cache"
	"github.com/RigelNana/edumarket/services/resource-service/events"
	"github.com/RigelNana/edumarket/services/resource-service/listing"
	"github.com/RigelNana/edumarket/services/resource-service/models"
	"github.com/RigelNana/edumarket/services/resource-service/repository"
	"github.com/RigelNana/edumarket/services/resource-service/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// browseKey caches the non-rejected resource set, never a filtered view of it.
const browseKey = "browse"

const recentActivityLimit = 10

// Notice is the toast shown after an action.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var FetchFailedNotice = Notice{
	Title:       "Error loading resources",
	Description: "Failed to load educational resources.",
}

type BrowseResult struct {
	Resources []*models.Resource `json:"resources"`
	Total     int                `json:"total"`
	Shown     int                `json:"shown"`
}

type DownloadResult struct {
	Ack     Notice `json:"ack"`
	Counted bool   `json:"counted"`
	URL     string `json:"url,omitempty"`
	// Listing is the re-fetched, re-filtered set. Empty when ListingErr is set.
	Listing    *BrowseResult `json:"listing"`
	ListingErr error         `json:"-"`
}

type Dashboard struct {
	Uploads  []*models.Resource `json:"uploads"`
	Stats    listing.Stats      `json:"stats"`
	Activity []*models.Activity `json:"activity"`
}

type LandingStats struct {
	Categories   map[models.Category]int64 `json:"categories"`
	Totals       listing.Stats             `json:"totals"`
	Contributors int                       `json:"contributors"`
}

type AdminResources struct {
	Resources []*models.Resource       `json:"resources"`
	Totals    listing.Stats            `json:"totals"`
	ByOwner   map[string]listing.Stats `json:"by_owner"`
	Pending   int64                    `json:"pending"`
}

type ResourceService interface {
	Browse(ctx context.Context, query string, category models.Category) (*BrowseResult, error)
	// View counts one view. Rejected resources are only visible to admins.
	View(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Resource, error)
	Download(ctx context.Context, sess session.Session, id uuid.UUID, query string, category models.Category) (*DownloadResult, error)
	Delete(ctx context.Context, sess session.Session, id uuid.UUID) error
	Upload(ctx context.Context, sess session.Session, in UploadInput) (*models.Resource, error)
	SetStatus(ctx context.Context, sess session.Session, id uuid.UUID, status string) error
	UserDashboard(ctx context.Context, user session.User) (*Dashboard, error)
	Landing(ctx context.Context) (*LandingStats, error)
	AdminResources(ctx context.Context) (*AdminResources, error)
}

type Options struct {
	URLExpiry time.Duration
}

type ResourceServiceImpl struct {
	repo       repository.ResourceRepository
	activities repository.ActivityRepository
	// storage may be nil: records are then metadata only.
	storage   storage.ObjectStorage
	cache     cache.ListingCache
	publisher events.Publisher
	opts      Options
	log       *logrus.Logger
}

func NewResourceService(
	repo repository.ResourceRepository,
	activities repository.ActivityRepository,
	store storage.ObjectStorage,
	c cache.ListingCache,
	pub events.Publisher,
	opts Options,
	log *logrus.Logger,
) ResourceService {
	if c == nil {
		c = cache.Nop{}
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = 15 * time.Minute
	}
	return &ResourceServiceImpl{
		repo:       repo,
		activities: activities,
		storage:    store,
		cache:      c,
		publisher:  pub,
		opts:       opts,
		log:        log,
	}
}

func (s *ResourceServiceImpl) Browse(ctx context.Context, query string, category models.Category) (*BrowseResult, error) {
	all, err := s.selectAll(ctx)
	if err != nil {
		return nil, err
	}
	shown := listing.Filter(all, query, category)
	return &BrowseResult{
		Resources: shown,
		Total:     len(all),
		Shown:     len(shown),
	}, nil
}

// selectAll is the browse select: every resource except rejected ones, newest first.
// The cache key carries the generation read before the database, so a result
// loaded across an invalidation is never served afterwards.
func (s *ResourceServiceImpl) selectAll(ctx context.Context) ([]*models.Resource, error) {
	gen, err := s.cache.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		s.log.WithError(err).Warn("listing cache generation read failed")
	}
	key := fmt.Sprintf("%s:%d", browseKey, gen)

	if cacheable {
		var cached []*models.Resource
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("listing cache read failed")
		}
		if hit {
			return cached, nil
		}
	}

	all, err := s.repo.ListResources(ctx, repository.ResourceFilter{ExcludeStatus: models.StatusRejected})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	if cacheable {
		if err := s.cache.Set(ctx, key, all); err != nil {
			s.log.WithError(err).Warn("listing cache write failed")
		}
	}
	return all, nil
}

func (s *ResourceServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("listing cache invalidation failed")
	}
}

func (s *ResourceServiceImpl) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WithError(err).WithField("kind", e.Kind).Warn("failed to publish resource event")
	}
}

func (s *ResourceServiceImpl) View(ctx context.Context, sess session.Session, id uuid.UUID) (*models.Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status == models.StatusRejected && !session.IsAdmin(sess) {
		return nil, ErrNotFound
	}
	if err := s.repo.IncrementCounter(ctx, id, repository.CounterViews); err != nil {
		metrics.RecordAction("view", false)
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	metrics.RecordAction("view", true)
	s.invalidate(ctx)
	return s.repo.GetByID(ctx, id)
}

// Download counts one download and re-fetches the listing. The acknowledgment
// is returned even when the counter could not be updated; Counted reports it.
func (s *ResourceServiceImpl) Download(ctx context.Context, sess session.Session, id uuid.UUID, query string, category models.Category) (*DownloadResult, error) {
	if sess == nil {
		return nil, ErrAuthRequired
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	result := &DownloadResult{
		Ack: Notice{
			Title:       "Download Started",
			Description: fmt.Sprintf("Downloading %s...", res.Title),
		},
	}

	if err := s.repo.IncrementCounter(ctx, id, repository.CounterDownloads); err != nil {
		s.log.WithError(err).WithField("resource_id", id).Error("Error updating downloads")
	} else {
		result.Counted = true
		s.invalidate(ctx)
		s.publish(ctx, events.Event{
			Kind:          models.ActivityDownloaded,
			ResourceID:    res.ID,
			ResourceTitle: res.Title,
			Owner:         res.UploadedBy,
			Actor:         sess.Owner(),
		})
	}
	metrics.RecordAction("download", result.Counted)

	if s.storage != nil && res.StorageKey != "" {
		url, err := s.storage.PresignedURL(ctx, res.StorageKey, s.opts.URLExpiry)
		if err != nil {
			s.log.WithError(err).WithField("resource_id", id).Warn("presign failed")
		} else {
			result.URL = url
		}
	}

	listed, err := s.Browse(ctx, query, category)
	if err != nil {
		s.log.WithError(err).Error("Error fetching resources")
		result.ListingErr = err
		result.Listing = &BrowseResult{Resources: []*models.Resource{}}
	} else {
		result.Listing = listed
	}
	return result, nil
}

// Delete removes a resource owned by the session, or any resource for an admin.
func (s *ResourceServiceImpl) Delete(ctx context.Context, sess session.Session, id uuid.UUID) error {
	if sess == nil {
		return ErrAuthRequired
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get resource: %w", err)
	}
	if !session.IsAdmin(sess) && res.UploadedBy != sess.Owner() {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.RecordAction("delete", false)
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	metrics.RecordAction("delete", true)
	s.invalidate(ctx)

	if s.storage != nil && res.StorageKey != "" {
		if err := s.storage.Remove(ctx, res.StorageKey); err != nil {
			s.log.WithError(err).WithField("object", res.StorageKey).Warn("orphaned object left in storage")
		}
	}

	s.publish(ctx, events.Event{
		Kind:          models.ActivityDeleted,
		ResourceID:    res.ID,
		ResourceTitle: res.Title,
		Owner:         res.UploadedBy,
		Actor:         sess.Owner(),
	})
	return nil
}

func (s *ResourceServiceImpl) Upload(ctx context.Context, sess session.Session, in UploadInput) (*models.Resource, error) {
	if sess == nil {
		return nil, ErrAuthRequired
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	res := &models.Resource{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(in.Title),
		Category:   in.Category,
		Subject:    strings.TrimSpace(in.Subject),
		FileName:   filepath.Base(in.FileName),
		FileSize:   FormatFileSize(in.Size),
		FileType:   FileType(in.FileName),
		UploadedBy: sess.Owner(),
		UploadDate: time.Now().UTC(),
		Status:     models.StatusApproved,
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		res.Description = &d
	}

	if s.storage != nil {
		key := fmt.Sprintf("resources/%s%s", res.ID, strings.ToLower(filepath.Ext(in.FileName)))
		if err := s.storage.Put(ctx, key, in.Content, in.Size, storage.ContentType(in.FileName)); err != nil {
			metrics.RecordAction("upload", false)
			return nil, err
		}
		res.StorageKey = key
	}

	if err := s.repo.Create(ctx, res); err != nil {
		metrics.RecordAction("upload", false)
		if res.StorageKey != "" {
			if rmErr := s.storage.Remove(ctx, res.StorageKey); rmErr != nil {
				s.log.WithError(rmErr).WithField("object", res.StorageKey).Warn("orphaned object left in storage")
			}
		}
		return nil, fmt.Errorf("failed to save resource record: %w", err)
	}
	metrics.RecordAction("upload", true)
	s.invalidate(ctx)

	s.publish(ctx, events.Event{
		Kind:          models.ActivityUploaded,
		ResourceID:    res.ID,
		ResourceTitle: res.Title,
		Owner:         res.UploadedBy,
		Actor:         res.UploadedBy,
		Metadata:      map[string]string{"file_type": res.FileType, "file_size": res.FileSize},
	})
	return res, nil
}

// SetStatus moderates a resource. Admin sessions only.
func (s *ResourceServiceImpl) SetStatus(ctx context.Context, sess session.Session, id uuid.UUID, status string) error {
	if sess == nil {
		return ErrAuthRequired
	}
	if !session.IsAdmin(sess) {
		return ErrForbidden
	}
	if !models.ValidStatus(status) {
		return &ValidationError{Field: "status", Message: "must be one of approved, pending, rejected"}
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get resource: %w", err)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		metrics.RecordAction("moderate", false)
		return fmt.Errorf("failed to update status: %w", err)
	}
	metrics.RecordAction("moderate", true)
	s.invalidate(ctx)

	s.publish(ctx, events.Event{
		Kind:          models.ActivityModerated,
		ResourceID:    res.ID,
		ResourceTitle: res.Title,
		Owner:         res.UploadedBy,
		Actor:         sess.Owner(),
		Metadata:      map[string]string{"from": res.Status, "to": status},
	})
	return nil
}

func (s *ResourceServiceImpl) UserDashboard(ctx context.Context, user session.User) (*Dashboard, error) {
	uploads, err := s.repo.ListResources(ctx, repository.ResourceFilter{UploadedBy: user.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	activity, err := s.activities.ListByOwner(ctx, user.Email, recentActivityLimit)
	if err != nil {
		// the feed is secondary to the uploads card
		s.log.WithError(err).Warn("failed to load recent activity")
		activity = []*models.Activity{}
	}

	return &Dashboard{
		Uploads:  uploads,
		Stats:    listing.Aggregate(uploads),
		Activity: activity,
	}, nil
}

func (s *ResourceServiceImpl) Landing(ctx context.Context) (*LandingStats, error) {
	all, err := s.selectAll(ctx)
	if err != nil {
		return nil, err
	}
	return &LandingStats{
		Categories:   listing.CountByCategory(all),
		Totals:       listing.Aggregate(all),
		Contributors: len(listing.AggregateByOwner(all)),
	}, nil
}

func (s *ResourceServiceImpl) AdminResources(ctx context.Context) (*AdminResources, error) {
	all, err := s.repo.ListResources(ctx, repository.ResourceFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	pending, err := s.repo.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending resources: %w", err)
	}
	return &AdminResources{
		Resources: all,
		Totals:    listing.Aggregate(all),
		ByOwner:   listing.AggregateByOwner(all),
		Pending:   pending,
	}, nil
}
