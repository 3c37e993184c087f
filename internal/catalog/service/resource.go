package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	catalogerrors "voyago/internal/catalog/errors"
	"voyago/internal/catalog/repository"
	"voyago/internal/catalog/validator"
	"voyago/pkg/config"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/model"
)

type ResourceService interface {
	Create(ctx context.Context, resource *model.Resource) error
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	GetAll(ctx context.Context, limit int, offset int) ([]*model.Resource, int64, error)
	Update(ctx context.Context, id string, updates *model.ResourceUpdate) error
	Delete(ctx context.Context, id string) error
}

type resourceService struct {
	repo      repository.ResourceRepository
	validator *validator.ResourceValidator
	cfg       *config.Config
}

func NewResourceService(
	repo repository.ResourceRepository,
	validator *validator.ResourceValidator,
	cfg *config.Config,
) ResourceService {
	return &resourceService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *resourceService) Create(ctx context.Context, resource *model.Resource) error {
	s.sanitize(resource)

	if err := s.validator.Validate(resource); err != nil {
		s.cfg.Log.Warn("Resource validation failed",
			"name", resource.Name,
			"error", err,
		)
		return apperrors.Validation("Resource validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByName(ctx, resource.Name)
	if err != nil && !errors.Is(err, catalogerrors.ErrNotFound) {
		return apperrors.Internal("Failed to check for existing resources", err)
	}
	if existing != nil {
		return apperrors.Conflict("Resource with the same name already exists")
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		s.cfg.Log.Error("Failed to create resource",
			"name", resource.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create resource", err)
	}

	s.cfg.Log.Info("Resource created successfully",
		"id", resource.ID,
		"name", resource.Name,
		"kind", resource.Kind,
		"granularity", resource.Granularity,
	)
	return nil
}

func (s *resourceService) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to get resource by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve resource", err)
	}

	return resource, nil
}

func (s *resourceService) GetAll(ctx context.Context, limit int, offset int) ([]*model.Resource, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = int(config.NormalizeOffset(int64(offset)))

	var (
		wg        sync.WaitGroup
		resources []*model.Resource
		count     int64
		listErr   error
		countErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		resources, listErr = s.repo.FindAll(ctx, limit, offset)
	}()
	go func() {
		defer wg.Done()
		count, countErr = s.repo.Count(ctx)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, 0, apperrors.Internal("Failed to list resources", listErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("Failed to count resources", countErr)
	}

	return resources, count, nil
}

func (s *resourceService) Update(ctx context.Context, id string, updates *model.ResourceUpdate) error {
	existing, err := s.GetResource(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return apperrors.Validation("Resource update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	merged := applyUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Resource update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if !strings.EqualFold(merged.Name, existing.Name) {
		duplicate, err := s.repo.FindByName(ctx, merged.Name)
		if err != nil && !errors.Is(err, catalogerrors.ErrNotFound) {
			return apperrors.Internal("Failed to check for existing resources", err)
		}
		if duplicate != nil {
			return apperrors.Conflict("Resource with the same name already exists")
		}
	}

	result, err := s.repo.Update(ctx, id, merged)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to update resource",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update resource", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundWithID("Resource", id)
	}

	s.cfg.Log.Info("Resource updated successfully", "id", id)
	return nil
}

func (s *resourceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Resource ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Resource", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid resource ID format")
		}
		s.cfg.Log.Error("Failed to delete resource",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete resource", err)
	}

	s.cfg.Log.Info("Resource deleted successfully", "id", id)
	return nil
}

func (s *resourceService) sanitize(resource *model.Resource) {
	resource.Name = strings.TrimSpace(resource.Name)
	resource.TimeZone = strings.TrimSpace(resource.TimeZone)
	for i, t := range resource.SlotTemplates {
		resource.SlotTemplates[i] = strings.TrimSpace(t)
	}
	resource.EndOfDay = strings.TrimSpace(resource.EndOfDay)
}

func applyUpdates(existing *model.Resource, updates *model.ResourceUpdate) *model.Resource {
	merged := *existing

	if updates.Name != "" {
		merged.Name = strings.TrimSpace(updates.Name)
	}
	if updates.Kind != "" {
		merged.Kind = updates.Kind
	}
	if updates.Granularity != "" {
		merged.Granularity = updates.Granularity
	}
	if len(updates.OperatingDays) > 0 {
		merged.OperatingDays = updates.OperatingDays
	}
	if updates.SlotTemplates != nil {
		merged.SlotTemplates = *updates.SlotTemplates
	}
	if updates.EndOfDay != "" {
		merged.EndOfDay = updates.EndOfDay
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}

	return &merged
}
