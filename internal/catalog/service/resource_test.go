package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "voyago/internal/catalog/errors"
	"voyago/internal/catalog/validator"
	"voyago/pkg/config"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/logger"
	"voyago/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockResourceRepository struct {
	createFunc     func(ctx context.Context, resource *model.Resource) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Resource, error)
	findByNameFunc func(ctx context.Context, name string) (*model.Resource, error)
	updateFunc     func(ctx context.Context, id string, resource *model.Resource) (*mongo.UpdateResult, error)
	deleteFunc     func(ctx context.Context, id string) error
}

func (m *mockResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, resource)
	}
	resource.ID = "65a1b2c3d4e5f60718293a4b"
	return nil
}

func (m *mockResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockResourceRepository) FindAll(ctx context.Context, limit int, offset int) ([]*model.Resource, error) {
	return []*model.Resource{}, nil
}

func (m *mockResourceRepository) FindByName(ctx context.Context, name string) (*model.Resource, error) {
	if m.findByNameFunc != nil {
		return m.findByNameFunc(ctx, name)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockResourceRepository) Update(ctx context.Context, id string, resource *model.Resource) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, resource)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockResourceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockResourceRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestService(repo *mockResourceRepository) ResourceService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewResourceService(repo, validator.NewResourceValidator(log), cfg)
}

func carResource() *model.Resource {
	return &model.Resource{
		Name:          "  Compact car  ",
		Kind:          model.KindCar,
		Granularity:   model.GranularityDay,
		OperatingDays: []string{"Monday", "Tuesday", "Wednesday"},
	}
}

func TestCreate_SanitizesAndPersists(t *testing.T) {
	var created *model.Resource
	repo := &mockResourceRepository{
		createFunc: func(ctx context.Context, resource *model.Resource) error {
			created = resource
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Create(context.Background(), carResource()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("resource was not persisted")
	}
	if created.Name != "Compact car" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockResourceRepository{
		findByNameFunc: func(ctx context.Context, name string) (*model.Resource, error) {
			return &model.Resource{Name: name}, nil
		},
	}
	svc := newTestService(repo)

	err := svc.Create(context.Background(), carResource())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestCreate_InvalidResource(t *testing.T) {
	svc := newTestService(&mockResourceRepository{})

	resource := carResource()
	resource.OperatingDays = nil

	err := svc.Create(context.Background(), resource)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetResource_NotFound(t *testing.T) {
	svc := newTestService(&mockResourceRepository{})

	_, err := svc.GetResource(context.Background(), "65a1b2c3d4e5f60718293a4b")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdate_RevalidatesMergedResource(t *testing.T) {
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			r := carResource()
			r.ID = id
			r.Name = "Compact car"
			return r, nil
		},
	}
	svc := newTestService(repo)

	// Switching to slot granularity without slot templates leaves the merged
	// resource inconsistent.
	updates := &model.ResourceUpdate{Granularity: model.GranularitySlot}
	err := svc.Update(context.Background(), "65a1b2c3d4e5f60718293a4b", updates)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdate_RenameChecksDuplicates(t *testing.T) {
	repo := &mockResourceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			r := carResource()
			r.ID = id
			r.Name = "Compact car"
			return r, nil
		},
		findByNameFunc: func(ctx context.Context, name string) (*model.Resource, error) {
			return &model.Resource{Name: name}, nil
		},
	}
	svc := newTestService(repo)

	updates := &model.ResourceUpdate{Name: "Luxury car"}
	err := svc.Update(context.Background(), "65a1b2c3d4e5f60718293a4b", updates)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestDelete_InvalidID(t *testing.T) {
	repo := &mockResourceRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return catalogerrors.ErrInvalidID
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), "not-an-object-id")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}
