package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/service/catalog/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

type mockServiceRepo struct{ mock.Mock }

func (m *mockServiceRepo) Create(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Service, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) Update(ctx context.Context, s *domain.Service) (*domain.Service, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var demo = domain.DemoContent{
	ServiceTitles: []string{"Wash & Style"},
	ImageMarker:   "via.placeholder.com",
}

func TestList_HidesDemoContent(t *testing.T) {
	ctx := context.Background()
	repo := new(mockServiceRepo)
	repo.On("List", ctx, true).Return([]*domain.Service{
		{ID: 1, Title: "Wash & Style"},
		{ID: 2, Title: "Consultation", Images: []string{"https://via.placeholder.com/300"}},
		{ID: 3, Title: "Consultation"},
	}, nil)

	resp, err := NewService(repo, Options{HideDemoContent: true, Demo: demo}, nopLogger{}).
		List(ctx, &models.ListServicesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, int64(3), resp.Services[0].ID)

	shown, err := NewService(repo, Options{Demo: demo}, nopLogger{}).List(ctx, &models.ListServicesRequest{})
	require.NoError(t, err)
	assert.Len(t, shown.Services, 3)
}

func TestGetByID_DemoServiceIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockServiceRepo)
	repo.On("GetByID", ctx, int64(1)).Return(&domain.Service{ID: 1, Title: "Wash & Style"}, nil)
	repo.On("GetByID", ctx, int64(9)).Return(nil, serviceRepo.ErrServiceNotFound)

	svc := NewService(repo, Options{HideDemoContent: true, Demo: demo}, nopLogger{})

	_, err := svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	_, err = svc.GetByID(ctx, 9)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateServiceRequest
	}{
		{"empty title", models.CreateServiceRequest{Title: "  ", DurationMinutes: 60}},
		{"zero duration", models.CreateServiceRequest{Title: "Cut", DurationMinutes: 0}},
		{"too long", models.CreateServiceRequest{Title: "Cut", DurationMinutes: domain.MaxServiceDurationMinutes + 1}},
		{"negative price", models.CreateServiceRequest{Title: "Cut", DurationMinutes: 60, PriceCents: -1}},
		{"blank image", models.CreateServiceRequest{Title: "Cut", DurationMinutes: 60, Images: []string{""}}},
		{"line break in title", models.CreateServiceRequest{Title: "Cut\r\nBcc: all@example.com", DurationMinutes: 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockServiceRepo)
			_, err := NewService(repo, Options{}, nopLogger{}).Create(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_DefaultsToActive(t *testing.T) {
	ctx := context.Background()
	repo := new(mockServiceRepo)
	repo.On("Create", ctx, mock.MatchedBy(func(s *domain.Service) bool {
		return s.IsActive && s.Title == "Cut" && s.Images != nil
	})).Return(&domain.Service{ID: 5, Title: "Cut", DurationMinutes: 30, IsActive: true}, nil)

	resp, err := NewService(repo, Options{}, nopLogger{}).Create(ctx, &models.CreateServiceRequest{
		Title: " Cut ", DurationMinutes: 30, PriceCents: 1000, DepositCents: 2000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	assert.Equal(t, []string{}, resp.Images)
}

func TestUpdate_AppliesPartialChanges(t *testing.T) {
	ctx := context.Background()
	repo := new(mockServiceRepo)
	repo.On("GetByID", ctx, int64(2)).Return(&domain.Service{ID: 2, Title: "Cut", DurationMinutes: 30, IsActive: true}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(s *domain.Service) bool {
		return s.Title == "Cut" && s.DurationMinutes == 45 && !s.IsActive
	})).Return(&domain.Service{ID: 2, Title: "Cut", DurationMinutes: 45}, nil)

	resp, err := NewService(repo, Options{}, nopLogger{}).Update(ctx, 2, &models.UpdateServiceRequest{
		DurationMinutes: ptr.Ptr(45),
		IsActive:        ptr.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 45, resp.DurationMinutes)
	repo.AssertExpectations(t)
}

func TestDelete_ServiceInUse(t *testing.T) {
	ctx := context.Background()
	repo := new(mockServiceRepo)
	repo.On("Delete", ctx, int64(2)).Return(serviceRepo.ErrServiceInUse)
	repo.On("Delete", ctx, int64(3)).Return(serviceRepo.ErrServiceNotFound)

	svc := NewService(repo, Options{}, nopLogger{})
	assert.ErrorIs(t, svc.Delete(ctx, 2), ErrServiceInUse)
	assert.ErrorIs(t, svc.Delete(ctx, 3), ErrServiceNotFound)
}
