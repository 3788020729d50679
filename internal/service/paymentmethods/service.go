package paymentmethods

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/payments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/paymentmethods/models"
)

// Service сервис сохраненных карт пользователя
type Service struct {
	userRepo UserRepository
	provider PaymentProvider
	logger   Logger
}

// NewService создает новый экземпляр сервиса
func NewService(userRepo UserRepository, provider PaymentProvider, logger Logger) *Service {
	return &Service{
		userRepo: userRepo,
		provider: provider,
		logger:   logger,
	}
}

// List получает сохраненные карты пользователя.
// Без настроенного провайдера или без клиента у провайдера список пуст.
func (s *Service) List(ctx context.Context, userID int64) (*models.CardListResponse, error) {
	s.logger.Info("List: fetching payment methods for user=%d", userID)

	if !s.provider.IsAvailable() {
		return models.FromCards(nil), nil
	}

	customerRef, err := s.customerRef(ctx, "List", userID)
	if err != nil {
		return nil, err
	}
	if customerRef == "" {
		return models.FromCards(nil), nil
	}

	cards, err := s.provider.ListPaymentMethods(ctx, customerRef)
	if err != nil {
		s.logger.Error("List: provider error for customer %s: %v", customerRef, err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	s.logger.Info("List: successfully fetched %d payment methods for user=%d", len(cards), userID)
	return models.FromCards(cards), nil
}

// Detach отвязывает карту пользователя.
// Отвязать можно только карту, привязанную к клиенту этого пользователя.
func (s *Service) Detach(ctx context.Context, userID int64, methodRef string) error {
	s.logger.Info("Detach: detaching payment method %s for user=%d", methodRef, userID)

	methodRef = strings.TrimSpace(methodRef)
	if methodRef == "" {
		return fmt.Errorf("%w: payment method id is required", ErrInvalidInput)
	}
	if !s.provider.IsAvailable() {
		return ErrPaymentsUnavailable
	}

	customerRef, err := s.customerRef(ctx, "Detach", userID)
	if err != nil {
		return err
	}
	if customerRef == "" {
		return ErrMethodNotFound
	}

	cards, err := s.provider.ListPaymentMethods(ctx, customerRef)
	if err != nil {
		s.logger.Error("Detach: provider error for customer %s: %v", customerRef, err)
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if !containsCard(cards, methodRef) {
		s.logger.Warn("Detach: payment method %s does not belong to user=%d", methodRef, userID)
		return ErrMethodNotFound
	}

	if err := s.provider.DetachPaymentMethod(ctx, methodRef); err != nil {
		s.logger.Error("Detach: provider error for payment method %s: %v", methodRef, err)
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}

	s.logger.Info("Detach: successfully detached payment method %s", methodRef)
	return nil
}

func (s *Service) customerRef(ctx context.Context, op string, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("%s: user id=%d not found", op, userID)
			return "", ErrUserNotFound
		}
		s.logger.Error("%s: repository error for user id=%d: %v", op, userID, err)
		return "", fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	if !user.HasPaymentCustomer() {
		return "", nil
	}
	return *user.PaymentCustomerReference, nil
}

func containsCard(cards []payments.Card, id string) bool {
	for _, c := range cards {
		if c.ID == id {
			return true
		}
	}
	return false
}
