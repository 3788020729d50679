package domain

import (
	"strings"
	"time"
)

// Service a bookable service from the catalog
type Service struct {
	ID              int64
	Title           string
	Description     string
	DurationMinutes int
	PriceCents      int64
	DepositCents    int64
	Images          []string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Duration returns the service duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// RequiresDeposit returns true if booking requires an upfront payment
func (s *Service) RequiresDeposit() bool {
	return s.DepositCents > 0
}

// DemoContent признаки демо-данных (seed), скрываемых вне dev-окружения
type DemoContent struct {
	ServiceTitles []string
	ImageMarker   string
	EmailDomain   string
}

// IsDemoService returns true for seeded demo services
func (d DemoContent) IsDemoService(s *Service) bool {
	for _, title := range d.ServiceTitles {
		if s.Title == title {
			return true
		}
	}
	if d.ImageMarker == "" {
		return false
	}
	for _, img := range s.Images {
		if strings.Contains(img, d.ImageMarker) {
			return true
		}
	}
	return false
}

// IsDemoEmail returns true for seeded demo accounts
func (d DemoContent) IsDemoEmail(email string) bool {
	if d.EmailDomain == "" {
		return false
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(normalized, "@"+strings.ToLower(d.EmailDomain))
}
