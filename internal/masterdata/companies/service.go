package companies

import (
	"context"
	"errors"

	"github.com/garasi-erp/garasi-erp/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, errors.New("invalid company ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, company Company) (Company, error) {
	if err := s.validate(company); err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, company)
}

func (s *Service) Update(ctx context.Context, id int64, company Company) error {
	if id <= 0 {
		return errors.New("invalid company ID")
	}
	if err := s.validate(company); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, company)
}

// AdjustModal adds a signed amount to a company's capital balance,
// for corrections outside the lifecycle routines (owner injections,
// withdrawals).
func (s *Service) AdjustModal(ctx context.Context, id int64, amount int64) error {
	if id <= 0 {
		return errors.New("invalid company ID")
	}
	if amount == 0 {
		return errors.New("adjustment amount required")
	}
	return s.repo.AdjustModal(ctx, id, amount)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid company ID")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(company Company) error {
	if company.Name == "" {
		return errors.New("company name required")
	}
	if company.Modal < 0 {
		return errors.New("modal must not be negative")
	}
	return nil
}
