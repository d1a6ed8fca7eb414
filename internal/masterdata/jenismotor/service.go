package jenismotor

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]JenisMotor, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (JenisMotor, error) {
	if id <= 0 {
		return JenisMotor{}, errors.New("invalid jenis motor ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, jm JenisMotor) (JenisMotor, error) {
	if jm.Name == "" || jm.Brand == "" {
		return JenisMotor{}, errors.New("brand and name required")
	}
	if jm.Qty < 0 {
		return JenisMotor{}, errors.New("qty must not be negative")
	}
	return s.repo.Create(ctx, jm)
}

func (s *Service) Update(ctx context.Context, id int64, jm JenisMotor) error {
	if id <= 0 {
		return errors.New("invalid jenis motor ID")
	}
	if jm.Name == "" || jm.Brand == "" {
		return errors.New("brand and name required")
	}
	return s.repo.Update(ctx, id, jm)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid jenis motor ID")
	}
	return s.repo.Delete(ctx, id)
}
