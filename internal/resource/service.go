package resource

import (
	"context"
)

type CreateRequest struct {
	Name               string
	Description        string
	Building           string
	Capacity           int
	MinSlotsPerBooking int
	MaxSlotsPerBooking int
	AdvanceBookingDays int
	OperatingStartSlot int
	OperatingEndSlot   int
	RequiresApproval   bool
}

type UpdateRequest struct {
	Name               *string
	Description        *string
	Building           *string
	Capacity           *int
	MinSlotsPerBooking *int
	MaxSlotsPerBooking *int
	AdvanceBookingDays *int
	OperatingStartSlot *int
	OperatingEndSlot   *int
	IsActive           *bool
	RequiresApproval   *bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id int64) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*Resource, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	if req.Name == "" {
		return nil, ErrEmptyName
	}
	if req.OperatingStartSlot >= req.OperatingEndSlot {
		return nil, ErrInvalidSlots
	}
	if req.MinSlotsPerBooking < 1 {
		req.MinSlotsPerBooking = 1
	}
	if req.AdvanceBookingDays < 1 {
		req.AdvanceBookingDays = 14
	}

	r := &Resource{
		Name:               req.Name,
		Description:        req.Description,
		Building:           req.Building,
		Capacity:           req.Capacity,
		MinSlotsPerBooking: req.MinSlotsPerBooking,
		MaxSlotsPerBooking: req.MaxSlotsPerBooking,
		AdvanceBookingDays: req.AdvanceBookingDays,
		OperatingStartSlot: req.OperatingStartSlot,
		OperatingEndSlot:   req.OperatingEndSlot,
		IsActive:           true,
		RequiresApproval:   req.RequiresApproval,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*Resource, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, ErrEmptyName
		}
		r.Name = *req.Name
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Building != nil {
		r.Building = *req.Building
	}
	if req.Capacity != nil {
		r.Capacity = *req.Capacity
	}
	if req.MinSlotsPerBooking != nil {
		r.MinSlotsPerBooking = *req.MinSlotsPerBooking
	}
	if req.MaxSlotsPerBooking != nil {
		r.MaxSlotsPerBooking = *req.MaxSlotsPerBooking
	}
	if req.AdvanceBookingDays != nil {
		r.AdvanceBookingDays = *req.AdvanceBookingDays
	}
	if req.OperatingStartSlot != nil {
		r.OperatingStartSlot = *req.OperatingStartSlot
	}
	if req.OperatingEndSlot != nil {
		r.OperatingEndSlot = *req.OperatingEndSlot
	}
	if r.OperatingStartSlot >= r.OperatingEndSlot {
		return nil, ErrInvalidSlots
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	if req.RequiresApproval != nil {
		r.RequiresApproval = *req.RequiresApproval
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
