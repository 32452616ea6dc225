package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/pets"
)

const (
	detailLogs = 30
	listLogs   = 10
	planLimit  = 7
)

// PetHistory es una mascota con sus últimas actividades y planes, el más nuevo primero.
type PetHistory struct {
	Pet        pets.Pet
	Activities []activities.ActivityLog
	CarePlans  []careplans.CarePlan
}

// PetDetail: perfil + últimas 30 actividades + últimos 7 planes.
func (s *Service) PetDetail(ctx context.Context, ownerID, petID string) (PetHistory, error) {
	p, err := s.pets.Owned(ctx, ownerID, petID)
	if err != nil {
		return PetHistory{}, err
	}
	return s.history(ctx, p, detailLogs)
}

// PetsWithHistory lista las mascotas del owner con 10 actividades y 7 planes cada una.
func (s *Service) PetsWithHistory(ctx context.Context, ownerID string) ([]PetHistory, error) {
	petList, err := s.pets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]PetHistory, len(petList))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, p := range petList {
		g.Go(func() error {
			h, err := s.history(gctx, p, listLogs)
			if err != nil {
				return err
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) history(ctx context.Context, p pets.Pet, logLimit int) (PetHistory, error) {
	h := PetHistory{Pet: p}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h.Activities, err = s.acts.History(gctx, p.ID, time.Time{}, logLimit)
		return err
	})
	g.Go(func() error {
		var err error
		h.CarePlans, err = s.plans.Latest(gctx, p.ID, planLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return PetHistory{}, err
	}
	return h, nil
}
