// Package stats arma las vistas de lectura: el dashboard del owner y las mascotas
// con su historial reciente (actividades y planes).
package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
)

const (
	windowDays  = 7
	parallelism = 4
)

type OwnerGetter interface {
	GetByID(ctx context.Context, id string) (owners.Owner, error)
}

// PetReader lo implementa pets.Service.
type PetReader interface {
	Owned(ctx context.Context, ownerID, petID string) (pets.Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error)
}

type ActivityReader interface {
	History(ctx context.Context, petID string, since time.Time, limit int) ([]activities.ActivityLog, error)
}

type PlanReader interface {
	Latest(ctx context.Context, petID string, limit int) ([]careplans.CarePlan, error)
}

type PetStat struct {
	Pet              pets.Pet
	RecentActivities int
}

type DayBucket struct {
	Date          time.Time // medianoche local
	Count         int
	Walks         int
	Meals         int
	SymptomChecks int
}

type Dashboard struct {
	Owner         owners.Owner
	TotalPets     int
	PetStats      []PetStat
	ActivityByDay []DayBucket // 7 días, el más viejo primero; el último es hoy
}

type Service struct {
	owners OwnerGetter
	pets   PetReader
	acts   ActivityReader
	plans  PlanReader
	loc    *time.Location
	now    func() time.Time
}

func NewService(o OwnerGetter, p PetReader, a ActivityReader, pl PlanReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{owners: o, pets: p, acts: a, plans: pl, loc: loc, now: time.Now}
}

func (s *Service) Dashboard(ctx context.Context, ownerID string) (Dashboard, error) {
	var (
		owner   owners.Owner
		petList []pets.Pet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owner, err = s.owners.GetByID(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		petList, err = s.pets.ListByOwner(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := s.now()
	today := activities.DayStart(now, s.loc)
	first := today.AddDate(0, 0, -(windowDays - 1))

	buckets := make([]DayBucket, windowDays)
	for i := range buckets {
		buckets[i].Date = first.AddDate(0, 0, i)
	}

	// recentActivities y el histograma usan la misma ventana de días locales.
	// Un slot por pet: cada goroutine escribe solo el suyo.
	perPet := make([][]activities.ActivityLog, len(petList))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, p := range petList {
		g.Go(func() error {
			logs, err := s.acts.History(gctx, p.ID, first, 0)
			if err != nil {
				return err
			}
			perPet[i] = logs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	stats := make([]PetStat, 0, len(petList))
	for i, p := range petList {
		stats = append(stats, PetStat{Pet: p, RecentActivities: len(perPet[i])})
		for _, a := range perPet[i] {
			idx := dayIndex(activities.DayStart(a.LoggedAt, s.loc), first)
			if idx < 0 || idx >= windowDays {
				continue
			}
			b := &buckets[idx]
			b.Count++
			switch a.Kind {
			case activities.KindWalk:
				b.Walks++
			case activities.KindMeal:
				b.Meals++
			case activities.KindSymptomCheck:
				b.SymptomChecks++
			}
		}
	}

	return Dashboard{
		Owner:         owner,
		TotalPets:     len(petList),
		PetStats:      stats,
		ActivityByDay: buckets,
	}, nil
}

// dayIndex cuenta días de calendario, no bloques de 24h.
func dayIndex(day, first time.Time) int {
	for i := 0; i < windowDays; i++ {
		if first.AddDate(0, 0, i).Equal(day) {
			return i
		}
	}
	return -1
}
