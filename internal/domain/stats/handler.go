package stats

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/httpx"
	"pet-care-tracker/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/owners/me/stats", dashboardHandler(svc, log))
}

type petStatResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	CurrentStreak    int    `json:"currentStreak"`
	RecentActivities int    `json:"recentActivities"`
}

type dayResponse struct {
	Date          string `json:"date"` // YYYY-MM-DD local
	Count         int    `json:"count"`
	Walks         int    `json:"walks"`
	Meals         int    `json:"meals"`
	SymptomChecks int    `json:"symptomChecks"`
}

type dashboardResponse struct {
	Owner         owners.OwnerResponse `json:"owner"`
	TotalPets     int                  `json:"totalPets"`
	PetStats      []petStatResponse    `json:"petStats"`
	ActivityByDay []dayResponse        `json:"activityByDay"`
}

// dashboardHandler godoc
// @Summary      Dashboard del owner
// @Description  XP, mascotas con racha y actividades de los últimos 7 días, e histograma diario (el más viejo primero).
// @Tags         owners
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /owners/me/stats [get]
func dashboardHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		d, err := svc.Dashboard(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := dashboardResponse{
			Owner:         owners.ToResponse(d.Owner),
			TotalPets:     d.TotalPets,
			PetStats:      make([]petStatResponse, 0, len(d.PetStats)),
			ActivityByDay: make([]dayResponse, 0, len(d.ActivityByDay)),
		}
		for _, ps := range d.PetStats {
			out.PetStats = append(out.PetStats, petStatResponse{
				ID:               ps.Pet.ID,
				Name:             ps.Pet.Name,
				CurrentStreak:    ps.Pet.CurrentStreak,
				RecentActivities: ps.RecentActivities,
			})
		}
		for _, b := range d.ActivityByDay {
			out.ActivityByDay = append(out.ActivityByDay, dayResponse{
				Date:          b.Date.Format(time.DateOnly),
				Count:         b.Count,
				Walks:         b.Walks,
				Meals:         b.Meals,
				SymptomChecks: b.SymptomChecks,
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// PetReadRoutes monta GET /pets y GET /pets/{petID} dentro del subrouter de pets.
func PetReadRoutes(svc *Service, log logger.Logger) func(chi.Router) {
	return func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc, log))
		pr.Get("/{petID}", getPetHandler(svc, log))
	}
}

type petHistoryResponse struct {
	pets.PetResponse
	ActivityLogs []activities.LogResponse    `json:"activityLogs"`
	CarePlans    []careplans.CarePlanResponse `json:"carePlans"`
}

type petDetailResponse struct {
	Pet petHistoryResponse `json:"pet"`
}

type listPetsResponse struct {
	Pets []petHistoryResponse `json:"pets"`
}

// listPetsHandler godoc
// @Summary      Lista mis mascotas
// @Description  Cada mascota trae sus últimas 10 actividades y 7 planes.
// @Tags         pets
// @Produce      json
// @Success      200  {object}  listPetsResponse
// @Failure      401  {object}  map[string]string
// @Router       /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		items, err := svc.PetsWithHistory(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := listPetsResponse{Pets: make([]petHistoryResponse, 0, len(items))}
		for _, h := range items {
			out.Pets = append(out.Pets, toHistoryResponse(h))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary      Perfil de una mascota
// @Description  Incluye las últimas 30 actividades y los últimos 7 planes.
// @Tags         pets
// @Produce      json
// @Param        petID  path      string  true  "Pet ID"
// @Success      200    {object}  petDetailResponse
// @Failure      401    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		h, err := svc.PetDetail(r.Context(), claims.UserID, chi.URLParam(r, "petID"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, petDetailResponse{Pet: toHistoryResponse(h)})
	}
}

func toHistoryResponse(h PetHistory) petHistoryResponse {
	out := petHistoryResponse{
		PetResponse:  pets.ToResponse(h.Pet),
		ActivityLogs: make([]activities.LogResponse, 0, len(h.Activities)),
		CarePlans:    make([]careplans.CarePlanResponse, 0, len(h.CarePlans)),
	}
	for _, a := range h.Activities {
		out.ActivityLogs = append(out.ActivityLogs, activities.ToResponse(a))
	}
	for _, p := range h.CarePlans {
		out.CarePlans = append(out.CarePlans, careplans.ToResponse(p))
	}
	return out
}
