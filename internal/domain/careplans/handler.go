package careplans

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/httpx"
	"pet-care-tracker/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/care-plans", func(cr chi.Router) {
		cr.Get("/", listPlansHandler(svc, log))
		cr.Post("/", generatePlanHandler(svc, log))
	})
}

type generatePlanRequest struct {
	PetID string `json:"petId"`
}

type CarePlanResponse struct {
	ID                 string    `json:"id"`
	PetID              string    `json:"petId"`
	Date               time.Time `json:"date"`
	TargetExerciseMins int       `json:"targetExerciseMins"`
	TargetCalories     int       `json:"targetCalories"`
	InsightText        string    `json:"aiInsightText"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

type generatePlanResponse struct {
	CarePlan CarePlanResponse `json:"carePlan"`
	Existing bool             `json:"existing"`
}

type listPlansResponse struct {
	CarePlans []CarePlanResponse `json:"carePlans"`
}

// generatePlanHandler godoc
// @Summary      Genera el plan de hoy
// @Description  Si ya hay plan para hoy lo devuelve (existing=true) sin generar ni dar XP. Máximo 5 pedidos por minuto por owner.
// @Tags         care-plans
// @Accept       json
// @Produce      json
// @Param        body  body      generatePlanRequest  true  "Mascota"
// @Success      201   {object}  generatePlanResponse
// @Success      200   {object}  generatePlanResponse  "plan existente"
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]any
// @Failure      502   {object}  map[string]any
// @Failure      504   {object}  map[string]any
// @Router       /care-plans [post]
func generatePlanHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		var req generatePlanRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		res, err := svc.Generate(r.Context(), claims.UserID, req.PetID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		status := http.StatusCreated
		if res.Existing {
			status = http.StatusOK
		}
		httpx.WriteJSON(w, status, generatePlanResponse{CarePlan: ToResponse(res.Plan), Existing: res.Existing})
	}
}

// listPlansHandler godoc
// @Summary      Historial de planes
// @Tags         care-plans
// @Produce      json
// @Param        petId  query     string  true  "Pet ID"
// @Success      200    {object}  listPlansResponse
// @Failure      400    {object}  map[string]any
// @Failure      401    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /care-plans [get]
func listPlansHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		items, err := svc.List(r.Context(), claims.UserID, r.URL.Query().Get("petId"))
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]CarePlanResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		httpx.WriteJSON(w, http.StatusOK, listPlansResponse{CarePlans: out})
	}
}

func ToResponse(p CarePlan) CarePlanResponse {
	return CarePlanResponse{
		ID:                 p.ID,
		PetID:              p.PetID,
		Date:               p.Date,
		TargetExerciseMins: p.TargetExerciseMins,
		TargetCalories:     p.TargetCalories,
		InsightText:        p.InsightText,
		Status:             p.Status,
		CreatedAt:          p.CreatedAt,
	}
}
