package activities

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/apperr"
	"pet-care-tracker/internal/platform/httpx"
	"pet-care-tracker/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/activity-logs", func(ar chi.Router) {
		ar.Get("/", listLogsHandler(svc, log))
		ar.Post("/", createLogHandler(svc, log))
	})
}

type createLogRequest struct {
	PetID          string   `json:"petId"`
	ActivityType   string   `json:"activityType"`
	Value          *float64 `json:"value"`
	Notes          string   `json:"notes"`
	IdempotencyKey string   `json:"idempotencyKey"`
}

type LogResponse struct {
	ID             string    `json:"id"`
	PetID          string    `json:"petId"`
	ActivityType   Kind      `json:"activityType"`
	Value          float64   `json:"value"`
	Notes          string    `json:"notes,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	LoggedAt       time.Time `json:"loggedAt"`
	CreatedAt      time.Time `json:"createdAt"`
}

type createLogResponse struct {
	Log        LogResponse `json:"log"`
	Idempotent bool        `json:"idempotent"`
	Streak     int         `json:"streak"`
}

type listLogsResponse struct {
	Logs []LogResponse `json:"logs"`
}

// createLogHandler godoc
// @Summary      Registra una actividad
// @Description  Otorga 10 XP y actualiza la racha. Con idempotencyKey repetida devuelve el registro original (idempotent=true).
// @Tags         activity-logs
// @Accept       json
// @Produce      json
// @Param        body  body      createLogRequest  true  "Actividad"
// @Success      201   {object}  createLogResponse
// @Success      200   {object}  createLogResponse  "replay idempotente"
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /activity-logs [post]
func createLogHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		var req createLogRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		if req.Value == nil {
			httpx.WriteError(w, log, apperr.Invalid("missing required fields", "value"))
			return
		}

		res, err := svc.Log(r.Context(), claims.UserID, LogInput{
			PetID:          req.PetID,
			Kind:           Kind(req.ActivityType),
			Value:          *req.Value,
			Notes:          req.Notes,
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		status := http.StatusCreated
		if res.Idempotent {
			status = http.StatusOK
		}
		httpx.WriteJSON(w, status, createLogResponse{
			Log:        ToResponse(res.Log),
			Idempotent: res.Idempotent,
			Streak:     res.Streak,
		})
	}
}

// listLogsHandler godoc
// @Summary      Lista actividades
// @Description  Del más nuevo al más viejo. Sin petId trae las de todas mis mascotas.
// @Tags         activity-logs
// @Produce      json
// @Param        petId  query     string  false  "Pet ID"
// @Param        days   query     int     false  "Últimos N días"
// @Success      200    {object}  listLogsResponse
// @Failure      400    {object}  map[string]any
// @Failure      401    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /activity-logs [get]
func listLogsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		q := r.URL.Query()
		days := 0
		if v := strings.TrimSpace(q.Get("days")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				httpx.WriteError(w, log, apperr.Invalid("days must be a positive integer", "days"))
				return
			}
			days = n
		}

		items, err := svc.List(r.Context(), claims.UserID, q.Get("petId"), days)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		out := make([]LogResponse, 0, len(items))
		for _, a := range items {
			out = append(out, ToResponse(a))
		}
		httpx.WriteJSON(w, http.StatusOK, listLogsResponse{Logs: out})
	}
}

func ToResponse(a ActivityLog) LogResponse {
	return LogResponse{
		ID:             a.ID,
		PetID:          a.PetID,
		ActivityType:   a.Kind,
		Value:          a.Value,
		Notes:          a.Notes,
		IdempotencyKey: a.IdempotencyKey,
		LoggedAt:       a.LoggedAt,
		CreatedAt:      a.CreatedAt,
	}
}
