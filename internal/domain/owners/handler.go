package owners

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/httpx"
	"pet-care-tracker/internal/platform/logger"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Post("/auth/sync", syncHandler(svc, log))
	r.Get("/owners/me", meHandler(svc, log))
}

type syncRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type OwnerResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	XPBalance int       `json:"xpBalance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type syncResponse struct {
	Owner   OwnerResponse `json:"owner"`
	Created bool          `json:"created"`
}

// syncHandler godoc
// @Summary      Sincroniza el owner autenticado
// @Description  Crea el owner en el primer login (id = id del proveedor de auth). Idempotente.
// @Tags         owners
// @Accept       json
// @Produce      json
// @Param        body  body      syncRequest  false  "Datos de perfil opcionales"
// @Success      200   {object}  syncResponse
// @Success      201   {object}  syncResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/sync [post]
func syncHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		var req syncRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		// los claims del token mandan sobre el body
		email := strings.TrimSpace(claims.Email)
		if email == "" {
			email = req.Email
		}
		name := strings.TrimSpace(claims.Name)
		if name == "" {
			name = req.Name
		}

		o, created, err := svc.Sync(r.Context(), SyncInput{ID: claims.UserID, Email: email, Name: name})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		httpx.WriteJSON(w, status, syncResponse{Owner: ToResponse(o), Created: created})
	}
}

// meHandler godoc
// @Summary      Owner actual
// @Tags         owners
// @Produce      json
// @Success      200  {object}  OwnerResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /owners/me [get]
func meHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		o, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(o))
	}
}

// ToResponse la reutiliza stats para el bloque owner del dashboard.
func ToResponse(o Owner) OwnerResponse {
	return OwnerResponse{
		ID:        o.ID,
		Email:     o.Email,
		Name:      o.Name,
		XPBalance: o.XPBalance,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
