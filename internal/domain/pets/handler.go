package pets

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/httpx"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/ports/ai"
)

// RegisterRoutes monta las escrituras de /pets. Las lecturas con historial
// (actividades y planes) viven en otro paquete y entran por reads.
func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger, reads ...func(chi.Router)) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc, log))
		pr.Patch("/{petID}", updatePetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))

		for _, mount := range reads {
			mount(pr)
		}
	})
}

type createPetRequest struct {
	Name      string   `json:"name"`
	Breed     string   `json:"breed"`
	WeightLbs *float64 `json:"weightLbs"`
	AgeYears  *int     `json:"ageYears"`
	PhotoURL  string   `json:"photoUrl"`
}

// Punteros para PATCH real: nil = no tocar. currentStreak no es editable.
type updatePetRequest struct {
	Name      *string  `json:"name"`
	Breed     *string  `json:"breed"`
	WeightLbs *float64 `json:"weightLbs"`
	AgeYears  *int     `json:"ageYears"`
	PhotoURL  *string  `json:"photoUrl"`
}

type PetResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId"`
	Name          string    `json:"name"`
	Breed         string    `json:"breed,omitempty"`
	WeightLbs     *float64  `json:"weightLbs,omitempty"`
	AgeYears      *int      `json:"ageYears,omitempty"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	CurrentStreak int       `json:"currentStreak"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type createPetResponse struct {
	Pet    PetResponse    `json:"pet"`
	AIData *ai.BreedGuess `json:"aiData"`
}

// createPetHandler godoc
// @Summary      Crea una mascota
// @Description  Si viene photoUrl se intenta detectar la raza; si falla, la mascota se crea igual (aiData = null). Otorga 50 XP.
// @Tags         pets
// @Accept       json
// @Produce      json
// @Param        body  body      createPetRequest  true  "Perfil"
// @Success      201   {object}  createPetResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		var req createPetRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		res, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:      req.Name,
			Breed:     req.Breed,
			WeightLbs: req.WeightLbs,
			AgeYears:  req.AgeYears,
			PhotoURL:  req.PhotoURL,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, createPetResponse{Pet: ToResponse(res.Pet), AIData: res.AIData})
	}
}

// updatePetHandler godoc
// @Summary      Actualiza el perfil
// @Tags         pets
// @Accept       json
// @Produce      json
// @Param        petID  path      string            true  "Pet ID"
// @Param        body   body      updatePetRequest  true  "Campos a cambiar"
// @Success      200    {object}  PetResponse
// @Failure      400    {object}  map[string]any
// @Failure      404    {object}  map[string]string
// @Router       /pets/{petID} [patch]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		var req updatePetRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, log, err)
			return
		}

		p, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "petID"), UpdateInput{
			Name:      req.Name,
			Breed:     req.Breed,
			WeightLbs: req.WeightLbs,
			AgeYears:  req.AgeYears,
			PhotoURL:  req.PhotoURL,
		})
		if err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ToResponse(p))
	}
}

// deletePetHandler godoc
// @Summary      Borra una mascota
// @Description  Borra también sus actividades y planes.
// @Tags         pets
// @Param        petID  path  string  true  "Pet ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.Unauthorized(w)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "petID")); err != nil {
			httpx.WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ToResponse(p Pet) PetResponse {
	return PetResponse{
		ID:            p.ID,
		OwnerID:       p.OwnerID,
		Name:          p.Name,
		Breed:         p.Breed,
		WeightLbs:     p.WeightLbs,
		AgeYears:      p.AgeYears,
		PhotoURL:      p.PhotoURL,
		CurrentStreak: p.CurrentStreak,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
