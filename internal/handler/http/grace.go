package http

import (
	"encoding/json"
	"net/http"

	"github.com/bizzpass/crm-backend-go/internal/domain/grace"
	"github.com/bizzpass/crm-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type GraceHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
	ResolveConfig(w http.ResponseWriter, r *http.Request)

	CreateFineModal(w http.ResponseWriter, r *http.Request)
	GetFineModal(w http.ResponseWriter, r *http.Request)
	ListFineModals(w http.ResponseWriter, r *http.Request)
	UpdateFineModal(w http.ResponseWriter, r *http.Request)
	DeleteFineModal(w http.ResponseWriter, r *http.Request)
}

type graceHandlerImpl struct {
	graceService grace.GraceService
}

func NewGraceHandler(graceService grace.GraceService) GraceHandler {
	return &graceHandlerImpl{graceService: graceService}
}

// ========== RESOLUTION ==========

func (h *graceHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	var req grace.ResolveGraceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.graceService.Resolve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *graceHandlerImpl) ResolveConfig(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	result, err := h.graceService.ResolveConfig(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== FINE MODALS ==========

func (h *graceHandlerImpl) CreateFineModal(w http.ResponseWriter, r *http.Request) {
	var req grace.CreateFineModalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.graceService.CreateFineModal(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Fine modal created", result)
}

func (h *graceHandlerImpl) GetFineModal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Fine modal ID is required", nil)
		return
	}

	result, err := h.graceService.GetFineModal(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *graceHandlerImpl) ListFineModals(w http.ResponseWriter, r *http.Request) {
	result, err := h.graceService.ListFineModals(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *graceHandlerImpl) UpdateFineModal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Fine modal ID is required", nil)
		return
	}

	var req grace.UpdateFineModalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = id

	result, err := h.graceService.UpdateFineModal(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *graceHandlerImpl) DeleteFineModal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Fine modal ID is required", nil)
		return
	}

	if err := h.graceService.DeleteFineModal(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Fine modal deleted", nil)
}
