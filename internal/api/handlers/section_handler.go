package handlers

import (
	"context"
	"net/http"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/go-chi/chi/v5"
)

// SectionUsecase - every mutation answers with the full ordered list
type SectionUsecase interface {
	ListSections(ctx context.Context) ([]entity.Section, error)
	AddSection(ctx context.Context, name string) ([]entity.Section, error)
	RenameSection(ctx context.Context, id, name string) ([]entity.Section, error)
	DeleteSection(ctx context.Context, id string) ([]entity.Section, error)
}

type SectionHandler struct {
	sectionService SectionUsecase
	errs           ErrorWriter
}

func NewSectionHandler(sectionService SectionUsecase, errs ErrorWriter) *SectionHandler {
	return &SectionHandler{
		sectionService: sectionService,
		errs:           errs,
	}
}

func (h *SectionHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sectionService.ListSections(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, sections, http.StatusOK)
}

func (h *SectionHandler) AddSection(w http.ResponseWriter, r *http.Request) {
	var req entity.SectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.badRequest(w, "Invalid JSON")
		return
	}

	sections, err := h.sectionService.AddSection(r.Context(), req.Name)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, sections, http.StatusCreated)
}

func (h *SectionHandler) RenameSection(w http.ResponseWriter, r *http.Request) {
	var req entity.SectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errs.badRequest(w, "Invalid JSON")
		return
	}

	sections, err := h.sectionService.RenameSection(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, sections, http.StatusOK)
}

func (h *SectionHandler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sectionService.DeleteSection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, sections, http.StatusOK)
}
