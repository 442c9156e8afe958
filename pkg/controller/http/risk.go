package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
)

type riskEnvelope struct {
	Risk *model.Risk `json:"risk"`
}

type risksEnvelope struct {
	Risks []*model.Risk `json:"risks"`
}

type documentsEnvelope struct {
	Documents []*model.Document `json:"documents"`
}

type contextEnvelope struct {
	Context *model.Context `json:"context"`
}

type riskObjectEnvelope struct {
	RiskObject *model.RiskObject `json:"risk_object"`
}

type riskHandler struct {
	uc *usecase.RiskUseCase
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(errBadRequest, "invalid id", goerr.V("id", raw))
	}
	return id, nil
}

func decodeRisk(w http.ResponseWriter, r *http.Request) (*model.Risk, error) {
	var body riskEnvelope
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		return nil, goerr.Wrap(errBadRequest, "failed to decode request body", goerr.V("reason", err.Error()))
	}
	if body.Risk == nil {
		return nil, goerr.Wrap(errBadRequest, "request body has no risk")
	}
	return body.Risk, nil
}

func (h *riskHandler) list(w http.ResponseWriter, r *http.Request) {
	risks, err := h.uc.ListRisks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, risksEnvelope{Risks: risks})
}

func (h *riskHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	risk, err := h.uc.GetRisk(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, riskEnvelope{Risk: risk})
}

func (h *riskHandler) create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeRisk(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.uc.CreateRisk(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, riskEnvelope{Risk: created})
}

func (h *riskHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	input, err := decodeRisk(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if input.ID != 0 && input.ID != id {
		writeError(w, r, goerr.Wrap(errBadRequest, "risk id does not match path", goerr.V("path_id", id), goerr.V("body_id", input.ID)))
		return
	}

	updated, err := h.uc.UpdateRisk(r.Context(), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, riskEnvelope{Risk: updated})
}

func (h *riskHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.uc.DeleteRisk(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *riskHandler) documents(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := h.uc.ListDocuments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, documentsEnvelope{Documents: docs})
}

func (h *riskHandler) person(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	person, err := h.uc.GetPerson(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, personResponse{Person: person})
}

func (h *riskHandler) context(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.uc.GetContext(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, contextEnvelope{Context: c})
}

func (h *riskHandler) riskObject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	obj, err := h.uc.GetRiskObject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, riskObjectEnvelope{RiskObject: obj})
}
