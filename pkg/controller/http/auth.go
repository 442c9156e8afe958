package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type personResponse struct {
	Person *model.Person `json:"person"`
}

// authMeHandler returns the person the request acts as
func authMeHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := model.ActorFromContext(r.Context())
		if actor == nil {
			writeError(w, r, goerr.Wrap(usecase.ErrUnauthorized, "request is anonymous"))
			return
		}

		person, err := uc.GetPerson(r.Context(), actor.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, personResponse{Person: person})
	}
}
