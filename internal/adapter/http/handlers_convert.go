package adapthttp

import (
	"errors"
	"net/http"

	"converter/internal/domain"
	"converter/internal/logging"
)

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var userID int64
	if user := userFromContext(r); user != nil {
		userID = user.ID
	}

	c, err := s.convert.Convert(r.Context(), userID, r.URL.Query().Get("input"))
	if err != nil {
		if isInputError(err) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		logging.LogError(logging.FromContext(r.Context()), "convert", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func isInputError(err error) bool {
	return errors.Is(err, domain.ErrInvalidNumber) ||
		errors.Is(err, domain.ErrInvalidUnit) ||
		errors.Is(err, domain.ErrInvalidNumberAndUnit)
}

type unitView struct {
	Unit       string `json:"unit"`
	Display    string `json:"display"`
	Name       string `json:"name"`
	ReturnUnit string `json:"returnUnit"`
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	units := domain.Units()
	out := make([]unitView, 0, len(units))
	for _, u := range units {
		name, err := domain.SpellOut(string(u))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		ret, err := domain.ReturnUnit(string(u))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		out = append(out, unitView{Unit: string(u), Display: u.Display(), Name: name, ReturnUnit: ret})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}
