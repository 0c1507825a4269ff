// apps/go-server/internal/httpserver/routes_daily.go
//
// GET /api/quiz/daily → the quiz of the day.
// The entry is chosen by daily.Index over the indexed corpus, so every
// player sees the same sentence on a given UTC date.

package httpserver

import (
	"net/http"

	"github.com/robalobadob/redactle/apps/go-server/internal/daily"
)

// dailyRes is a View plus the date it belongs to.
type dailyRes struct {
	ID       string `json:"id"`
	Source   string `json:"fileName"`
	Sheet    string `json:"sheetName"`
	Annotate string `json:"annotate"`
	Date     string `json:"date"`
}

func (s *Server) handleDailyQuiz(w http.ResponseWriter, r *http.Request) {
	c := s.loadCorpus(w, r)
	if c == nil {
		return
	}
	now := s.now()
	v, err := c.ViewAt(daily.Index(now, s.cfg.DailySalt, c.Len()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get daily quiz", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dailyRes{
		ID:       v.ID,
		Source:   v.Source,
		Sheet:    v.Sheet,
		Annotate: v.Annotate,
		Date:     daily.DateKey(now),
	})
}
