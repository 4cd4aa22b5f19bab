package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/secmon-lab/riskreg/pkg/utils/safe"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	// the workbook is buffered so a failed export still gets a JSON error
	var buf bytes.Buffer
	if err := s.uc.Export.Export(r.Context(), user, &buf); err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="risk-register.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, buf.Bytes())
}
