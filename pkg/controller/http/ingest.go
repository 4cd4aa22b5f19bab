package http

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
	"github.com/secmon-lab/riskreg/pkg/service/spreadsheet"
	"github.com/secmon-lab/riskreg/pkg/usecase"
	"github.com/secmon-lab/riskreg/pkg/utils/safe"
)

type uploadJSONRequest struct {
	Source string              `json:"source"`
	Rows   []map[string]string `json:"rows"`
}

type stagingResponse struct {
	Rows []*model.StagingRow `json:"rows"`
}

type clearResponse struct {
	Cleared int `json:"cleared"`
}

func (s *Server) listStagingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	rows, err := s.uc.Import.List(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, stagingResponse{Rows: rows})
}

func (s *Server) clearStagingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	n, err := s.uc.Import.Clear(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, clearResponse{Cleared: n})
}

// uploadHandler stages rows from a JSON body, a multipart "file" field or
// a raw xlsx body
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	source, rows, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handleError(w, r, goerr.Wrap(usecase.ErrInvalidInput, "upload too large", goerr.V("limit", s.maxUploadBytes)))
			return
		}
		handleError(w, r, err)
		return
	}

	result, err := s.uc.Import.Upload(r.Context(), user, source, rows)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, result)
}

func (s *Server) readUpload(r *http.Request) (string, []spreadsheet.Row, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch mediaType {
	case "application/json":
		var req uploadJSONRequest
		if err := decodeBody(r.Body, &req); err != nil {
			return "", nil, err
		}
		rows := make([]spreadsheet.Row, 0, len(req.Rows))
		for i, values := range req.Rows {
			// row 1 is the header of the sheet the rows came from
			rows = append(rows, spreadsheet.Row{Number: i + 2, Values: values})
		}
		source := req.Source
		if source == "" {
			source = "api"
		}
		return source, rows, nil

	case "multipart/form-data":
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, goerr.Wrap(usecase.ErrInvalidInput, "multipart upload needs a file field", goerr.V("cause", err.Error()))
		}
		defer safe.Close(r.Context(), file)

		rows, err := spreadsheet.Read(r.Context(), file)
		if err != nil {
			return "", nil, wrapSheetError(err, header.Filename)
		}
		return header.Filename, rows, nil

	default:
		source := r.URL.Query().Get("filename")
		if source == "" {
			source = "upload.xlsx"
		}
		rows, err := spreadsheet.Read(r.Context(), r.Body)
		if err != nil {
			return "", nil, wrapSheetError(err, source)
		}
		return source, rows, nil
	}
}

func wrapSheetError(err error, source string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	if errors.Is(err, spreadsheet.ErrNoHeader) || errors.Is(err, spreadsheet.ErrNoSheet) {
		return goerr.Wrap(err, "unreadable spreadsheet", goerr.V("source", source))
	}
	return goerr.Wrap(usecase.ErrInvalidInput, "upload is not an xlsx workbook",
		goerr.V("source", source), goerr.V("cause", err.Error()))
}

func (s *Server) approveHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requestUser(w, r)
	if !ok {
		return
	}

	result, err := s.uc.Import.Approve(r.Context(), user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

func decodeBody(body io.Reader, v any) error {
	if err := newStrictDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return goerr.Wrap(usecase.ErrInvalidInput, "malformed JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}
