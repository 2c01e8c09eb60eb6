package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	recuc "github.com/conexaomental/clinica-api/internal/usecase/recording"
)

type RecordingHandler struct {
	upload *recuc.Upload
	list   *recuc.List
	log    *zap.Logger
}

func NewRecordingHandler(upload *recuc.Upload, list *recuc.List, log *zap.Logger) *RecordingHandler {
	return &RecordingHandler{upload: upload, list: list, log: log}
}

// Upload recebe multipart com o campo "file".
func (h *RecordingHandler) Upload(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil || fh.Size > recuc.MaxUploadBytes {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, recuc.MaxUploadBytes+1))
	if err != nil {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return
	}

	view, err := h.upload.Execute(c.Request.Context(), recuc.UploadInput{
		AppointmentID: id,
		Actor:         actorFromContext(c),
		Filename:      fh.Filename,
		ContentType:   fh.Header.Get("Content-Type"),
		Data:          data,
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.Created(c, view)
}

func (h *RecordingHandler) List(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	out, err := h.list.Execute(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}
