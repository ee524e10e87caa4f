package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// multipartFilesField is the form field carrying retorno files in a batch upload.
const multipartFilesField = "files"

// ============================================================
// Remessa
// POST /v1/remessas
// GET  /v1/remessas/{id}
// ============================================================

func generateRemessaHandler(svc *service.CnabService, maxUploadBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/remessas")
		defer span.End()

		body, err := readLimited(w, r, maxUploadBytes)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req domain.RemessaRequest
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Config = plainNumbers(req.Config)
		span.SetAttributes(attribute.Int("remessa.bank", req.Bank))

		result, err := svc.GenerateRemessa(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Location", "/v1/remessas/"+result.ID)
		if r.URL.Query().Get("format") == "raw" {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.ID+".rem"))
			writeText(w, http.StatusCreated, result.Content)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func getRemessaHandler(svc *service.CnabService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/remessas/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		span.SetAttributes(attribute.String("remessa.id", id))

		a, err := svc.GetRemessa(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.ID+".rem"))
		writeText(w, http.StatusOK, a.Content)
	}
}

// ============================================================
// Retorno
// POST /v1/retornos
// ============================================================

// decodeRetornoHandler accepts either a raw retorno body, answered with one
// result, or a multipart form with several files, answered with a list.
func decodeRetornoHandler(svc *service.CnabService, maxUploadBytes int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/retornos")
		defer span.End()

		covenant := r.URL.Query().Get("covenant")

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			files, err := readRetornoFiles(w, r, maxUploadBytes, covenant)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			span.SetAttributes(attribute.Int("retorno.files", len(files)))

			results, err := svc.DecodeRetornoBatch(ctx, files)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			writeJSON(w, http.StatusOK, results)
			return
		}

		data, err := readLimited(w, r, maxUploadBytes)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if len(bytes.TrimSpace(data)) == 0 {
			writeError(w, http.StatusBadRequest, "empty retorno body")
			return
		}

		result, err := svc.DecodeRetorno(ctx, r.URL.Query().Get("name"), data, covenant)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func readRetornoFiles(w http.ResponseWriter, r *http.Request, limit int64, covenant string) ([]domain.RetornoFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, limitError(err, limit)
	}

	headers := r.MultipartForm.File[multipartFilesField]
	if len(headers) == 0 {
		return nil, &domain.ErrValidation{Field: multipartFilesField, Message: "at least one file required"}
	}

	files := make([]domain.RetornoFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", h.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", h.Filename, err)
		}
		files = append(files, domain.RetornoFile{Name: h.Filename, Data: data, Covenant: covenant})
	}
	return files, nil
}

// ============================================================
// Banks
// GET /v1/banks
// ============================================================

func banksHandler(svc *service.CnabService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Banks())
	}
}

// plainNumbers turns json.Number config values into int64 when integral and
// leaves text such as CNPJs or zero-padded codes untouched.
func plainNumbers(in map[string]any) map[string]any {
	for k, v := range in {
		n, ok := v.(json.Number)
		if !ok {
			continue
		}
		if i, err := n.Int64(); err == nil {
			in[k] = i
			continue
		}
		in[k] = strings.TrimSpace(n.String())
	}
	return in
}
