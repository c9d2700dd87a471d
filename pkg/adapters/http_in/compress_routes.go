package http_in

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jademcosta/sucuri/pkg/bundle"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/sources"
	"go.uber.org/zap"
)

const (
	filesField   = "files"
	archiveField = "archive"
	itemField    = "file"

	targetParam     = "target_kb"
	multipartMemory = 32 << 20

	compressedHeader = "X-Sucuri-Compressed"
	failedHeader     = "X-Sucuri-Failed"
	qualityHeader    = "X-Sucuri-Quality"
	targetMetHeader  = "X-Sucuri-Target-Met"
)

type requestError struct {
	status int
	reason string
	err    error
}

func (reqErr *requestError) Error() string {
	return reqErr.err.Error()
}

func badRequest(reason string, err error) *requestError {
	return &requestError{status: http.StatusBadRequest, reason: reason, err: err}
}

type batchRequest struct {
	targetKB float64
	sources  []domain.ImageSource
	archive  []byte
}

type compressHandlers struct {
	log    *zap.SugaredLogger
	conf   config.CompressionConfig
	runner BatchRunner
	packer BundlePacker
}

func RegisterCompressRoutes(api *Api, conf config.CompressionConfig, runner BatchRunner, packer BundlePacker) {
	handlers := &compressHandlers{
		log:    api.log,
		conf:   conf,
		runner: runner,
		packer: packer,
	}

	api.mux.Post("/compress", handlers.compressBundle)
	api.mux.Post("/compress/summary", handlers.compressSummary)
	api.mux.Post("/compress/item", handlers.compressItem)
}

func (h *compressHandlers) compressBundle(w http.ResponseWriter, r *http.Request) {
	outcome, reqErr := h.runBatch(r)
	if reqErr != nil {
		h.reject(w, r, reqErr)
		return
	}

	if len(outcome.Results) == 0 {
		h.reject(w, r, &requestError{
			status: http.StatusUnprocessableEntity,
			reason: "nothing_compressed",
			err:    fmt.Errorf("none of the %d images could be compressed", outcome.Failed),
		})
		return
	}

	packed, err := h.packer.Pack(outcome.Results)
	if err != nil {
		h.log.Errorw("failed to pack bundle", "error", err)
		h.reject(w, r, &requestError{status: http.StatusInternalServerError, reason: "pack", err: err})
		return
	}

	w.Header().Set("Content-Type", bundle.BundleContentType)
	w.Header().Set("Content-Disposition", attachment(bundle.BundleFileName))
	w.Header().Set(compressedHeader, strconv.Itoa(len(outcome.Results)))
	w.Header().Set(failedHeader, strconv.Itoa(outcome.Failed))
	w.WriteHeader(http.StatusOK)
	w.Write(packed) //nolint:errcheck
}

func (h *compressHandlers) compressSummary(w http.ResponseWriter, r *http.Request) {
	outcome, reqErr := h.runBatch(r)
	if reqErr != nil {
		h.reject(w, r, reqErr)
		return
	}

	writeJSON(w, http.StatusOK, domain.Summarize(outcome))
}

func (h *compressHandlers) compressItem(w http.ResponseWriter, r *http.Request) {
	targetKB, reqErr := h.parseTarget(r)
	if reqErr == nil {
		reqErr = parseMultipart(r)
	}
	if reqErr != nil {
		h.reject(w, r, reqErr)
		return
	}

	headers := r.MultipartForm.File[itemField]
	if len(headers) != 1 {
		h.reject(w, r, badRequest("missing_input",
			fmt.Errorf("exactly one %q part is expected, got %d", itemField, len(headers))))
		return
	}

	source, err := readPart(headers[0])
	if err != nil {
		h.reject(w, r, badRequest("unreadable_part", err))
		return
	}

	outcome := h.runner.Run(r.Context(), []domain.ImageSource{source}, targetKB, domain.NoopProgress{})
	if len(outcome.Results) == 0 {
		h.reject(w, r, &requestError{
			status: http.StatusUnprocessableEntity,
			reason: "nothing_compressed",
			err:    fmt.Errorf("image %q could not be compressed", source.Name()),
		})
		return
	}

	result := outcome.Results[0]
	w.Header().Set("Content-Type", bundle.ItemContentType)
	w.Header().Set("Content-Disposition", attachment(bundle.ItemFileName(result.Name)))
	w.Header().Set(qualityHeader, strconv.Itoa(result.Quality))
	w.Header().Set(targetMetHeader, strconv.FormatBool(result.TargetMet))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data) //nolint:errcheck
}

// runBatch reads either the image parts or the archive part and compresses them. Per image failures
// are part of the outcome, only request level problems become a requestError.
func (h *compressHandlers) runBatch(r *http.Request) (domain.BatchOutcome, *requestError) {
	req, reqErr := h.readBatchRequest(r)
	if reqErr != nil {
		return domain.BatchOutcome{}, reqErr
	}

	if req.archive == nil {
		return h.runner.Run(r.Context(), req.sources, req.targetKB, domain.NoopProgress{}), nil
	}

	outcome, err := h.runner.RunArchive(r.Context(), req.archive, req.targetKB, domain.NoopProgress{})
	switch {
	case err == nil:
		return outcome, nil
	case domain.IsKind(err, domain.KindUnsupportedFormat):
		return outcome, &requestError{status: http.StatusUnprocessableEntity, reason: "invalid_archive", err: err}
	case domain.IsKind(err, domain.KindArchiveTooLarge):
		return outcome, &requestError{status: http.StatusRequestEntityTooLarge, reason: "archive_too_large", err: err}
	default:
		return outcome, &requestError{status: http.StatusInternalServerError, reason: "extract", err: err}
	}
}

func (h *compressHandlers) readBatchRequest(r *http.Request) (batchRequest, *requestError) {
	targetKB, reqErr := h.parseTarget(r)
	if reqErr != nil {
		return batchRequest{}, reqErr
	}

	reqErr = parseMultipart(r)
	if reqErr != nil {
		return batchRequest{}, reqErr
	}

	req := batchRequest{targetKB: targetKB}
	images := r.MultipartForm.File[filesField]
	archives := r.MultipartForm.File[archiveField]

	switch {
	case len(images) == 0 && len(archives) == 0:
		return req, badRequest("missing_input",
			fmt.Errorf("either %q or %q parts must be sent", filesField, archiveField))
	case len(images) > 0 && len(archives) > 0:
		return req, badRequest("mixed_input",
			fmt.Errorf("%q and %q parts cannot be sent together", filesField, archiveField))
	case len(archives) > 1:
		return req, badRequest("too_many_archives", fmt.Errorf("only one %q part is accepted", archiveField))
	}

	if len(archives) == 1 {
		archive, err := readAll(archives[0])
		if err != nil {
			return req, badRequest("unreadable_part", err)
		}
		req.archive = archive
		return req, nil
	}

	req.sources = make([]domain.ImageSource, 0, len(images))
	for _, header := range images {
		source, err := readPart(header)
		if err != nil {
			return req, badRequest("unreadable_part", err)
		}
		req.sources = append(req.sources, source)
	}
	return req, nil
}

func (h *compressHandlers) parseTarget(r *http.Request) (float64, *requestError) {
	raw := r.URL.Query().Get(targetParam)
	if raw == "" {
		return float64(h.conf.DefaultTargetKB), nil
	}

	target, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid_target", fmt.Errorf("%s must be an integer: %w", targetParam, err))
	}

	if !h.conf.TargetAllowed(target) {
		return 0, badRequest("invalid_target", fmt.Errorf("%s must be in the interval [%d,%d]",
			targetParam, h.conf.MinTargetKB, h.conf.MaxTargetKB))
	}
	return float64(target), nil
}

func (h *compressHandlers) reject(w http.ResponseWriter, r *http.Request, reqErr *requestError) {
	rejectedCounter.WithLabelValues(r.URL.Path, reqErr.reason).Inc()
	h.log.Debugw("compression request rejected", "path", r.URL.Path, "status", reqErr.status,
		"reason", reqErr.reason, "error", reqErr.err)

	writeJSON(w, reqErr.status, map[string]string{"error": reqErr.Error(), "reason": reqErr.reason})
}

func parseMultipart(r *http.Request) *requestError {
	if r.ContentLength > 0 {
		sizeHist.WithLabelValues(r.URL.Path).Observe(float64(r.ContentLength))
	}

	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return nil
	}

	var payloadMaxSizeErr *http.MaxBytesError
	if errors.As(err, &payloadMaxSizeErr) {
		return &requestError{status: http.StatusRequestEntityTooLarge, reason: "payload_too_large", err: err}
	}
	return badRequest("invalid_multipart", err)
}

func readPart(header *multipart.FileHeader) (domain.ImageSource, error) {
	data, err := readAll(header)
	if err != nil {
		return nil, err
	}
	return sources.NewDirectUpload(header.Filename, data), nil
}

func readAll(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %q: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading part %q: %w", header.Filename, err)
	}
	return data, nil
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	response, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response) //nolint:errcheck
}
