package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/vidyaa00/REMS/services/estate-service/internal/mortgage"
	"github.com/vidyaa00/REMS/services/estate-service/internal/payload"
	"github.com/vidyaa00/REMS/services/estate-service/internal/usecase"
	"github.com/vidyaa00/REMS/shared/utilities"
)

const multipartMemory = 8 << 20

// parseMultipart bounds the body to maxUploadBytes and parses the form,
// writing the error response itself on failure.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utilities.WriteMessage(w, http.StatusRequestEntityTooLarge, "File too large")
			return false
		}
		utilities.WriteMessage(w, http.StatusBadRequest, "No file uploaded")
		return false
	}

	return true
}

func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["images"]
	files := make([]usecase.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.writeError(w, err, "Error uploading images")
			return
		}
		defer f.Close()

		files = append(files, formFile(fh, f))
	}

	urls, err := h.uploads.UploadImages(r.Context(), files)
	if err != nil {
		h.writeError(w, err, "Error uploading images")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, payload.UploadImagesResponse{ImageURLs: urls})
}

func formFile(fh *multipart.FileHeader, f multipart.File) usecase.File {
	return usecase.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}
}

func (h *Handler) Mortgage(w http.ResponseWriter, r *http.Request) {
	var req payload.MortgageRequest
	if !h.bind(w, r, &req) {
		return
	}

	result, err := mortgage.Calculate(mortgage.Input{
		HomePrice:      *req.HomePrice,
		DownPaymentPct: *req.DownPayment,
		AnnualRatePct:  *req.InterestRate,
		TermYears:      *req.LoanTerm,
	})
	if err != nil {
		if errors.Is(err, mortgage.ErrInvalidInput) {
			utilities.WriteMessage(w, http.StatusBadRequest, "Invalid mortgage input")
			return
		}
		h.writeError(w, err, "Error calculating mortgage")
		return
	}

	utilities.WriteJSON(w, http.StatusOK, result)
}
