package rest

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/bindassticks/storefront/internal/media"
	"github.com/bindassticks/storefront/internal/service"
	"github.com/bindassticks/storefront/pkg/auth"
	"github.com/bindassticks/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

const (
	imageField      = "image"
	multipartMemory = 8 << 20
	// room for the text fields next to the image
	formOverhead = 1 << 20
)

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := h.parseLimit(w, r, mLogger)
	if !ok {
		return
	}
	q := r.URL.Query()
	products, err := h.catalog.List(r.Context(), service.ListQuery{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Search:      q.Get("q"),
		Limit:       limit,
	})
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, ProductList{Products: products, Total: len(products)})
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.adminLogger(r)
	in, image, cleanup, ok := h.parseProductForm(w, r, mLogger)
	if !ok {
		return
	}
	defer cleanup()

	created, err := h.catalog.Create(r.Context(), in, image)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.adminLogger(r)
	id := chi.URLParam(r, "id")
	in, image, cleanup, ok := h.parseProductForm(w, r, mLogger)
	if !ok {
		return
	}
	defer cleanup()

	updated, err := h.catalog.Update(r.Context(), id, in, image)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.adminLogger(r)
	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminLogger(r *http.Request) *slog.Logger {
	mLogger := h.loggerWithReqID(r)
	if admin, ok := auth.AdminFromContext(r.Context()); ok {
		mLogger = mLogger.With("admin", admin.Email)
	}
	return mLogger
}

// parseProductForm reads a product from a JSON body or from a multipart form
// with an optional image file. cleanup releases the form's temporary files.
func (h *Handler) parseProductForm(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (service.ProductInput, *media.Object, func(), bool) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var in service.ProductInput
		if !web.DecodeJSON(w, r, logger, h.limits.MaxBodyBytes, &in) {
			return in, nil, noop, false
		}
		return in, nil, noop, true
	}

	if h.limits.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxUploadBytes+formOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			web.RespondError(w, logger, http.StatusRequestEntityTooLarge, "Request body too large")
			return service.ProductInput{}, nil, noop, false
		}
		logger.WarnContext(r.Context(), "Error parsing multipart form", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid multipart form")
		return service.ProductInput{}, nil, noop, false
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	in := service.ProductInput{
		Name:        r.FormValue("name"),
		Category:    r.FormValue("category"),
		Subcategory: r.FormValue("subcategory"),
		Description: r.FormValue("description"),
	}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			cleanup()
			web.RespondError(w, logger, http.StatusBadRequest, "Invalid price: "+raw)
			return in, nil, noop, false
		}
		in.Price = price
	}

	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, cleanup, true
	}
	if err != nil {
		cleanup()
		logger.WarnContext(r.Context(), "Error reading image", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid image")
		return in, nil, noop, false
	}
	image, err := toObject(file, header)
	if err != nil {
		_ = file.Close()
		cleanup()
		logger.WarnContext(r.Context(), "Error reading image", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid image")
		return in, nil, noop, false
	}
	return in, image, func() {
		_ = file.Close()
		cleanup()
	}, true
}

// toObject turns an uploaded file into a media.Object, sniffing the content
// type when the client did not send one.
func toObject(file multipart.File, header *multipart.FileHeader) (*media.Object, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff := make([]byte, 512)
		n, err := io.ReadFull(file, sniff)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, err
		}
		contentType = http.DetectContentType(sniff[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return &media.Object{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, nil
}

// AdminLogin exchanges the admin's e-mail and password for a bearer token.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	if h.adminAuth == nil {
		web.RespondError(w, mLogger, http.StatusNotFound, "Admin sign-in is not configured")
		return
	}
	var req service.AdminCredentials
	if !web.DecodeJSON(w, r, mLogger, h.limits.MaxBodyBytes, &req) {
		return
	}
	token, err := h.adminAuth.Login(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, token)
}
