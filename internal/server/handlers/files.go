package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/server/response"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/errors"
)

var flatName = regexp.MustCompile(`^[^/]+$`)

func categoryRule(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, err := category.Parse(s)
	return err
}

// UploadRequest is the form half of POST /files.
type UploadRequest struct {
	Name     string
	Category string
	Size     int64
}

// Validate checks the request before any bytes are stored.
func (u UploadRequest) Validate(maxBytes int64) error {
	sizeRules := []validation.Rule{validation.Min(int64(0))}
	if maxBytes > 0 {
		sizeRules = append(sizeRules, validation.Max(maxBytes))
	}
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name,
			validation.Required,
			validation.Match(flatName).Error("file name cannot contain path separators"),
		),
		validation.Field(&u.Category, validation.Required, validation.By(categoryRule)),
		validation.Field(&u.Size, sizeRules...),
	)
}

// RecategorizeRequest is the body of PUT /files/{name}/category.
type RecategorizeRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate checks both categories.
func (req RecategorizeRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.From, validation.Required, validation.By(categoryRule)),
		validation.Field(&req.To, validation.Required, validation.By(categoryRule)),
	)
}

type uploadPayload struct {
	Record   designlib.FileRecord `json:"record"`
	Created  bool                 `json:"created"`
	Warnings []string             `json:"warnings"`
}

type deletePayload struct {
	Removed  []designlib.FileRecord `json:"removed"`
	Warnings []string               `json:"warnings"`
}

// HandleListFiles handles GET /api/v1/files.
// Query: category, search, newest, limit.
func (h *Handlers) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := category.ParseFilter(q.Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	newest, err := boolQuery(r, "newest")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	opts := []designlib.ListOption{designlib.Search(q.Get("search")), designlib.Limit(limit)}
	if newest {
		opts = append(opts, designlib.NewestFirst())
	}
	records, err := h.catalog.List(r.Context(), filter, opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if records == nil {
		records = []designlib.FileRecord{}
	}
	response.OK(w, map[string]any{"files": records, "count": len(records)})
}

// HandleUpload handles POST /api/v1/files as multipart form data with a
// "file" part, a "category" field and an optional "name" override.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
			return
		}
		response.BadRequest(w, "Invalid multipart form", err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file part", err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	req := UploadRequest{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Size:     header.Size,
	}
	if req.Name == "" {
		req.Name = filepath.Base(header.Filename)
	}
	if err := req.Validate(h.maxUploadBytes); err != nil {
		response.BadRequest(w, "Invalid upload", err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Could not read upload", err.Error())
		return
	}
	cat, _ := category.Parse(req.Category)

	res, err := h.catalog.Upload(r.Context(), req.Name, cat, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	payload := uploadPayload{Record: res.Record, Created: res.Created, Warnings: warningStrings(res.Warnings)}
	if res.Created {
		response.Created(w, payload)
		return
	}
	response.OK(w, payload)
}

// HandleDownload handles GET /api/v1/files/{name}.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := h.catalog.Get(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// HandleDelete handles DELETE /api/v1/files/{name}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.Delete(r.Context(), r.PathValue("name"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(res.Removed) == 0 {
		response.NotFound(w, "no file named "+r.PathValue("name"), "")
		return
	}
	response.OK(w, deletePayload{Removed: res.Removed, Warnings: warningStrings(res.Warnings)})
}

// HandleDeleteAll handles DELETE /api/v1/files. It requires confirm=true.
func (h *Handlers) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	confirmed, err := boolQuery(r, "confirm")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !confirmed {
		response.BadRequest(w, "Refusing to delete every file", "repeat the request with confirm=true")
		return
	}
	res, err := h.catalog.DeleteAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	removed := res.Removed
	if removed == nil {
		removed = []designlib.FileRecord{}
	}
	response.OK(w, deletePayload{Removed: removed, Warnings: warningStrings(res.Warnings)})
}

// HandleRecategorize handles PUT /api/v1/files/{name}/category.
func (h *Handlers) HandleRecategorize(w http.ResponseWriter, r *http.Request) {
	var req RecategorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(w, "Invalid recategorization", err.Error())
		return
	}
	from, _ := category.Parse(req.From)
	to, _ := category.Parse(req.To)

	res, err := h.catalog.Recategorize(r.Context(), r.PathValue("name"), from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, uploadPayload{Record: res.Record, Created: res.Created, Warnings: warningStrings(res.Warnings)})
}
