package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/uploads"
)

// Listing defaults.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*limit far from integer overflow.
	MaxPage = 1_000_000
)

const msgOnlyImages = "Only image files (jpeg, jpg, png, gif, webp) are allowed"

var imageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ItemsHandler handles item report endpoints.
type ItemsHandler struct {
	Store          store.Store
	Uploads        *uploads.Store
	MaxUploadBytes int64
	MaxDimension   int
}

type createItemRequest struct {
	Title        string `json:"title" validate:"title_len"`
	Description  string `json:"description" validate:"description_len"`
	Category     string `json:"category" validate:"category"`
	Type         string `json:"type" validate:"oneof=lost found"`
	Location     string `json:"location" validate:"location_len"`
	Date         string `json:"date"`
	ContactEmail string `json:"contact_email" validate:"email"`
	ContactPhone string `json:"contact_phone" validate:"max=30"`
}

type updateItemRequest struct {
	Title        *string `json:"title" validate:"omitnil,min=1,title_len"`
	Description  *string `json:"description" validate:"omitnil,min=1,description_len"`
	Category     *string `json:"category" validate:"omitnil,category"`
	Type         *string `json:"type" validate:"omitnil,oneof=lost found"`
	Location     *string `json:"location" validate:"omitnil,min=1,location_len"`
	Date         *string `json:"date"`
	ContactEmail *string `json:"contact_email" validate:"omitnil,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitnil,max=30"`
	Status       *string `json:"status" validate:"omitnil,oneof=active resolved closed"`
}

type itemsResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Data    []model.Item `json:"data"`
}

type pagedItemsResponse struct {
	itemsResponse
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

// requestError is a client error raised while reading an item request.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// List handles GET /api/items. Only active items are returned unless a
// status filter is given.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := min(positiveInt(q.Get("page"), 1), MaxPage)
	limit := min(positiveInt(q.Get("limit"), DefaultPageSize), MaxPageSize)

	filter := model.ItemFilter{
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Search:   strings.TrimSpace(q.Get("search")),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}
	if filter.Status == "" {
		filter.Status = model.ItemStatusActive
	}

	items, total, err := h.Store.ListItems(r.Context(), filter)
	if err != nil {
		serverError(w, "Server error fetching items", err)
		return
	}
	items = summaries(items)

	jsonResponse(w, http.StatusOK, pagedItemsResponse{
		itemsResponse: itemsResponse{Success: true, Count: len(items), Data: items},
		Total:         total,
		TotalPages:    int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage:   page,
	})
}

// Mine handles GET /api/items/my-items.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())
	h.listAll(w, r, model.ItemFilter{UserID: user.ID}, "Server error fetching your items")
}

// All handles GET /api/items/admin/all.
func (h *ItemsHandler) All(w http.ResponseWriter, r *http.Request) {
	h.listAll(w, r, model.ItemFilter{}, "Server error fetching all items")
}

func (h *ItemsHandler) listAll(w http.ResponseWriter, r *http.Request, filter model.ItemFilter, failure string) {
	items, _, err := h.Store.ListItems(r.Context(), filter)
	if err != nil {
		serverError(w, failure, err)
		return
	}
	items = summaries(items)
	jsonResponse(w, http.StatusOK, itemsResponse{Success: true, Count: len(items), Data: items})
}

// Get handles GET /api/items/{id}. The owner's phone is included.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		serverError(w, "Server error fetching item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonSuccess(w, http.StatusOK, "", item)
}

// Create handles POST /api/items. The body is either JSON or a multipart
// form with an optional "image" file.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var req createItemRequest
	image, err := h.readItemRequest(w, r, &req, func(form map[string][]string) {
		req = createItemRequest{
			Title:        formValue(form, "title"),
			Description:  formValue(form, "description"),
			Category:     formValue(form, "category"),
			Type:         formValue(form, "type"),
			Location:     formValue(form, "location"),
			Date:         formValue(form, "date"),
			ContactEmail: formValue(form, "contact_email"),
			ContactPhone: formValue(form, "contact_phone"),
		}
	})
	if h.handleRequestError(w, err) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.Date = strings.TrimSpace(req.Date)
	req.ContactEmail = normalizeEmail(req.ContactEmail)
	req.ContactPhone = strings.TrimSpace(req.ContactPhone)

	if req.Title == "" || req.Description == "" || req.Category == "" || req.Type == "" ||
		req.Location == "" || req.Date == "" || req.ContactEmail == "" {
		jsonError(w, http.StatusBadRequest, "Please provide all required fields")
		return
	}
	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
		return
	}

	item := &model.Item{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Type:         req.Type,
		Location:     req.Location,
		Date:         date,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Status:       model.ItemStatusActive,
		UserID:       user.ID,
	}

	if image != nil {
		name, err := h.Uploads.Save(image.Data, image.Ext)
		if err != nil {
			serverError(w, "Server error saving image", err)
			return
		}
		item.Image = name
	}

	created, err := h.Store.CreateItem(r.Context(), item)
	if err != nil {
		h.removeImage(item.Image)
		serverError(w, "Server error creating item", err)
		return
	}

	slog.Info("item created", "user", user.Email, "item", created.ID, "type", created.Type)
	jsonSuccess(w, http.StatusCreated, "Item posted successfully", summary(created))
}

// Update handles PUT /api/items/{id}. Only the owner or an admin may update.
// A new image replaces the old file.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	item, ok := h.modifiableItem(w, r, "update")
	if !ok {
		return
	}

	var req updateItemRequest
	image, err := h.readItemRequest(w, r, &req, func(form map[string][]string) {
		req = updateItemRequest{
			Title:        formField(form, "title"),
			Description:  formField(form, "description"),
			Category:     formField(form, "category"),
			Type:         formField(form, "type"),
			Location:     formField(form, "location"),
			Date:         formField(form, "date"),
			ContactEmail: formField(form, "contact_email"),
			ContactPhone: formField(form, "contact_phone"),
			Status:       formField(form, "status"),
		}
	})
	if h.handleRequestError(w, err) {
		return
	}

	trimField(req.Title)
	trimField(req.Description)
	trimField(req.Location)
	trimField(req.Date)
	trimField(req.ContactPhone)
	if req.ContactEmail != nil {
		*req.ContactEmail = normalizeEmail(*req.ContactEmail)
	}

	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	update := model.ItemUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Type:         req.Type,
		Location:     req.Location,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Status:       req.Status,
	}
	if req.Date != nil {
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "Invalid date, use YYYY-MM-DD")
			return
		}
		update.Date = &date
	}

	var newImage string
	if image != nil {
		newImage, err = h.Uploads.Save(image.Data, image.Ext)
		if err != nil {
			serverError(w, "Server error saving image", err)
			return
		}
		update.Image = &newImage
	}

	updated, err := h.Store.UpdateItem(r.Context(), item.ID, update)
	if err != nil {
		h.removeImage(newImage)
		serverError(w, "Server error updating item", err)
		return
	}
	if updated == nil {
		// Deleted concurrently.
		h.removeImage(newImage)
		jsonError(w, http.StatusNotFound, "Item not found")
		return
	}

	if newImage != "" {
		h.removeImage(item.Image)
	}

	slog.Info("item updated", "user", user.Email, "item", item.ID)
	jsonSuccess(w, http.StatusOK, "Item updated successfully", summary(updated))
}

// Delete handles DELETE /api/items/{id}. Only the owner or an admin may
// delete. The image file is removed after the record.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	item, ok := h.modifiableItem(w, r, "delete")
	if !ok {
		return
	}

	if err := h.Store.DeleteItem(r.Context(), item.ID); err != nil {
		serverError(w, "Server error deleting item", err)
		return
	}
	h.removeImage(item.Image)

	slog.Info("item deleted", "user", user.Email, "item", item.ID)
	jsonSuccess(w, http.StatusOK, "Item deleted successfully", nil)
}

// modifiableItem loads the item named in the path and applies the
// owner-or-admin check, writing the error response when it fails.
func (h *ItemsHandler) modifiableItem(w http.ResponseWriter, r *http.Request, action string) (*model.Item, bool) {
	user := CurrentUser(r.Context())

	item, err := h.Store.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		serverError(w, "Server error loading item", err)
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return nil, false
	}
	if !item.ModifiableBy(user.ID, user.Role) {
		slog.Warn("item modification denied", "user", user.Email, "item", item.ID, "action", action)
		jsonError(w, http.StatusForbidden, "Not authorized to "+action+" this item")
		return nil, false
	}
	return item, true
}

// readItemRequest decodes a JSON body into target, or parses a multipart
// form and hands its values to fromForm. For multipart requests the
// processed image is returned when one was attached.
func (h *ItemsHandler) readItemRequest(w http.ResponseWriter, r *http.Request, target any, fromForm func(map[string][]string)) (*imaging.ProcessResult, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(r, target); err != nil {
			return nil, &requestError{"Invalid request body"}
		}
		return nil, nil
	}

	// Leave room for the text fields around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{h.tooLargeMessage()}
		}
		return nil, &requestError{"Invalid multipart form"}
	}
	fromForm(r.MultipartForm.Value)

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &requestError{"Invalid image upload"}
	}
	defer file.Close()

	if header.Size > h.MaxUploadBytes {
		return nil, &requestError{h.tooLargeMessage()}
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, &requestError{msgOnlyImages}
	}

	result, err := imaging.Process(file, h.MaxDimension)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return nil, &requestError{msgOnlyImages}
	}
	if errors.Is(err, imaging.ErrTooManyPixels) {
		return nil, &requestError{fmt.Sprintf("Image dimensions too large. Maximum is %d megapixels", imaging.MaxPixels/1_000_000)}
	}
	if err != nil {
		return nil, fmt.Errorf("processing image: %w", err)
	}
	return result, nil
}

// handleRequestError writes the response for a failed readItemRequest and
// reports whether one was written.
func (h *ItemsHandler) handleRequestError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		jsonError(w, http.StatusBadRequest, reqErr.msg)
		return true
	}
	serverError(w, "Server error processing image", err)
	return true
}

// tooLargeMessage reports the limit in whole megabytes when it is one,
// otherwise in binary units ("512 KiB").
func (h *ItemsHandler) tooLargeMessage() string {
	const mb = 1 << 20
	if h.MaxUploadBytes >= mb && h.MaxUploadBytes%mb == 0 {
		return fmt.Sprintf("File too large. Maximum size is %dMB", h.MaxUploadBytes/mb)
	}
	return "File too large. Maximum size is " + humanize.IBytes(uint64(h.MaxUploadBytes))
}

// removeImage deletes a stored image. Failures are logged, not returned.
func (h *ItemsHandler) removeImage(name string) {
	if name == "" {
		return
	}
	if err := h.Uploads.Remove(name); err != nil {
		slog.Warn("removing image", "image", name, "error", err)
	}
}

// summary hides the owner's phone outside the detail view.
func summary(item *model.Item) *model.Item {
	if item.User != nil {
		ref := *item.User
		ref.Phone = ""
		item.User = &ref
	}
	return item
}

func summaries(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	for i := range items {
		summary(&items[i])
	}
	return items
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func formValue(form map[string][]string, key string) string {
	if v := form[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// formField returns nil when the key is absent so partial updates leave
// the field untouched.
func formField(form map[string][]string, key string) *string {
	v, ok := form[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}

func trimField(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
