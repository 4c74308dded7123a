package ginserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	listingapp "homestay/internal/app/handlers/listings"
	"homestay/internal/app/queries"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
)

const maxListingPhotoSizeBytes int64 = 10 * 1024 * 1024

type HostListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type hostListingRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	EntireUnit         bool     `json:"entire_unit"`
	Rooms              int      `json:"rooms"`
	Washrooms          int      `json:"washrooms"`
	Capacity           int      `json:"capacity"`
	State              string   `json:"state"`
	Country            string   `json:"country"`
	Lat                float64  `json:"lat"`
	Lon                float64  `json:"lon"`
	PriceCentsPerNight int64    `json:"price_cents_per_night"`
	Currency           string   `json:"currency"`
	ExcludedDates      []string `json:"excluded_dates"`
	Photos             []string `json:"photos"`
}

func (h HostListingHandler) List(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Queries == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("queries bus unavailable"))
		return
	}

	query := listingapp.ListHostListingsQuery{HostID: principal.ID}
	result, err := queries.Ask[listingapp.ListHostListingsQuery, dto.ListingPageDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Create(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	payload, err := buildHostListingPayload(req)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	cmd := listingapp.CreateHostListingCommand{HostID: principal.ID, Payload: payload}
	result, err := commands.Dispatch[listingapp.CreateHostListingCommand, *dto.ListingDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}
	listingID := strings.TrimSpace(c.Param("id"))
	if listingID == "" {
		h.respondWithError(c, http.StatusBadRequest, errors.New("listing id is required"))
		return
	}

	var req hostListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	payload, err := buildHostListingPayload(req)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	cmd := listingapp.UpdateHostListingCommand{HostID: principal.ID, ListingID: listingID, Payload: payload}
	result, err := commands.Dispatch[listingapp.UpdateHostListingCommand, *dto.ListingDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostListingHandler) Delete(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}
	listingID := strings.TrimSpace(c.Param("id"))
	if listingID == "" {
		h.respondWithError(c, http.StatusBadRequest, errors.New("listing id is required"))
		return
	}

	cmd := listingapp.DeleteHostListingCommand{HostID: principal.ID, ListingID: listingID}
	if _, err := commands.Dispatch[listingapp.DeleteHostListingCommand, *listingapp.DeleteHostListingResult](c.Request.Context(), h.Commands, cmd); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HostListingHandler) UploadPhoto(c *gin.Context) {
	principal, ok := requireRole(c, "host")
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	listingID := strings.TrimSpace(c.Param("id"))
	if listingID == "" {
		h.respondWithError(c, http.StatusBadRequest, errors.New("listing id is required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	if fileHeader.Size <= 0 {
		h.respondWithError(c, http.StatusBadRequest, errors.New("file is empty"))
		return
	}
	if fileHeader.Size > maxListingPhotoSizeBytes {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("file too large (max %d MB)", maxListingPhotoSizeBytes/1024/1024))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxListingPhotoSizeBytes+1024))
	if err != nil {
		h.respondWithError(c, http.StatusInternalServerError, fmt.Errorf("cannot read file: %w", err))
		return
	}
	if len(data) == 0 {
		h.respondWithError(c, http.StatusBadRequest, errors.New("file is empty"))
		return
	}
	if int64(len(data)) > maxListingPhotoSizeBytes {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("file too large (max %d MB)", maxListingPhotoSizeBytes/1024/1024))
		return
	}

	contentType := http.DetectContentType(data)
	if !isAllowedImageType(contentType) {
		h.respondWithError(c, http.StatusBadRequest, fmt.Errorf("unsupported content type: %s", contentType))
		return
	}

	objectKey := buildPhotoObjectKey(listingID, fileHeader.Filename, contentType)
	cmd := listingapp.UploadListingPhotoCommand{
		HostID:      principal.ID,
		ListingID:   listingID,
		ObjectKey:   objectKey,
		ContentType: contentType,
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[listingapp.UploadListingPhotoCommand, *listingapp.UploadListingPhotoResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h HostListingHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, listingapp.ErrListingNotOwned) || errors.Is(err, domainlisting.ErrNotFound) {
		h.respondWithError(c, http.StatusNotFound, err)
		return
	}
	if isValidationError(err) {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	h.respondWithError(c, http.StatusInternalServerError, err)
}

func (h HostListingHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if host, ok := currentPrincipal(c); ok {
			fields = append(fields, "host_id", host.ID)
		}
		h.Logger.Error("host listing request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func buildHostListingPayload(req hostListingRequest) (listingapp.HostListingPayload, error) {
	excluded := make([]time.Time, 0, len(req.ExcludedDates))
	for _, raw := range req.ExcludedDates {
		date, ok := parseFlexibleTime(raw)
		if !ok {
			return listingapp.HostListingPayload{}, fmt.Errorf("invalid excluded date: %q", raw)
		}
		excluded = append(excluded, date)
	}
	return listingapp.HostListingPayload{
		Title:              req.Title,
		Description:        req.Description,
		EntireUnit:         req.EntireUnit,
		Rooms:              req.Rooms,
		Washrooms:          req.Washrooms,
		Capacity:           req.Capacity,
		State:              strings.TrimSpace(req.State),
		Country:            strings.TrimSpace(req.Country),
		Lat:                req.Lat,
		Lon:                req.Lon,
		PriceCentsPerNight: req.PriceCentsPerNight,
		Currency:           strings.TrimSpace(req.Currency),
		ExcludedDates:      excluded,
		Photos:             cleanStrings(req.Photos),
	}, nil
}

func cleanStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, domainlisting.ErrTitleRequired),
		errors.Is(err, domainlisting.ErrCapacity),
		errors.Is(err, domainlisting.ErrRooms),
		errors.Is(err, domainlisting.ErrWashrooms),
		errors.Is(err, domainlisting.ErrNightlyRate),
		errors.Is(err, money.ErrInvalidCurrency):
		return true
	}
	return false
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func extensionForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func buildPhotoObjectKey(listingID, filename, contentType string) string {
	ext := extensionForContentType(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	if ext == "" {
		ext = ".img"
	}
	safeListing := sanitizePathToken(listingID)
	return fmt.Sprintf("listings/%s/%s%s", safeListing, uuid.NewString(), ext)
}

func sanitizePathToken(value string) string {
	if strings.TrimSpace(value) == "" {
		return "listing"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

var _ HostListingHTTP = HostListingHandler{}
