package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/infra/storage/s3"
)

const uploadListingPhotoKey = "host.listings.photos.upload"

type UploadListingPhotoCommand struct {
	HostID      string
	ListingID   string
	ObjectKey   string
	ContentType string
	Reader      io.Reader
}

func (c UploadListingPhotoCommand) Key() string { return uploadListingPhotoKey }

type UploadListingPhotoResult struct {
	ListingID string   `json:"listing_id"`
	Photos    []string `json:"photos"`
}

type UploadListingPhotoHandler struct {
	Logger   *slog.Logger
	Uploader s3.Uploader
	Now      func() time.Time
}

func (h *UploadListingPhotoHandler) Handle(ctx context.Context, cmd UploadListingPhotoCommand) (*UploadListingPhotoResult, error) {
	if h.Uploader == nil {
		return nil, errors.New("photo uploader unavailable")
	}
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, errors.New("host id is required")
	}
	if strings.TrimSpace(cmd.ListingID) == "" {
		return nil, errors.New("listing id is required")
	}
	if cmd.Reader == nil {
		return nil, errors.New("photo reader is required")
	}
	if strings.TrimSpace(cmd.ObjectKey) == "" {
		return nil, errors.New("object key is required")
	}

	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(domainlisting.HostID(cmd.HostID)) {
		return nil, ErrListingNotOwned
	}

	publicURL, err := h.Uploader.Upload(ctx, cmd.ObjectKey, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	if err := l.AddPhoto(publicURL, now); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("listing photo added", "listing_id", l.ID, "host_id", cmd.HostID, "object_key", cmd.ObjectKey)
	}

	return &UploadListingPhotoResult{
		ListingID: string(l.ID),
		Photos:    append([]string(nil), l.Photos...),
	}, nil
}

var _ commands.Handler[UploadListingPhotoCommand, *UploadListingPhotoResult] = (*UploadListingPhotoHandler)(nil)
