package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/propinspect/internal/model"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/pkg/timeutil"
)

const (
	sharePathPrefix = "/share/"
	// A 256-bit collision is not expected; the retry only covers the unique index.
	maxTokenAttempts = 3
)

// ShareService mints, revokes and resolves the capability tokens that give
// anonymous read access to a single inspection.
type ShareService struct {
	inspections   InspectionStore
	items         ItemStore
	photos        PhotoStore
	publicBaseURL string
	genToken      func() (string, error)
}

func NewShareService(inspections InspectionStore, items ItemStore, photos PhotoStore, publicBaseURL string) *ShareService {
	return &ShareService{
		inspections:   inspections,
		items:         items,
		photos:        photos,
		publicBaseURL: strings.TrimSpace(publicBaseURL),
		genToken:      newShareToken,
	}
}

type ShareLink struct {
	ShareURL   string
	ShareToken string
	SharedAt   *time.Time
}

type ShareStatus struct {
	ShareEnabled bool
	ShareURL     *string
	SharedAt     *time.Time
}

// Issue creates a new token for the inspection, replacing any previous one.
// requestOrigin is only used when no public base URL is configured.
func (s *ShareService) Issue(ctx context.Context, callerID, inspectionID, requestOrigin string) (*ShareLink, error) {
	if callerID == "" {
		return nil, appErr.ErrUnauthorized
	}
	for attempt := 1; ; attempt++ {
		token, err := s.genToken()
		if err != nil {
			return nil, fmt.Errorf("generate share token: %w", err)
		}
		now := timeutil.NowUnix()
		err = s.inspections.SetShareToken(ctx, callerID, inspectionID, token, now)
		if errors.Is(err, appErr.ErrConflict) && attempt < maxTokenAttempts {
			logutil.GetLogger(ctx).Warn("share token collision, regenerating",
				zap.String("inspection_id", inspectionID),
				zap.Int("attempt", attempt),
			)
			continue
		}
		if errors.Is(err, appErr.ErrConflict) {
			return nil, fmt.Errorf("store share token: %w", appErr.ErrInternal)
		}
		if err != nil {
			return nil, err
		}
		logutil.GetLogger(ctx).Info("share link issued",
			zap.String("inspection_id", inspectionID),
			zap.String("inspector_id", callerID),
		)
		return &ShareLink{
			ShareURL:   buildShareURL(s.baseURL(requestOrigin), token),
			ShareToken: token,
			SharedAt:   timeutil.FromUnix(now),
		}, nil
	}
}

// Revoke turns sharing off. The stored token is left in place but no longer
// resolves.
func (s *ShareService) Revoke(ctx context.Context, callerID, inspectionID string) error {
	if callerID == "" {
		return appErr.ErrUnauthorized
	}
	if err := s.inspections.DisableShare(ctx, callerID, inspectionID); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("share link revoked",
		zap.String("inspection_id", inspectionID),
		zap.String("inspector_id", callerID),
	)
	return nil
}

func (s *ShareService) Status(ctx context.Context, callerID, inspectionID, requestOrigin string) (*ShareStatus, error) {
	if callerID == "" {
		return nil, appErr.ErrUnauthorized
	}
	insp, err := s.inspections.GetByID(ctx, callerID, inspectionID)
	if err != nil {
		return nil, err
	}
	status := &ShareStatus{
		ShareEnabled: insp.ShareEnabled,
		SharedAt:     timeutil.FromUnix(insp.SharedAt),
	}
	if insp.ShareEnabled && insp.ShareToken != "" {
		url := buildShareURL(s.baseURL(requestOrigin), insp.ShareToken)
		status.ShareURL = &url
	}
	return status, nil
}

// Resolve looks up an inspection by token. Malformed, unknown, revoked and
// deleted all return ErrNotFound so callers cannot tell them apart.
func (s *ShareService) Resolve(ctx context.Context, token string) (*SharedInspection, error) {
	insp, err := s.resolveInspection(ctx, token)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByInspection(ctx, insp.InspectorID, insp.ID)
	if err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByInspection(ctx, insp.ID)
	if err != nil {
		return nil, err
	}
	return buildSharedInspection(insp, items, photos), nil
}

func (s *ShareService) resolveInspection(ctx context.Context, token string) (*model.Inspection, error) {
	if !isWellFormedShareToken(token) {
		return nil, appErr.ErrNotFound
	}
	insp, err := s.inspections.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !insp.ShareEnabled || insp.ShareToken != token {
		return nil, appErr.ErrNotFound
	}
	return insp, nil
}

func (s *ShareService) baseURL(requestOrigin string) string {
	return shareBaseURL(s.publicBaseURL, requestOrigin)
}

// shareBaseURL prefers the configured origin and falls back to the origin of
// the inbound request.
func shareBaseURL(configured, requestOrigin string) string {
	base := strings.TrimSpace(configured)
	if base == "" {
		base = strings.TrimSpace(requestOrigin)
	}
	return strings.TrimRight(base, "/")
}

func buildShareURL(base, token string) string {
	return base + sharePathPrefix + token
}
