package service

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/propinspect/internal/model"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/testutil"
)

const testOrigin = "http://localhost:3000"

type shareFixture struct {
	mem         *testutil.MemStore
	inspections *InspectionService
	shares      *ShareService
}

func newShareFixture(t *testing.T, publicBaseURL string) *shareFixture {
	t.Helper()
	mem := testutil.NewMemStore()
	return &shareFixture{
		mem:         mem,
		inspections: NewInspectionService(mem.Inspections(), mem.Items()),
		shares:      NewShareService(mem.Inspections(), mem.Items(), mem.Photos(), publicBaseURL),
	}
}

func (f *shareFixture) createInspection(t *testing.T, owner string) *model.Inspection {
	t.Helper()
	insp, err := f.inspections.Create(context.Background(), owner, InspectionInput{PropertyName: "12 Elm St"})
	require.NoError(t, err)
	return insp
}

func TestShareIssueRotationInvalidatesPreviousToken(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")

	first, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	second, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.NotEqual(t, first.ShareToken, second.ShareToken)
	require.NotNil(t, second.SharedAt)

	_, err = f.shares.Resolve(ctx, first.ShareToken)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	view, err := f.shares.Resolve(ctx, second.ShareToken)
	require.NoError(t, err)
	require.Equal(t, insp.ID, view.Inspection.ID)
	require.Equal(t, "12 Elm St", view.Inspection.PropertyName)
}

func TestShareTokenFormat(t *testing.T) {
	f := newShareFixture(t, "")
	insp := f.createInspection(t, "owner")
	link, err := f.shares.Issue(context.Background(), "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.Len(t, link.ShareToken, 64)
	raw, err := hex.DecodeString(link.ShareToken)
	require.NoError(t, err)
	require.Len(t, raw, 32)
	require.Equal(t, testOrigin+"/share/"+link.ShareToken, link.ShareURL)
}

func TestShareRevokeHidesLinkButKeepsToken(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")

	link, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)

	status, err := f.shares.Status(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.True(t, status.ShareEnabled)
	require.NotNil(t, status.ShareURL)
	require.Equal(t, link.ShareURL, *status.ShareURL)

	require.NoError(t, f.shares.Revoke(ctx, "owner", insp.ID))

	status, err = f.shares.Status(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.False(t, status.ShareEnabled)
	require.Nil(t, status.ShareURL)
	require.NotNil(t, status.SharedAt)

	raw, ok := f.mem.Raw(insp.ID)
	require.True(t, ok)
	require.Equal(t, link.ShareToken, raw.ShareToken)

	_, err = f.shares.Resolve(ctx, link.ShareToken)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestShareReissueAfterRevoke(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")

	old, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.NoError(t, f.shares.Revoke(ctx, "owner", insp.ID))
	fresh, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)

	_, err = f.shares.Resolve(ctx, old.ShareToken)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = f.shares.Resolve(ctx, fresh.ShareToken)
	require.NoError(t, err)
}

func TestShareStatusBeforeIssue(t *testing.T) {
	f := newShareFixture(t, "")
	insp := f.createInspection(t, "owner")
	status, err := f.shares.Status(context.Background(), "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.False(t, status.ShareEnabled)
	require.Nil(t, status.ShareURL)
	require.Nil(t, status.SharedAt)
}

func TestShareNonOwnerGetsNotFound(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")
	link, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)

	_, err = f.shares.Issue(ctx, "intruder", insp.ID, testOrigin)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.ErrorIs(t, f.shares.Revoke(ctx, "intruder", insp.ID), appErr.ErrNotFound)
	_, err = f.shares.Status(ctx, "intruder", insp.ID, testOrigin)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	_, err = f.shares.Resolve(ctx, link.ShareToken)
	require.NoError(t, err)
}

func TestShareUnknownInspection(t *testing.T) {
	f := newShareFixture(t, "")
	_, err := f.shares.Issue(context.Background(), "owner", "missing", testOrigin)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestShareRequiresCaller(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")

	_, err := f.shares.Issue(ctx, "", insp.ID, testOrigin)
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
	require.ErrorIs(t, f.shares.Revoke(ctx, "", insp.ID), appErr.ErrUnauthorized)
	_, err = f.shares.Status(ctx, "", insp.ID, testOrigin)
	require.ErrorIs(t, err, appErr.ErrUnauthorized)
}

func TestShareResolveRejectsMalformedTokens(t *testing.T) {
	f := newShareFixture(t, "")
	for _, token := range []string{"", "abc", strings.Repeat("z", 64), strings.Repeat("a", 63)} {
		_, err := f.shares.Resolve(context.Background(), token)
		require.ErrorIs(t, err, appErr.ErrNotFound)
	}
}

func TestShareResolveDeletedInspection(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")
	link, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)

	require.NoError(t, f.inspections.Delete(ctx, "owner", insp.ID))
	_, err = f.shares.Resolve(ctx, link.ShareToken)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestShareTokenUniqueness(t *testing.T) {
	const n = 10000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		token, err := newShareToken()
		require.NoError(t, err)
		require.Len(t, token, 64)
		_, dup := seen[token]
		require.False(t, dup, "duplicate token after %d generations", i)
		seen[token] = struct{}{}
	}
}

func TestShareIssueRetriesOnCollision(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	taken := f.createInspection(t, "other")
	insp := f.createInspection(t, "owner")

	used, err := f.shares.Issue(ctx, "other", taken.ID, testOrigin)
	require.NoError(t, err)

	fresh := strings.Repeat("ab", 32)
	calls := 0
	f.shares.genToken = func() (string, error) {
		calls++
		if calls == 1 {
			return used.ShareToken, nil
		}
		return fresh, nil
	}
	link, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)
	require.Equal(t, fresh, link.ShareToken)
	require.Equal(t, 2, calls)

	f.shares.genToken = func() (string, error) { return used.ShareToken, nil }
	_, err = f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.ErrorIs(t, err, appErr.ErrInternal)

	f.shares.genToken = func() (string, error) { return "", errors.New("entropy exhausted") }
	_, err = f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.Error(t, err)
}

func TestShareBaseURL(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		origin     string
		want       string
	}{
		{name: "request origin", configured: "", origin: "http://localhost:3000", want: "http://localhost:3000"},
		{name: "configured wins", configured: "https://inspect.example.com", origin: "http://10.0.0.5:8080", want: "https://inspect.example.com"},
		{name: "configured trailing slash", configured: "https://inspect.example.com/", origin: "", want: "https://inspect.example.com"},
		{name: "origin trailing slash", configured: "", origin: "https://a.example.com/", want: "https://a.example.com"},
		{name: "blank configured", configured: "   ", origin: "https://a.example.com", want: "https://a.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, shareBaseURL(tt.configured, tt.origin))
		})
	}
}

func TestShareIssueWithConfiguredBaseURL(t *testing.T) {
	f := newShareFixture(t, "https://inspect.example.com/")
	insp := f.createInspection(t, "owner")
	link, err := f.shares.Issue(context.Background(), "owner", insp.ID, "http://internal:8080")
	require.NoError(t, err)
	require.Equal(t, "https://inspect.example.com/share/"+link.ShareToken, link.ShareURL)
	require.NotContains(t, strings.TrimPrefix(link.ShareURL, "https://"), "//")
}

func TestShareResolveGroupsRooms(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")
	_, err := f.inspections.ReplaceItems(ctx, "owner", insp.ID, []ItemInput{
		{Room: "Kitchen", Label: "Sink", Result: "pass"},
		{Room: "Bathroom", Label: "Shower", Result: "fail", Note: "leaks"},
		{Room: "Kitchen", Label: "Oven"},
	})
	require.NoError(t, err)
	link, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)

	view, err := f.shares.Resolve(ctx, link.ShareToken)
	require.NoError(t, err)
	require.Len(t, view.Rooms, 2)
	require.Equal(t, "Kitchen", view.Rooms[0].Name)
	require.Equal(t, []string{"Sink", "Oven"}, []string{view.Rooms[0].Items[0].Label, view.Rooms[0].Items[1].Label})
	require.Equal(t, Progress{Answered: 1, Total: 2, Percent: 50}, view.Rooms[0].Progress)
	require.Equal(t, "Bathroom", view.Rooms[1].Name)
	require.Equal(t, Progress{Answered: 1, Total: 1, Percent: 100}, view.Rooms[1].Progress)
	require.Equal(t, Progress{Answered: 2, Total: 3, Percent: 66}, view.Progress)
	require.Empty(t, view.Photos)
}

func TestShareResolveEmptyChecklist(t *testing.T) {
	f := newShareFixture(t, "")
	ctx := context.Background()
	insp := f.createInspection(t, "owner")
	link, err := f.shares.Issue(ctx, "owner", insp.ID, testOrigin)
	require.NoError(t, err)

	view, err := f.shares.Resolve(ctx, link.ShareToken)
	require.NoError(t, err)
	require.Empty(t, view.Rooms)
	require.Equal(t, Progress{}, view.Progress)
}
