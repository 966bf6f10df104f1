package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

func TestParsePaginationDefaults(t *testing.T) {
	params, err := ParsePagination(httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.NoError(t, err)
	require.Equal(t, pagination.DefaultLimit, params.Limit)
	require.Empty(t, params.Cursor)

	_, err = ParsePagination(httptest.NewRequest(http.MethodGet, "/orders?limit=1000", nil))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryTime(t *testing.T) {
	got, err := ParseQueryTime(httptest.NewRequest(http.MethodGet, "/sales?from=2026-10-01", nil), "from")
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))

	_, err = ParseQueryTime(httptest.NewRequest(http.MethodGet, "/sales?from=yesterday", nil), "from")
	require.Contains(t, pkgerrors.As(err).Fields(), "from")
}

func TestParseUUIDQuery(t *testing.T) {
	_, err := ParseUUIDQuery(httptest.NewRequest(http.MethodDelete, "/cart?productId=nope", nil), "productId")
	require.Equal(t, "must be a uuid", pkgerrors.As(err).Fields()["productId"])
}

type sampleBody struct {
	Name   string `json:"name" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating":9}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	fields := pkgerrors.As(err).Fields()
	require.Equal(t, "is required", fields["name"])
	require.Equal(t, "must be at most 5", fields["rating"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","rating":3,"extra":true}`))
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}
