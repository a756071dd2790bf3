package helpers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, DefaultPageSize},
		{"?page=3&limit=5", 3, 5},
		{"?page=-1&limit=1000", 1, MaxPageSize},
		{"?page=abc", 1, DefaultPageSize},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/orders"+tt.query, nil)
		page, limit := Pagination(r)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantLimit, limit, tt.query)
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("1, 2,,30")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 30}, ids)

	_, err = ParseIDList("1,x")
	assert.Error(t, err)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 6, 16, 3, 0, 0, 0, loc)

	assert.Equal(t, "2025-06-15", Today(now))
}

func TestHashPassword(t *testing.T) {
	hash := HashPassword("s3cret")

	require.NotEmpty(t, hash)
	assert.True(t, PasswordCompare(hash, []byte("s3cret")))
	assert.False(t, PasswordCompare(hash, []byte("wrong")))
}

func TestDecodeJSONBody(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest("POST", "/x", strings.NewReader(`{"name":"mug"}`))
	require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, "mug", dst.Name)

	r = httptest.NewRequest("POST", "/x", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	assert.Error(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst))

	r = httptest.NewRequest("POST", "/x", strings.NewReader(`not json`))
	assert.Error(t, DecodeJSONBody(httptest.NewRecorder(), r, &dst))
}
