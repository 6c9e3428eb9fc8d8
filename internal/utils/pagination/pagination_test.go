package pagination

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, query string) Pagination {
	t.Helper()
	var got Pagination
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParseFromRequest(c)
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/"+query, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	return got
}

func TestParseFromRequest(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: DefaultLimit}, parse(t, ""))
	assert.Equal(t, Pagination{Page: 3, Limit: 10, Offset: 20}, parse(t, "?page=3&limit=10"))
	assert.Equal(t, Pagination{Page: 1, Limit: MaxLimit}, parse(t, "?page=0&limit=1000"))
	assert.Equal(t, Pagination{Page: 1, Limit: DefaultLimit}, parse(t, "?page=x&limit=-5"))
}

func TestResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(Response(Pagination{Page: 2, Limit: 10, Total: 21}, []int{1}))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Meta struct {
			TotalPages int64 `json:"total_pages"`
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, int64(3), out.Meta.TotalPages)
	assert.Equal(t, int64(21), out.Meta.TotalItems)
}
