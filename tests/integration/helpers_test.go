//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/booktrack/booktrack/internal/domain"
	"github.com/booktrack/booktrack/internal/testutil"
	"github.com/stretchr/testify/require"
)

// seedBook inserts a book and registers cleanup. Returns the assigned id.
func seedBook(t *testing.T, title string) int64 {
	t.Helper()

	var id int64
	err := testDB.QueryRow(context.Background(),
		"INSERT INTO books (title) VALUES ($1) RETURNING id", title).Scan(&id)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := testDB.Exec(context.Background(), "DELETE FROM books WHERE id = $1", id)
		if err != nil {
			t.Logf("cleanup book %d: %v", id, err)
		}
	})

	return id
}

// listBooks fetches /books and decodes the body.
func listBooks(t *testing.T, client *testutil.Client) (int, []domain.Book) {
	t.Helper()

	resp, err := client.GET("/books")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var list []domain.Book
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	}
	return resp.StatusCode, list
}

// decodeBody decodes a JSON response body into a map and closes it.
func decodeBody(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
