package prefs

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	type viewMode struct {
		Grid bool `json:"grid"`
		Size int  `json:"size"`
	}
	key := Key[viewMode]{Name: "viewMode"}
	values := Memory{}

	_, ok, err := key.Get(values)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, key.Set(values, viewMode{Grid: true, Size: 3}))
	got, ok, err := key.Get(values)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, viewMode{Grid: true, Size: 3}, got)

	key.Remove(values)
	_, ok, _ = key.Get(values)
	require.False(t, ok)
}

func TestKeyReportsCorruptValue(t *testing.T) {
	values := Memory{"likedProducts": "not json"}

	_, ok, err := LikedProducts.Get(values)
	require.Error(t, err)
	require.False(t, ok)
	require.Empty(t, Liked(values))
}

func TestToggleLike(t *testing.T) {
	values := Memory{}

	liked, err := ToggleLike(values, "a")
	require.NoError(t, err)
	require.True(t, liked)
	_, err = ToggleLike(values, "b")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, Liked(values))
	require.True(t, IsLiked(values, "a"))

	liked, err = ToggleLike(values, "a")
	require.NoError(t, err)
	require.False(t, liked)
	require.Equal(t, []string{"b"}, Liked(values))

	_, err = ToggleLike(values, "b")
	require.NoError(t, err)
	_, present := values.Get("likedProducts")
	require.False(t, present)
}

func TestToggleLikeDropsOldest(t *testing.T) {
	values := Memory{}
	for i := 0; i <= MaxLikedProducts; i++ {
		_, err := ToggleLike(values, fmt.Sprintf("p%d", i))
		require.NoError(t, err)
	}

	ids := Liked(values)
	require.Len(t, ids, MaxLikedProducts)
	require.Equal(t, "p1", ids[0])
	require.False(t, IsLiked(values, "p0"))
}

func TestCookieStorePersistsAcrossRequests(t *testing.T) {
	store := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false)

	req := httptest.NewRequest(http.MethodPost, "/api/likes/x", nil)
	rec := httptest.NewRecorder()
	session := store.Open(req)
	_, err := ToggleLike(session, "x")
	require.NoError(t, err)
	require.NoError(t, session.Save(req, rec))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)

	next := httptest.NewRequest(http.MethodGet, "/api/likes", nil)
	next.AddCookie(cookies[0])
	require.Equal(t, []string{"x"}, Liked(store.Open(next)))
}

func TestCookieStoreRejectsForgedCookie(t *testing.T) {
	store := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false)

	req := httptest.NewRequest(http.MethodGet, "/api/likes", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged-value"})
	require.Empty(t, Liked(store.Open(req)))
}
