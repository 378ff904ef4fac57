package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

const (
	maxBodyBytes     = 1 << 16
	preferenceMaxAge = 365 * 24 * time.Hour
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// CookieStorage keeps preferences in the client's cookies.
type CookieStorage struct {
	w http.ResponseWriter
	r *http.Request
}

func NewCookieStorage(w http.ResponseWriter, r *http.Request) *CookieStorage {
	return &CookieStorage{w: w, r: r}
}

func (c *CookieStorage) GetItem(key string) (string, bool) {
	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", false
	}
	v, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *CookieStorage) SetItem(key, value string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(preferenceMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
