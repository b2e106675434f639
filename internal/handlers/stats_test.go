package handlers

import (
	"net/http"
	"testing"

	"github.com/enz0rd/quickurl-sub000/internal/models"
	"github.com/enz0rd/quickurl-sub000/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestLinkAnalyticsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user, header := env.seedAccount(t, "analyst@example.com", "active")

	link := models.ShortLink{Slug: "tracked", TargetURL: "https://a.com", UserID: &user.ID, TimesUsed: 3}
	env.db.Create(&link)
	env.db.Create(&models.AccessRecord{LinkID: link.ID, UserID: user.ID,
		Country: "Brazil", City: "Recife", Browser: services.BrowserChrome, OS: services.OSLinux, Device: services.DeviceDesktop})
	env.db.Create(&models.AccessRecord{LinkID: link.ID, UserID: user.ID,
		Country: "Brazil", City: "Recife", Browser: services.BrowserFirefox, OS: services.OSWindows, Device: services.DeviceDesktop})
	env.db.Create(&models.AccessRecord{LinkID: link.ID, UserID: user.ID,
		Country: "Germany", City: "Berlin", Browser: services.BrowserChrome, OS: services.OSAndroid, Device: services.DeviceMobile})

	t.Run("Aggregates for the owner", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/links/tracked/analytics", header, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(3), body["total"])
		assert.Equal(t, float64(3), body["times_used"])

		countries := body["countries"].([]interface{})
		top := countries[0].(map[string]interface{})
		assert.Equal(t, "Brazil", top["value"])
		assert.Equal(t, float64(2), top["count"])

		assert.Len(t, body["recent"].([]interface{}), 3)
	})

	t.Run("Free plan is refused", func(t *testing.T) {
		freeUser, freeHeader := env.seedAccount(t, "free-analyst@example.com", "")
		env.db.Create(&models.ShortLink{Slug: "freetracked", TargetURL: "https://a.com", UserID: &freeUser.ID})

		w := env.request(t, http.MethodGet, "/api/v1/links/freetracked/analytics", freeHeader, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "plan_required", decodeBody(t, w)["error"])
	})

	t.Run("Someone else's link", func(t *testing.T) {
		_, otherHeader := env.seedAccount(t, "rival-analyst@example.com", "active")

		w := env.request(t, http.MethodGet, "/api/v1/links/tracked/analytics", otherHeader, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLinkQREndpoint(t *testing.T) {
	env := newTestEnv(t)
	user, header := env.seedAccount(t, "qr@example.com", "active")

	env.db.Create(&models.ShortLink{Slug: "qrlink", TargetURL: "https://a.com", UserID: &user.ID})

	t.Run("Base64 JSON by default", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/links/qrlink/qr", header, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decodeBody(t, w)["qr_code"])
	})

	t.Run("PNG when requested", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/links/qrlink/qr?format=png", header, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])
	})

	t.Run("Free plan is refused", func(t *testing.T) {
		freeUser, freeHeader := env.seedAccount(t, "free-qr@example.com", "canceled")
		env.db.Create(&models.ShortLink{Slug: "freeqr", TargetURL: "https://a.com", UserID: &freeUser.ID})

		w := env.request(t, http.MethodGet, "/api/v1/links/freeqr/qr", freeHeader, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Unknown link", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/links/ghost/qr", header, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
