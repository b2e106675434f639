package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBrowser(t *testing.T) {
	cases := []struct {
		reported string
		want     string
	}{
		{"Chrome", BrowserChrome},
		{"chromium", BrowserChrome},
		{"Firefox", BrowserFirefox},
		{"Safari", BrowserSafari},
		{"Edge", BrowserEdge},
		{"Edg/120.0", BrowserEdge},
		{"Opera", BrowserOpera},
		{"OPR/105.0", BrowserOpera},
		{"Brave", BrowserOther},
		{"", BrowserOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyBrowser(tc.reported), "reported=%q", tc.reported)
	}
}

func TestClassifyOS(t *testing.T) {
	cases := []struct {
		reported string
		want     string
	}{
		{"Windows 11", OSWindows},
		{"Linux x86_64", OSLinux},
		{"Ubuntu", OSLinux},
		{"Mac OS X", OSMacOS},
		{"darwin", OSMacOS},
		{"Android 14", OSAndroid},
		{"iPhone OS 17", OSIOS},
		{"iPad", OSIOS},
		{"FreeBSD", OSOther},
		{"", OSOther},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyOS(tc.reported), "reported=%q", tc.reported)
	}
}

func TestClassifyOSPrecedence(t *testing.T) {
	// Android UAs also claim Linux; Android must win.
	assert.Equal(t, OSAndroid, ClassifyOS("Linux; Android 14"))
	// Edge and Opera UAs also claim Chrome.
	assert.Equal(t, BrowserEdge, ClassifyBrowser("Chrome Edg/120"))
	assert.Equal(t, BrowserOpera, ClassifyBrowser("Chrome OPR/105"))
}

func TestDeviceClass(t *testing.T) {
	assert.Equal(t, DeviceDesktop, DeviceClass(OSWindows))
	assert.Equal(t, DeviceDesktop, DeviceClass(OSLinux))
	assert.Equal(t, DeviceDesktop, DeviceClass(OSMacOS))
	assert.Equal(t, DeviceMobile, DeviceClass(OSAndroid))
	assert.Equal(t, DeviceMobile, DeviceClass(OSIOS))
	assert.Equal(t, DeviceMobile, DeviceClass(OSOther))
}

func TestBuildRecord(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewAnalyticsService(nil, logger, nil)

	t.Run("Client-reported fields win", func(t *testing.T) {
		record := service.buildRecord(1, 2, Visit{
			Browser: "Firefox",
			OS:      "Windows 11",
			Country: "Brazil",
			City:    "Recife",
		})

		assert.Equal(t, uint(1), record.LinkID)
		assert.Equal(t, uint(2), record.UserID)
		assert.Equal(t, BrowserFirefox, record.Browser)
		assert.Equal(t, OSWindows, record.OS)
		assert.Equal(t, DeviceDesktop, record.Device)
		assert.Equal(t, "Brazil", record.Country)
		assert.Equal(t, "Recife", record.City)
	})

	t.Run("User-Agent fallback", func(t *testing.T) {
		ua := "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36"
		record := service.buildRecord(1, 2, Visit{UserAgent: ua})

		assert.Equal(t, BrowserChrome, record.Browser)
		assert.Equal(t, OSAndroid, record.OS)
		assert.Equal(t, DeviceMobile, record.Device)
	})

	t.Run("Geo defaults to unknown without a reader", func(t *testing.T) {
		record := service.buildRecord(1, 2, Visit{IP: "203.0.113.7"})

		assert.Equal(t, "unknown", record.Country)
		assert.Equal(t, "unknown", record.City)
	})
}

func TestAnalyticsWorkerPersists(t *testing.T) {
	db := setupTestDB(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	service := NewAnalyticsService(db, logger, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.Start(ctx)

	service.RecordAsync(7, 3, Visit{Browser: "Chrome", OS: "Linux"})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.AccessRecord{}).Where("link_id = ?", 7).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	var record models.AccessRecord
	db.Where("link_id = ?", 7).First(&record)
	assert.Equal(t, uint(3), record.UserID)
	assert.Equal(t, BrowserChrome, record.Browser)
	assert.Equal(t, OSLinux, record.OS)
	assert.Equal(t, DeviceDesktop, record.Device)
}
