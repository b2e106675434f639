package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/enz0rd/quickurl-sub000/internal/models"

	"github.com/mssola/user_agent"
	"gorm.io/gorm"
)

// Closed vocabularies for access records. Anything unrecognized maps to
// Other so aggregation queries never see free-form strings.
const (
	BrowserChrome  = "Chrome"
	BrowserFirefox = "Firefox"
	BrowserSafari  = "Safari"
	BrowserEdge    = "Edge"
	BrowserOpera   = "Opera"
	BrowserOther   = "Other"

	OSWindows = "Windows"
	OSLinux   = "Linux"
	OSMacOS   = "macOS"
	OSAndroid = "Android"
	OSIOS     = "iOS"
	OSOther   = "Other"

	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
)

// Visit carries what the resolve endpoint learned about one visitor.
// Browser/OS are client-reported; UserAgent and IP are fallbacks.
type Visit struct {
	Browser   string
	OS        string
	Country   string
	City      string
	UserAgent string
	IP        string
}

type AnalyticsService struct {
	db      *gorm.DB
	logger  *slog.Logger
	geoIP   *GeoIPService
	channel chan models.AccessRecord
}

func NewAnalyticsService(db *gorm.DB, logger *slog.Logger, geoIP *GeoIPService) *AnalyticsService {
	return &AnalyticsService{
		db:      db,
		logger:  logger,
		geoIP:   geoIP,
		channel: make(chan models.AccessRecord, 1000),
	}
}

func (s *AnalyticsService) Start(ctx context.Context) {
	s.logger.Info("Analytics worker starting")
	for {
		select {
		case record := <-s.channel:
			if err := s.db.Create(&record).Error; err != nil {
				// Never surfaces to the visitor; the redirect already happened
				s.logger.Error("Failed to record access", "error", err, "link_id", record.LinkID)
			}
		case <-ctx.Done():
			s.logger.Info("Analytics worker stopping")
			return
		}
	}
}

// RecordAsync builds and enqueues one AccessRecord for an owned link.
// A full channel drops the event rather than blocking the redirect.
func (s *AnalyticsService) RecordAsync(linkID, ownerID uint, visit Visit) {
	record := s.buildRecord(linkID, ownerID, visit)

	select {
	case s.channel <- record:
	default:
		s.logger.Warn("Analytics channel full, dropping access event", "link_id", linkID)
	}
}

func (s *AnalyticsService) buildRecord(linkID, ownerID uint, visit Visit) models.AccessRecord {
	browser := visit.Browser
	osName := visit.OS

	// Fall back to the User-Agent header when the client reported nothing
	if (browser == "" || osName == "") && visit.UserAgent != "" {
		ua := user_agent.New(visit.UserAgent)
		if browser == "" {
			browser, _ = ua.Browser()
		}
		if osName == "" {
			osName = ua.OS()
		}
	}

	country, city := visit.Country, visit.City
	if country == "" || city == "" {
		geoCountry, geoCity := s.lookupGeo(visit.IP)
		if country == "" {
			country = geoCountry
		}
		if city == "" {
			city = geoCity
		}
	}

	classifiedOS := ClassifyOS(osName)
	return models.AccessRecord{
		LinkID:  linkID,
		UserID:  ownerID,
		Country: country,
		City:    city,
		Browser: ClassifyBrowser(browser),
		OS:      classifiedOS,
		Device:  DeviceClass(classifiedOS),
	}
}

func (s *AnalyticsService) lookupGeo(ip string) (string, string) {
	if s.geoIP == nil || ip == "" {
		return "unknown", "unknown"
	}
	return s.geoIP.Lookup(ip)
}

// ClassifyBrowser maps a reported browser string into the closed vocabulary.
// Edge and Opera are matched before Chrome since their user agents also
// claim Chrome.
func ClassifyBrowser(reported string) string {
	v := strings.ToLower(reported)
	switch {
	case strings.Contains(v, "edge") || strings.Contains(v, "edg"):
		return BrowserEdge
	case strings.Contains(v, "opera") || strings.Contains(v, "opr"):
		return BrowserOpera
	case strings.Contains(v, "chrome") || strings.Contains(v, "chromium"):
		return BrowserChrome
	case strings.Contains(v, "firefox"):
		return BrowserFirefox
	case strings.Contains(v, "safari"):
		return BrowserSafari
	default:
		return BrowserOther
	}
}

// ClassifyOS maps a reported OS string into the closed vocabulary. Android
// is matched before Linux since Android user agents also claim Linux.
func ClassifyOS(reported string) string {
	v := strings.ToLower(reported)
	switch {
	case strings.Contains(v, "windows"):
		return OSWindows
	case strings.Contains(v, "android"):
		return OSAndroid
	case strings.Contains(v, "iphone") || strings.Contains(v, "ipad") || strings.Contains(v, "ios"):
		return OSIOS
	case strings.Contains(v, "mac") || strings.Contains(v, "darwin"):
		return OSMacOS
	case strings.Contains(v, "linux") || strings.Contains(v, "ubuntu"):
		return OSLinux
	default:
		return OSOther
	}
}

// DeviceClass derives the device class: desktop for desktop operating
// systems, mobile for everything else including Other.
func DeviceClass(classifiedOS string) string {
	switch classifiedOS {
	case OSWindows, OSLinux, OSMacOS:
		return DeviceDesktop
	default:
		return DeviceMobile
	}
}
