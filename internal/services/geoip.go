package services

import (
	"log/slog"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPService resolves coarse visitor location from a local GeoLite2
// database. When no database is configured every lookup returns "unknown";
// resolution must keep working without geo data.
type GeoIPService struct {
	logger *slog.Logger
	reader *geoip2.Reader
}

func NewGeoIPService(dbPath string, logger *slog.Logger) *GeoIPService {
	s := &GeoIPService{logger: logger}

	if dbPath == "" {
		logger.Warn("GeoIP: no database configured, lookups disabled")
		return s
	}
	if _, err := os.Stat(dbPath); err != nil {
		logger.Warn("GeoIP: database not found, lookups disabled", "path", dbPath)
		return s
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		logger.Error("GeoIP: failed to open database", "path", dbPath, "error", err)
		return s
	}
	s.reader = reader
	return s
}

func (s *GeoIPService) Lookup(ipStr string) (country, city string) {
	country, city = "unknown", "unknown"
	if s.reader == nil {
		return
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return
	}

	record, err := s.reader.City(ip)
	if err != nil {
		return
	}

	if name := record.Country.Names["en"]; name != "" {
		country = name
	}
	if name := record.City.Names["en"]; name != "" {
		city = name
	}
	return
}

func (s *GeoIPService) Close() {
	if s.reader != nil {
		s.reader.Close()
	}
}
