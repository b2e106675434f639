package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SafetyScanner checks a target URL against an external threat database.
// Scan failures must be treated as blocking by callers (fail safe).
type SafetyScanner interface {
	Scan(ctx context.Context, targetURL string) (malicious bool, err error)
}

var ErrScannerUnavailable = errors.New("safety scanner is not configured")

const safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// SafeBrowsingScanner queries the Google Safe Browsing v4 lookup API.
type SafeBrowsingScanner struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewSafeBrowsingScanner(apiKey string, logger *slog.Logger) *SafeBrowsingScanner {
	return &SafeBrowsingScanner{
		apiKey:   apiKey,
		endpoint: safeBrowsingEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

type threatRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string          `json:"threatTypes"`
		PlatformTypes    []string          `json:"platformTypes"`
		ThreatEntryTypes []string          `json:"threatEntryTypes"`
		ThreatEntries    []map[string]string `json:"threatEntries"`
	} `json:"threatInfo"`
}

type threatResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

func (s *SafeBrowsingScanner) Scan(ctx context.Context, targetURL string) (bool, error) {
	if s.apiKey == "" {
		return false, ErrScannerUnavailable
	}

	var reqBody threatRequest
	reqBody.Client.ClientID = "quickurl"
	reqBody.Client.ClientVersion = "1.0"
	reqBody.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}
	reqBody.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	reqBody.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	reqBody.ThreatInfo.ThreatEntries = []map[string]string{{"url": targetURL}}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"?key="+s.apiKey, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("safe browsing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("safe browsing returned status %d", resp.StatusCode)
	}

	var result threatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("safe browsing response unreadable: %w", err)
	}

	return len(result.Matches) > 0, nil
}
