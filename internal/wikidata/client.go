// Package wikidata is the client for the structured fact store used to
// corroborate calendar dates and infer countries for a subject.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// timeClaimOrder is the corroboration priority: point in time,
// inception, start time, publication date. Only claims carrying at
// least one reference are accepted.
var timeClaimOrder = []string{"P585", "P571", "P580", "P577"}

// countryProps are the claims consulted for country inference:
// country, country of origin, citizenship.
var countryProps = []string{"P17", "P495", "P27"}

// qidToISO2 maps well-known country entity IDs to ISO-3166 alpha-2.
var qidToISO2 = map[string]string{
	"Q668": "IN",
	"Q159": "RU",
	"Q30":  "US",
	"Q145": "GB",
	"Q183": "DE",
	"Q142": "FR",
	"Q148": "CN",
	"Q17":  "JP",
	"Q843": "PK",
	"Q902": "BD",
	"Q252": "ID",
	"Q801": "IL",
	"Q38":  "IT",
	"Q29":  "ES",
	"Q155": "BR",
	"Q16":  "CA",
	"Q408": "AU",
	"Q664": "NZ",
}

var timeValueRe = regexp.MustCompile(`^[+\-]?(\d{4})-(\d{2})-(\d{2})`)

// Client fetches entity data from the fact store.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a fact-store client. baseURL is the site root,
// e.g. "https://www.wikidata.org".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type claim struct {
	MainSnak struct {
		DataValue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
	References []json.RawMessage `json:"references"`
}

type entityData struct {
	Entities map[string]struct {
		Claims map[string][]claim `json:"claims"`
	} `json:"entities"`
}

func (c *Client) fetchClaims(ctx context.Context, qid string) (map[string][]claim, error) {
	endpoint := fmt.Sprintf("%s/wiki/Special:EntityData/%s.json", c.baseURL, qid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", qid, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entity %s: unexpected status: %d", qid, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("entity %s: read: %w", qid, err)
	}

	var data entityData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("entity %s: decode: %w", qid, err)
	}
	ent, ok := data.Entities[qid]
	if !ok {
		return nil, fmt.Errorf("entity %s: not present in response", qid)
	}
	return ent.Claims, nil
}

// TimeFact is a referenced point-in-time fact for an entity.
type TimeFact struct {
	ISO      string // YYYY-MM-DD
	Property string // the claim that produced it, e.g. "P585"
}

// ReferencedDate returns the highest-priority referenced time claim
// for the entity, or nil when no acceptable claim exists.
func (c *Client) ReferencedDate(ctx context.Context, qid string) (*TimeFact, error) {
	claims, err := c.fetchClaims(ctx, qid)
	if err != nil {
		return nil, err
	}

	for _, prop := range timeClaimOrder {
		for _, cl := range claims[prop] {
			if len(cl.References) == 0 {
				continue
			}
			iso := extractTimeISO(cl.MainSnak.DataValue.Value)
			if iso != "" {
				return &TimeFact{ISO: iso, Property: prop}, nil
			}
		}
	}
	return nil, nil
}

// CountryCodes infers ISO-3166 alpha-2 country codes for an entity
// from its country, origin and citizenship claims.
func (c *Client) CountryCodes(ctx context.Context, qid string) (map[string]bool, error) {
	claims, err := c.fetchClaims(ctx, qid)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool)
	for _, prop := range countryProps {
		for _, cl := range claims[prop] {
			if id := extractEntityID(cl.MainSnak.DataValue.Value); id != "" {
				if iso, ok := qidToISO2[id]; ok {
					out[iso] = true
				}
			}
		}
	}
	return out, nil
}

func extractTimeISO(raw json.RawMessage) string {
	var v struct {
		Time string `json:"time"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.Time == "" {
		return ""
	}
	m := timeValueRe.FindStringSubmatch(v.Time)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2] + "-" + m[3]
}

func extractEntityID(raw json.RawMessage) string {
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &v); err == nil && strings.HasPrefix(v.ID, "Q") {
		return v.ID
	}
	return ""
}
