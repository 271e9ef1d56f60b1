package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pranavxdevops/membership-backend/models"
)

const membersCollection = "members"

// TypesenseService keeps the member search index in sync and serves member
// directory searches. Indexing calls are best-effort: a search outage never
// fails the write that triggered it.
type TypesenseService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewTypesenseService creates a new Typesense client instance
func NewTypesenseService(baseURL, apiKey string) *TypesenseService {
	if apiKey == "" {
		log.Printf("WARNING: TYPESENSE_API_KEY is missing, member search will be unavailable")
	}

	return &TypesenseService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// makeRequest performs an HTTP request against the Typesense API
func (s *TypesenseService) makeRequest(method, endpoint string, payload interface{}) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, s.baseURL+endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-TYPESENSE-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to call Typesense: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read Typesense response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// EnsureCollection creates the members collection if it does not exist yet.
// Called once at startup; failures are returned so main can log and move on.
func (s *TypesenseService) EnsureCollection() error {
	_, status, err := s.makeRequest(http.MethodGet, "/collections/"+membersCollection, nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	schema := map[string]interface{}{
		"name": membersCollection,
		"fields": []map[string]interface{}{
			{"name": "memberId", "type": "string"},
			{"name": "companyName", "type": "string"},
			{"name": "sector", "type": "string", "facet": true},
			{"name": "city", "type": "string", "facet": true},
			{"name": "country", "type": "string", "facet": true},
			{"name": "status", "type": "string", "facet": true},
			{"name": "lat", "type": "float"},
			{"name": "lng", "type": "float"},
			{"name": "createdAt", "type": "int64"},
		},
		"default_sorting_field": "createdAt",
	}

	body, status, err := s.makeRequest(http.MethodPost, "/collections", schema)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusConflict {
		return fmt.Errorf("failed to create Typesense collection (%d): %s", status, string(body))
	}
	return nil
}

// stringField pulls a string out of the open organisationInfo map.
func stringField(organisationInfo map[string]interface{}, key string) string {
	if organisationInfo == nil {
		return ""
	}
	if v, ok := organisationInfo[key].(string); ok {
		return v
	}
	return ""
}

// documentFor flattens a member record into its index projection.
func documentFor(member *models.Member) models.MemberDocument {
	doc := models.MemberDocument{
		ID:          member.MemberID,
		MemberID:    member.MemberID,
		CompanyName: stringField(member.OrganisationInfo, "companyName"),
		Sector:      stringField(member.OrganisationInfo, "sector"),
		Status:      member.Status,
		CreatedAtTs: member.CreatedAt.Unix(),
	}
	if member.Location != nil {
		doc.City = member.Location.City
		doc.Country = member.Location.Country
		doc.Lat = member.Location.Lat
		doc.Lng = member.Location.Lng
	}
	return doc
}

// UpsertMember writes a member into the search index.
func (s *TypesenseService) UpsertMember(member *models.Member) error {
	body, status, err := s.makeRequest(http.MethodPost,
		"/collections/"+membersCollection+"/documents?action=upsert", documentFor(member))
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("failed to upsert member document (%d): %s", status, string(body))
	}
	return nil
}

// IndexAsync upserts a member into the search index without blocking the
// caller. Index failures are logged only.
func (s *TypesenseService) IndexAsync(member *models.Member) {
	go func() {
		if err := s.UpsertMember(member); err != nil {
			log.Printf("Failed to index member %s: %v", member.MemberID, err)
		}
	}()
}

// DeleteMember removes a member from the search index.
func (s *TypesenseService) DeleteMember(memberID string) error {
	body, status, err := s.makeRequest(http.MethodDelete,
		"/collections/"+membersCollection+"/documents/"+url.PathEscape(memberID), nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("failed to delete member document (%d): %s", status, string(body))
	}
	return nil
}

// Search queries the member directory by company name, sector and city.
func (s *TypesenseService) Search(query string, page, perPage int) (*models.SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("query_by", "companyName,sector,city,memberId")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	body, status, err := s.makeRequest(http.MethodGet,
		"/collections/"+membersCollection+"/documents/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search failed (%d): %s", status, string(body))
	}

	var result models.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	result.Page = page
	return &result, nil
}
