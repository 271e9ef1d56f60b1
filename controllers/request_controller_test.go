package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/services"
	"github.com/pranavxdevops/membership-backend/websocket"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

type stubRequestStore struct {
	request *models.Request
}

func (s *stubRequestStore) FindByID(ctx context.Context, id string) (*models.Request, error) {
	if s.request != nil && s.request.ID.Hex() == id {
		cp := *s.request
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *stubRequestStore) FindByMemberID(ctx context.Context, memberID string) (*models.Request, error) {
	return nil, mongo.ErrNoDocuments
}

func (s *stubRequestStore) ListByMemberID(ctx context.Context, memberID string) ([]models.Request, error) {
	return []models.Request{}, nil
}

func (s *stubRequestStore) List(ctx context.Context, status string, page, limit int) (*models.RequestList, error) {
	return &models.RequestList{Requests: []models.Request{}, Page: page, Limit: limit}, nil
}

func (s *stubRequestStore) Insert(ctx context.Context, request *models.Request) (*models.Request, error) {
	request.ID = primitive.NewObjectID()
	s.request = request
	cp := *request
	return &cp, nil
}

func (s *stubRequestStore) ReplaceContent(ctx context.Context, id primitive.ObjectID, organisationInfo map[string]interface{}, status string) (*models.Request, error) {
	s.request.OrganisationInfo = organisationInfo
	s.request.RequestStatus = status
	s.request.Comments = nil
	cp := *s.request
	return &cp, nil
}

func (s *stubRequestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, comments *string) (*models.Request, error) {
	s.request.RequestStatus = status
	s.request.Comments = comments
	cp := *s.request
	return &cp, nil
}

type stubMemberStore struct {
	member *models.Member
}

func (s *stubMemberStore) FindByMemberID(ctx context.Context, memberID string) (*models.Member, error) {
	if s.member != nil && s.member.MemberID == memberID {
		cp := *s.member
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (s *stubMemberStore) GenericUpdate(ctx context.Context, memberID string, organisationInfo map[string]interface{}) (*models.Member, error) {
	cp := *s.member
	return &cp, nil
}

type noopMailer struct{}

func (noopMailer) SendAsync(to, subject, htmlBody string) {}

func newDecisionFixture() (*RequestController, *stubRequestStore) {
	store := &stubRequestStore{
		request: &models.Request{
			ID:               primitive.NewObjectID(),
			MemberID:         "MEMBER-001",
			OrganisationInfo: map[string]interface{}{"companyName": "Acme Corp"},
			RequestStatus:    models.RequestStatusPending,
		},
	}
	members := &stubMemberStore{member: &models.Member{
		ID:       primitive.NewObjectID(),
		MemberID: "MEMBER-001",
	}}
	svc := services.NewRequestService(store, members, noopMailer{}, "")
	return NewRequestController(svc, nil, websocket.NewHub()), store
}

func TestUpdateRequestEndpoint(t *testing.T) {
	e := newTestEcho()

	do := func(rc *RequestController, id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/requests/"+id, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/api/requests/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		require.NoError(t, rc.UpdateRequest(c))
		return rec
	}

	t.Run("approves with comments", func(t *testing.T) {
		rc, store := newDecisionFixture()
		rec := do(rc, store.request.ID.Hex(), `{"requestStatus":"APPROVED","comments":"Looks good"}`)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp models.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Request updated successfully", resp.Message)
		assert.Equal(t, models.RequestStatusApproved, store.request.RequestStatus)
	})

	t.Run("maps validation failures to 400", func(t *testing.T) {
		rc, store := newDecisionFixture()
		rec := do(rc, store.request.ID.Hex(), `{"requestStatus":"APPROVED","comments":""}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Comments are required and cannot be empty when approvinging a request.")
	})

	t.Run("maps unknown requests to 404", func(t *testing.T) {
		rc, _ := newDecisionFixture()
		rec := do(rc, primitive.NewObjectID().Hex(), `{"requestStatus":"REJECTED","comments":"nope"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects a body without a status", func(t *testing.T) {
		rc, store := newDecisionFixture()
		rec := do(rc, store.request.ID.Hex(), `{"comments":"nope"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "requestStatus is required")
	})
}

func TestSaveDraftEndpoint(t *testing.T) {
	e := newTestEcho()
	rc, store := newDecisionFixture()
	store.request = nil

	req := httptest.NewRequest(http.MethodPost, "/api/requests/draft",
		strings.NewReader(`{"memberId":"MEMBER-002","organisationInfo":{"companyName":"New Co"}}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, rc.SaveDraft(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, store.request)
	assert.Equal(t, models.RequestStatusDraft, store.request.RequestStatus)
	assert.Equal(t, "MEMBER-002", store.request.MemberID)
}
