package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
)

type statusCall struct {
	id       primitive.ObjectID
	status   string
	comments *string
}

type fakeRequestStore struct {
	mu          sync.Mutex
	requests    map[string]*models.Request
	updateErr   error
	statusCalls []statusCall

	listStatus string
	listPage   int
	listLimit  int
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: make(map[string]*models.Request)}
}

func (f *fakeRequestStore) add(r *models.Request) *models.Request {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.requests[r.ID.Hex()] = r
	return r
}

func (f *fakeRequestStore) FindByID(ctx context.Context, id string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestStore) FindByMemberID(ctx context.Context, memberID string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.MemberID == memberID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeRequestStore) ListByMemberID(ctx context.Context, memberID string) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Request{}
	for _, r := range f.requests {
		if r.MemberID == memberID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) List(ctx context.Context, status string, page, limit int) (*models.RequestList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listStatus = status
	f.listPage = page
	f.listLimit = limit
	return &models.RequestList{Requests: []models.Request{}, Page: page, Limit: limit}, nil
}

func (f *fakeRequestStore) Insert(ctx context.Context, request *models.Request) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	f.requests[request.ID.Hex()] = request
	cp := *request
	return &cp, nil
}

func (f *fakeRequestStore) ReplaceContent(ctx context.Context, id primitive.ObjectID, organisationInfo map[string]interface{}, status string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id.Hex()]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	r.OrganisationInfo = organisationInfo
	r.RequestStatus = status
	r.Comments = nil
	r.DeletedAt = nil
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

func (f *fakeRequestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, comments *string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: status, comments: comments})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	r, ok := f.requests[id.Hex()]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	r.RequestStatus = status
	r.Comments = comments
	r.UpdatedAt = time.Now()
	cp := *r
	return &cp, nil
}

type mergeCall struct {
	memberID string
	info     map[string]interface{}
}

type fakeMemberStore struct {
	mu         sync.Mutex
	members    map[string]*models.Member
	mergeErr   error
	mergeCalls []mergeCall
	findCalls  int
}

func newFakeMemberStore(members ...*models.Member) *fakeMemberStore {
	f := &fakeMemberStore{members: make(map[string]*models.Member)}
	for _, m := range members {
		f.members[m.MemberID] = m
	}
	return f
}

func (f *fakeMemberStore) FindByMemberID(ctx context.Context, memberID string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	m, ok := f.members[memberID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMemberStore) GenericUpdate(ctx context.Context, memberID string, organisationInfo map[string]interface{}) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls = append(f.mergeCalls, mergeCall{memberID: memberID, info: organisationInfo})
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	m, ok := f.members[memberID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range organisationInfo {
		if m.OrganisationInfo == nil {
			m.OrganisationInfo = make(map[string]interface{})
		}
		m.OrganisationInfo[k] = v
	}
	cp := *m
	return &cp, nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (f *fakeMailer) SendAsync(to, subject, htmlBody string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: htmlBody})
}

func (f *fakeMailer) emails() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEmail, len(f.sent))
	copy(out, f.sent)
	return out
}

func testMember(memberID, email string) *models.Member {
	return &models.Member{
		ID:       primitive.NewObjectID(),
		MemberID: memberID,
		OrganisationInfo: map[string]interface{}{
			"companyName": "Initial Name",
			"sector":      "Logistics",
		},
		Users: []models.UserSnapshot{
			{FullName: "Primary Contact", Email: email, IsPrimary: true},
		},
		Status:        models.MemberStatusActive,
		PaymentStatus: models.PaymentStatusPaid,
	}
}

func newTestService(requests *fakeRequestStore, members *fakeMemberStore, mailer *fakeMailer) *RequestService {
	return NewRequestService(requests, members, mailer, "admin@example.org")
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending request and notifies admin and member", func(t *testing.T) {
		requests := newFakeRequestStore()
		members := newFakeMemberStore(testMember("MEMBER-001", "contact@acme.test"))
		mailer := &fakeMailer{}
		svc := newTestService(requests, members, mailer)

		info := map[string]interface{}{"companyName": "Acme Corp", "city": "Beirut"}
		request, err := svc.CreateRequest(ctx, "MEMBER-001", info)
		require.NoError(t, err)

		assert.Equal(t, models.RequestStatusPending, request.RequestStatus)
		assert.Equal(t, "MEMBER-001", request.MemberID)
		assert.Equal(t, info, request.OrganisationInfo)
		assert.Nil(t, request.Comments)
		assert.False(t, request.ID.IsZero())

		require.Eventually(t, func() bool {
			return len(mailer.emails()) == 2
		}, 2*time.Second, 10*time.Millisecond)

		recipients := map[string]bool{}
		for _, e := range mailer.emails() {
			recipients[e.to] = true
		}
		assert.True(t, recipients["admin@example.org"])
		assert.True(t, recipients["contact@acme.test"])
	})

	t.Run("overwrites an existing request instead of creating a duplicate", func(t *testing.T) {
		requests := newFakeRequestStore()
		comments := "incomplete data"
		existing := requests.add(&models.Request{
			MemberID:         "MEMBER-001",
			OrganisationInfo: map[string]interface{}{"companyName": "Old Proposal"},
			RequestStatus:    models.RequestStatusRejected,
			Comments:         &comments,
		})
		members := newFakeMemberStore(testMember("MEMBER-001", "contact@acme.test"))
		svc := newTestService(requests, members, &fakeMailer{})

		request, err := svc.CreateRequest(ctx, "MEMBER-001", map[string]interface{}{"companyName": "New Proposal"})
		require.NoError(t, err)

		assert.Equal(t, existing.ID, request.ID)
		assert.Equal(t, models.RequestStatusPending, request.RequestStatus)
		assert.Equal(t, "New Proposal", request.OrganisationInfo["companyName"])
		assert.Nil(t, request.Comments, "previous reviewer comments must be cleared on resubmission")
		assert.Len(t, requests.requests, 1)
	})

	t.Run("rejects a nil organisation info payload", func(t *testing.T) {
		svc := newTestService(newFakeRequestStore(), newFakeMemberStore(), &fakeMailer{})

		_, err := svc.CreateRequest(ctx, "MEMBER-001", nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "organisationInfo must be a non-null object", vErr.Error())
	})

	t.Run("rejects an unknown member", func(t *testing.T) {
		requests := newFakeRequestStore()
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		_, err := svc.CreateRequest(ctx, "MEMBER-999", map[string]interface{}{"companyName": "Ghost Corp"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Member with id MEMBER-999 not found", vErr.Error())
		assert.Empty(t, requests.requests, "no request may be stored for an unknown member")
	})
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a draft without checking member existence or notifying", func(t *testing.T) {
		requests := newFakeRequestStore()
		members := newFakeMemberStore()
		mailer := &fakeMailer{}
		svc := newTestService(requests, members, mailer)

		request, err := svc.SaveDraft(ctx, "MEMBER-001", map[string]interface{}{"companyName": "Half Done"})
		require.NoError(t, err)

		assert.Equal(t, models.RequestStatusDraft, request.RequestStatus)
		assert.Equal(t, 0, members.findCalls)
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, mailer.emails())
	})

	t.Run("replaces a previous request with the new draft", func(t *testing.T) {
		requests := newFakeRequestStore()
		existing := requests.add(&models.Request{
			MemberID:         "MEMBER-001",
			OrganisationInfo: map[string]interface{}{"companyName": "Pending Proposal"},
			RequestStatus:    models.RequestStatusPending,
		})
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		request, err := svc.SaveDraft(ctx, "MEMBER-001", map[string]interface{}{"companyName": "Draft Again"})
		require.NoError(t, err)

		assert.Equal(t, existing.ID, request.ID)
		assert.Equal(t, models.RequestStatusDraft, request.RequestStatus)
	})

	t.Run("revives a soft-deleted request instead of inserting a duplicate", func(t *testing.T) {
		requests := newFakeRequestStore()
		deletedAt := time.Now().Add(-time.Hour)
		existing := requests.add(&models.Request{
			MemberID:         "MEMBER-001",
			OrganisationInfo: map[string]interface{}{"companyName": "Old Proposal"},
			RequestStatus:    models.RequestStatusRejected,
			DeletedAt:        &deletedAt,
		})
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		request, err := svc.SaveDraft(ctx, "MEMBER-001", map[string]interface{}{"companyName": "Fresh Draft"})
		require.NoError(t, err)

		// The requests collection holds a unique memberId index; a second
		// document for the member would not be insertable.
		assert.Len(t, requests.requests, 1)
		assert.Equal(t, existing.ID, request.ID)
		assert.Equal(t, models.RequestStatusDraft, request.RequestStatus)
		assert.Nil(t, request.DeletedAt)
	})

	t.Run("rejects a nil organisation info payload", func(t *testing.T) {
		svc := newTestService(newFakeRequestStore(), newFakeMemberStore(), &fakeMailer{})

		_, err := svc.SaveDraft(ctx, "MEMBER-001", nil)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	})
}

func TestUpdateRequest(t *testing.T) {
	ctx := context.Background()

	pendingRequest := func(requests *fakeRequestStore) *models.Request {
		return requests.add(&models.Request{
			MemberID:         "MEMBER-001",
			OrganisationInfo: map[string]interface{}{"companyName": "Acme Corp", "city": "Beirut"},
			RequestStatus:    models.RequestStatusPending,
		})
	}

	t.Run("approving merges the proposed changes into the member", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		member := testMember("MEMBER-001", "contact@acme.test")
		members := newFakeMemberStore(member)
		svc := newTestService(requests, members, &fakeMailer{})

		updated, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusApproved, "Looks good")
		require.NoError(t, err)

		assert.Equal(t, models.RequestStatusApproved, updated.RequestStatus)
		require.NotNil(t, updated.Comments)
		assert.Equal(t, "Looks good", *updated.Comments)

		require.Len(t, members.mergeCalls, 1)
		assert.Equal(t, "MEMBER-001", members.mergeCalls[0].memberID)
		assert.Equal(t, req.OrganisationInfo, members.mergeCalls[0].info)

		// The merge is additive: untouched fields survive.
		assert.Equal(t, "Acme Corp", member.OrganisationInfo["companyName"])
		assert.Equal(t, "Beirut", member.OrganisationInfo["city"])
		assert.Equal(t, "Logistics", member.OrganisationInfo["sector"])
	})

	t.Run("rejecting records comments without touching the member", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		members := newFakeMemberStore(testMember("MEMBER-001", "contact@acme.test"))
		svc := newTestService(requests, members, &fakeMailer{})

		updated, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusRejected, "Address is incomplete")
		require.NoError(t, err)

		assert.Equal(t, models.RequestStatusRejected, updated.RequestStatus)
		require.NotNil(t, updated.Comments)
		assert.Equal(t, "Address is incomplete", *updated.Comments)
		assert.Empty(t, members.mergeCalls)
	})

	t.Run("approving without comments is rejected", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		_, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusApproved, "   ")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Comments are required and cannot be empty when approvinging a request.", vErr.Error())
		assert.Empty(t, requests.statusCalls)
	})

	t.Run("rejecting without comments is rejected", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		_, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusRejected, "")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Comments are required and cannot be empty when rejecting a request.", vErr.Error())
	})

	t.Run("reverting to a non-terminal status with comments is rejected", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		_, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusPending, "some note")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Comments must be empty when reverting a request to PENDING", vErr.Error())
	})

	t.Run("reverting to draft clears comments", func(t *testing.T) {
		requests := newFakeRequestStore()
		comments := "rejected earlier"
		req := requests.add(&models.Request{
			MemberID:         "MEMBER-001",
			OrganisationInfo: map[string]interface{}{"companyName": "Acme Corp"},
			RequestStatus:    models.RequestStatusRejected,
			Comments:         &comments,
		})
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		updated, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusDraft, "")
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusDraft, updated.RequestStatus)
		assert.Nil(t, updated.Comments)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		svc := newTestService(newFakeRequestStore(), newFakeMemberStore(), &fakeMailer{})

		_, err := svc.UpdateRequest(ctx, primitive.NewObjectID().Hex(), "ARCHIVED", "note")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Invalid request status: ARCHIVED", vErr.Error())
	})

	t.Run("unknown request id yields not found", func(t *testing.T) {
		svc := newTestService(newFakeRequestStore(), newFakeMemberStore(), &fakeMailer{})

		id := primitive.NewObjectID().Hex()
		_, err := svc.UpdateRequest(ctx, id, models.RequestStatusApproved, "ok")
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
		assert.Contains(t, nfErr.Error(), id)
	})

	t.Run("failed merge rolls the request back", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		members := newFakeMemberStore(testMember("MEMBER-001", "contact@acme.test"))
		members.mergeErr = errors.New("write conflict")
		svc := newTestService(requests, members, &fakeMailer{})

		_, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusApproved, "Looks good")
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Error(), "Failed to apply approved changes to member MEMBER-001")
		assert.Contains(t, vErr.Error(), "write conflict")

		require.Len(t, requests.statusCalls, 2)
		rollback := requests.statusCalls[1]
		assert.Equal(t, models.RequestStatusPending, rollback.status)
		assert.Nil(t, rollback.comments)

		stored := requests.requests[req.ID.Hex()]
		assert.Equal(t, models.RequestStatusPending, stored.RequestStatus)
		assert.Nil(t, stored.Comments)
	})

	t.Run("decision sends the member an email with reviewer comments", func(t *testing.T) {
		requests := newFakeRequestStore()
		req := pendingRequest(requests)
		members := newFakeMemberStore(testMember("MEMBER-001", "contact@acme.test"))
		mailer := &fakeMailer{}
		svc := newTestService(requests, members, mailer)

		_, err := svc.UpdateRequest(ctx, req.ID.Hex(), models.RequestStatusRejected, "Address is incomplete")
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return len(mailer.emails()) == 1
		}, 2*time.Second, 10*time.Millisecond)

		email := mailer.emails()[0]
		assert.Equal(t, "contact@acme.test", email.to)
		assert.Contains(t, strings.ToLower(email.subject), "rejected")
		assert.Contains(t, email.body, "Address is incomplete")
	})
}

func TestFindAll(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an invalid status filter", func(t *testing.T) {
		svc := newTestService(newFakeRequestStore(), newFakeMemberStore(), &fakeMailer{})

		_, err := svc.FindAll(ctx, "WAITING", 1, 20)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "Invalid status filter: WAITING. Must be one of DRAFT, PENDING, APPROVED, REJECTED", vErr.Error())
	})

	t.Run("normalizes page and limit", func(t *testing.T) {
		requests := newFakeRequestStore()
		svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

		_, err := svc.FindAll(ctx, models.RequestStatusPending, 0, 500)
		require.NoError(t, err)
		assert.Equal(t, models.RequestStatusPending, requests.listStatus)
		assert.Equal(t, 1, requests.listPage)
		assert.Equal(t, 20, requests.listLimit)
	})
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()

	requests := newFakeRequestStore()
	req := requests.add(&models.Request{
		MemberID:         "MEMBER-001",
		OrganisationInfo: map[string]interface{}{"companyName": "Acme Corp"},
		RequestStatus:    models.RequestStatusPending,
	})
	svc := newTestService(requests, newFakeMemberStore(), &fakeMailer{})

	found, err := svc.FindByID(ctx, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, req.ID, found.ID)

	_, err = svc.FindByID(ctx, primitive.NewObjectID().Hex())
	var nfErr *NotFoundError
	require.ErrorAs(t, err, &nfErr)
}
