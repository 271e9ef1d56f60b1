package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/utils"
)

// RequestStore persists organisation-info update requests.
type RequestStore interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
	FindByMemberID(ctx context.Context, memberID string) (*models.Request, error)
	ListByMemberID(ctx context.Context, memberID string) ([]models.Request, error)
	List(ctx context.Context, status string, page, limit int) (*models.RequestList, error)
	Insert(ctx context.Context, request *models.Request) (*models.Request, error)
	ReplaceContent(ctx context.Context, id primitive.ObjectID, organisationInfo map[string]interface{}, status string) (*models.Request, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, comments *string) (*models.Request, error)
}

// MemberStore is the slice of the member service the request pipeline
// consumes: existence checks, contact lookup and the merge-update.
type MemberStore interface {
	FindByMemberID(ctx context.Context, memberID string) (*models.Member, error)
	GenericUpdate(ctx context.Context, memberID string, organisationInfo map[string]interface{}) (*models.Member, error)
}

// Mailer delivers notification emails best-effort, without blocking the
// caller. utils.Mailer.SendAsync is the production implementation.
type Mailer interface {
	SendAsync(to, subject, htmlBody string)
}

// RequestService owns the organisation-info update request workflow:
// submission, drafts, the admin decision and the merge of approved changes
// into the member record.
type RequestService struct {
	requests   RequestStore
	members    MemberStore
	mailer     Mailer
	adminEmail string
}

func NewRequestService(requests RequestStore, members MemberStore, mailer Mailer, adminEmail string) *RequestService {
	return &RequestService{
		requests:   requests,
		members:    members,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// CreateRequest submits a proposed organisation-info change for admin
// review. An existing request for the member, whatever its status, is
// overwritten and reset to PENDING instead of creating a duplicate.
func (s *RequestService) CreateRequest(ctx context.Context, memberID string, organisationInfo map[string]interface{}) (*models.Request, error) {
	if organisationInfo == nil {
		return nil, NewValidationError("organisationInfo must be a non-null object")
	}

	member, err := s.members.FindByMemberID(ctx, memberID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NewValidationError("Member with id %s not found", memberID)
		}
		return nil, err
	}

	request, err := s.upsert(ctx, memberID, organisationInfo, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}

	s.notifyAdminOfSubmission(member, request)
	s.notifyMemberOfSubmission(member)

	return request, nil
}

// SaveDraft stores work-in-progress organisation info for a member without
// validating member existence and without notifying anyone. A prior request
// for the member, terminal or not, is overwritten as the new draft.
func (s *RequestService) SaveDraft(ctx context.Context, memberID string, organisationInfo map[string]interface{}) (*models.Request, error) {
	if organisationInfo == nil {
		return nil, NewValidationError("organisationInfo must be a non-null object")
	}

	return s.upsert(ctx, memberID, organisationInfo, models.RequestStatusDraft)
}

func (s *RequestService) upsert(ctx context.Context, memberID string, organisationInfo map[string]interface{}, status string) (*models.Request, error) {
	existing, err := s.requests.FindByMemberID(ctx, memberID)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, err
	}

	if existing != nil {
		return s.requests.ReplaceContent(ctx, existing.ID, organisationInfo, status)
	}

	return s.requests.Insert(ctx, &models.Request{
		MemberID:         memberID,
		OrganisationInfo: organisationInfo,
		RequestStatus:    status,
	})
}

// UpdateRequest records the admin decision for a request. Approving merges
// the proposed organisation info into the member record; if that merge
// fails the request's status and comments are rolled back best-effort and
// the merge error is surfaced as a validation failure.
func (s *RequestService) UpdateRequest(ctx context.Context, id, status, comments string) (*models.Request, error) {
	if !models.ValidRequestStatus(status) {
		return nil, NewValidationError("Invalid request status: %s", status)
	}

	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NewNotFoundError("Request with id %s not found", id)
		}
		return nil, err
	}

	terminal := status == models.RequestStatusApproved || status == models.RequestStatusRejected

	var commentsPtr *string
	if terminal {
		if strings.TrimSpace(comments) == "" {
			return nil, NewValidationError("Comments are required and cannot be empty when %singing a request.",
				strings.ToLower(strings.TrimSuffix(status, "ED")))
		}
		commentsPtr = &comments
	} else if comments != "" {
		return nil, NewValidationError("Comments must be empty when reverting a request to %s", status)
	}

	prevStatus := request.RequestStatus
	prevComments := request.Comments

	updated, err := s.requests.UpdateStatus(ctx, request.ID, status, commentsPtr)
	if err != nil {
		return nil, err
	}

	if status == models.RequestStatusApproved {
		if _, mergeErr := s.members.GenericUpdate(ctx, request.MemberID, request.OrganisationInfo); mergeErr != nil {
			// Best-effort compensation: the two writes are not one
			// transaction, so a failed merge leaves the request restored
			// and the member untouched.
			if _, rbErr := s.requests.UpdateStatus(ctx, request.ID, prevStatus, prevComments); rbErr != nil {
				log.Printf("Failed to roll back request %s after merge failure: %v", id, rbErr)
			}
			return nil, NewValidationError("Failed to apply approved changes to member %s: %v", request.MemberID, mergeErr)
		}
	}

	if terminal {
		s.notifyMemberOfDecision(ctx, updated)
	}

	return updated, nil
}

// FindByID returns a single request.
func (s *RequestService) FindByID(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NewNotFoundError("Request with id %s not found", id)
		}
		return nil, err
	}
	return request, nil
}

// FindAll returns a page of requests, optionally filtered by status.
func (s *RequestService) FindAll(ctx context.Context, status string, page, limit int) (*models.RequestList, error) {
	if status != "" && !models.ValidRequestStatus(status) {
		return nil, NewValidationError("Invalid status filter: %s. Must be one of DRAFT, PENDING, APPROVED, REJECTED", status)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return s.requests.List(ctx, status, page, limit)
}

// FindByMemberID returns every non-deleted request for a member.
func (s *RequestService) FindByMemberID(ctx context.Context, memberID string) ([]models.Request, error) {
	return s.requests.ListByMemberID(ctx, memberID)
}

func (s *RequestService) notifyAdminOfSubmission(member *models.Member, request *models.Request) {
	if s.adminEmail == "" {
		log.Println("Warning: admin email not configured, skipping admin notification")
		return
	}

	subject := fmt.Sprintf("Organisation info update requested by %s", member.MemberID)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>New Organisation Info Update Request</h2>
			<p>Member <strong>%s</strong> has submitted changes for review:</p>
			%s
			<p>Please review the request in the admin console.</p>
		</body>
		</html>
	`, member.MemberID, utils.RenderOrganisationInfoHTML(request.OrganisationInfo))

	s.mailer.SendAsync(s.adminEmail, subject, body)
}

func (s *RequestService) notifyMemberOfSubmission(member *models.Member) {
	email := member.PrimaryEmail()
	if email == "" {
		log.Printf("Member %s has no contact email, skipping submission confirmation", member.MemberID)
		return
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>We received your update request</h2>
			<p>Hello,</p>
			<p>Your organisation info update request for member %s has been submitted and is awaiting review. You will be notified once a decision is made.</p>
			<p>Thank you,<br>The Membership Team</p>
		</body>
		</html>
	`, member.MemberID)

	s.mailer.SendAsync(email, "Your update request has been received", body)
}

func (s *RequestService) notifyMemberOfDecision(ctx context.Context, request *models.Request) {
	member, err := s.members.FindByMemberID(ctx, request.MemberID)
	if err != nil {
		log.Printf("Failed to resolve member %s for decision notification: %v", request.MemberID, err)
		return
	}

	email := member.PrimaryEmail()
	if email == "" {
		log.Printf("Member %s has no contact email, skipping decision notification", member.MemberID)
		return
	}

	comments := ""
	if request.Comments != nil {
		comments = *request.Comments
	}

	subject := fmt.Sprintf("Your update request has been %s", strings.ToLower(request.RequestStatus))
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Update request %s</h2>
			<p>Hello,</p>
			<p>Your organisation info update request for member %s has been <strong>%s</strong>.</p>
			<p>Reviewer comments: %s</p>
			<p>Thank you,<br>The Membership Team</p>
		</body>
		</html>
	`, strings.ToLower(request.RequestStatus), member.MemberID, strings.ToLower(request.RequestStatus), comments)

	s.mailer.SendAsync(email, subject, body)
}
