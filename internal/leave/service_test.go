package leave_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/balance"
	"github.com/frahmantamala/leave-management/internal/conflict"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/toil"
	"github.com/frahmantamala/leave-management/internal/user"
)

func TestLeave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Suite")
}

// Mock repository for testing. Guarded by a mutex so the concurrency specs
// exercise the conditional status write the way the database would.
type mockLeaveRepository struct {
	mu          sync.Mutex
	requests    map[int64]*leave.LeaveRequest
	nextID      int64
	createError error
	getError    error
}

func newMockLeaveRepository() *mockLeaveRepository {
	return &mockLeaveRepository{
		requests: make(map[int64]*leave.LeaveRequest),
		nextID:   1,
	}
}

func (m *mockLeaveRepository) Create(req *leave.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	req.ID = m.nextID
	m.nextID++
	stored := *req
	m.requests[req.ID] = &stored
	return nil
}

func (m *mockLeaveRepository) GetByID(id int64) (*leave.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	req, ok := m.requests[id]
	if !ok {
		return nil, errors.New("leave request not found")
	}
	copied := *req
	return &copied, nil
}

func (m *mockLeaveRepository) GetStatus(id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return "", errors.New("leave request not found")
	}
	return req.Status, nil
}

func (m *mockLeaveRepository) UpdateStatusFrom(id int64, fromStatus, toStatus string, approvedBy *int64, approvedAt *time.Time, comments string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return errors.New("leave request not found")
	}
	if req.Status != fromStatus {
		return leave.ErrStatusConflict
	}
	req.Status = toStatus
	req.ApprovedBy = approvedBy
	req.ApprovedAt = approvedAt
	if comments != "" {
		req.Comments = comments
	}
	return nil
}

func (m *mockLeaveRepository) GetByUserID(userID int64, limit, offset int) ([]*leave.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*leave.LeaveRequest
	for _, req := range m.requests {
		if req.UserID == userID {
			copied := *req
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockLeaveRepository) GetPending(limit, offset int) ([]*leave.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*leave.LeaveRequest
	for _, req := range m.requests {
		if req.Status == leave.StatusPending {
			copied := *req
			result = append(result, &copied)
		}
	}
	return result, nil
}

type mockBalanceAPI struct {
	balances    map[int64]*balance.Balance
	err         error
	invalidated []int64
}

func (m *mockBalanceAPI) GetBalance(userID int64, year int) (*balance.Balance, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.balances[userID]; ok {
		return b, nil
	}
	return &balance.Balance{UserID: userID, Year: year, Allowance: 25, Remaining: 25}, nil
}

func (m *mockBalanceAPI) Invalidate(userID int64) {
	m.invalidated = append(m.invalidated, userID)
}

type mockConflictAPI struct {
	result *conflict.Result
	err    error
	calls  int
}

func (m *mockConflictAPI) CheckConflict(start, end time.Time, excludeUserID int64) (*conflict.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &conflict.Result{HasConflict: false, ConflictingUsers: []string{}}, nil
}

type mockToilAPI struct {
	err      error
	credited []toil.CreditDTO
}

func (m *mockToilAPI) CreditApproved(userID int64, dto toil.CreditDTO, approverID int64) (*toil.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.credited = append(m.credited, dto)
	return &toil.Entry{ID: 1, UserID: userID, Hours: dto.Hours, Status: toil.StatusApproved}, nil
}

type mockUserAPI struct {
	users map[int64]*user.User
}

func (m *mockUserAPI) GetUser(id int64) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) byType(eventType string) []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []events.Event
	for _, e := range m.events {
		if e.EventType() == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

var _ = Describe("LeaveService", func() {
	var (
		service   *leave.Service
		mockRepo  *mockLeaveRepository
		balances  *mockBalanceAPI
		conflicts *mockConflictAPI
		toils     *mockToilAPI
		users     *mockUserAPI
		publisher *mockPublisher
		logger    *slog.Logger
		admin     *auth.User
		member    *auth.User
	)

	futureMonday := func() time.Time {
		d := time.Now().AddDate(0, 0, 7)
		for d.Weekday() != time.Monday {
			d = d.AddDate(0, 0, 1)
		}
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}

	submitDTO := func(days int) leave.SubmitDTO {
		start := futureMonday()
		return leave.SubmitDTO{
			StartDate: start,
			EndDate:   start.AddDate(0, 0, days-1),
			LeaveType: leave.TypeAnnual,
			Reason:    "family holiday",
		}
	}

	BeforeEach(func() {
		mockRepo = newMockLeaveRepository()
		balances = &mockBalanceAPI{balances: make(map[int64]*balance.Balance)}
		conflicts = &mockConflictAPI{}
		toils = &mockToilAPI{}
		users = &mockUserAPI{users: map[int64]*user.User{
			1: {ID: 1, Email: "user@mail.com", Name: "User", Role: "member"},
			2: {ID: 2, Email: "sari@mail.com", Name: "Sari Oncall", Role: "member", ProtectedCoverage: true},
		}}
		publisher = &mockPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leave.NewService(mockRepo, balances, conflicts, toils, users, publisher, logger)
		admin = &auth.User{ID: 9, Email: "admin@mail.com", Role: auth.RoleAdmin}
		member = &auth.User{ID: 1, Email: "user@mail.com", Role: auth.RoleMember}
	})

	Describe("Submit", func() {
		It("creates a pending request and reports the remaining balance", func() {
			result, err := service.Submit(1, submitDTO(3))

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Request.Status).To(Equal(leave.StatusPending))
			Expect(result.RequestedDays).To(Equal(3))
			Expect(result.RemainingAfter).To(Equal(22.0))
			Expect(publisher.byType(events.EventTypeLeaveSubmitted)).To(HaveLen(1))
		})

		It("rejects a start date in the past", func() {
			dto := submitDTO(2)
			dto.StartDate = time.Now().AddDate(0, 0, -3)
			dto.EndDate = time.Now().AddDate(0, 0, -1)

			_, err := service.Submit(1, dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an inverted date range", func() {
			dto := submitDTO(2)
			dto.StartDate, dto.EndDate = dto.EndDate, dto.StartDate

			_, err := service.Submit(1, dto)
			Expect(err).To(HaveOccurred())
		})

		Context("with insufficient annual balance", func() {
			BeforeEach(func() {
				balances.balances[1] = &balance.Balance{UserID: 1, Allowance: 25, Used: 23, Remaining: 2}
			})

			It("refuses the request", func() {
				_, err := service.Submit(1, submitDTO(3))
				Expect(err).To(HaveOccurred())
			})

			It("does not create anything", func() {
				_, _ = service.Submit(1, submitDTO(3))
				Expect(mockRepo.requests).To(BeEmpty())
			})
		})

		Context("for a protected coverage user", func() {
			BeforeEach(func() {
				conflicts.result = &conflict.Result{HasConflict: true, ConflictingUsers: []string{"Budi Oncall"}}
			})

			It("attaches the advisory conflict without blocking", func() {
				result, err := service.Submit(2, submitDTO(2))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Conflict).ToNot(BeNil())
				Expect(result.Conflict.HasConflict).To(BeTrue())
				Expect(result.Request.Status).To(Equal(leave.StatusPending))
			})

			It("still submits when the conflict check itself fails", func() {
				conflicts.err = errors.New("probe timeout")

				result, err := service.Submit(2, submitDTO(2))

				Expect(err).ToNot(HaveOccurred())
				Expect(result.Conflict).To(BeNil())
			})
		})

		It("skips the conflict check for unprotected users", func() {
			_, err := service.Submit(1, submitDTO(2))

			Expect(err).ToNot(HaveOccurred())
			Expect(conflicts.calls).To(Equal(0))
		})
	})

	Describe("Approve", func() {
		var requestID int64

		BeforeEach(func() {
			result, err := service.Submit(1, submitDTO(3))
			Expect(err).ToNot(HaveOccurred())
			requestID = result.Request.ID
		})

		It("requires the admin role", func() {
			_, err := service.Approve(requestID, member)
			Expect(err).To(HaveOccurred())
		})

		It("moves a pending request to approved", func() {
			req, err := service.Approve(requestID, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusApproved))
			Expect(req.ApprovedBy).ToNot(BeNil())
			Expect(*req.ApprovedBy).To(Equal(admin.ID))
			Expect(publisher.byType(events.EventTypeLeaveApproved)).To(HaveLen(1))
		})

		It("invalidates the requester's cached balances", func() {
			_, err := service.Approve(requestID, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(balances.invalidated).To(ContainElement(int64(1)))
		})

		It("lets exactly one of two concurrent approvals win", func() {
			second := &auth.User{ID: 10, Email: "admin2@mail.com", Role: auth.RoleAdmin}

			var wg sync.WaitGroup
			errs := make([]error, 2)
			approvers := []*auth.User{admin, second}
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = service.Approve(requestID, approvers[i])
				}(i)
			}
			wg.Wait()

			failures := 0
			for _, err := range errs {
				if err != nil {
					failures++
				}
			}
			Expect(failures).To(Equal(1))

			stored, err := mockRepo.GetByID(requestID)
			Expect(err).ToNot(HaveOccurred())
			Expect(stored.Status).To(Equal(leave.StatusApproved))
		})

		Context("for a TOIL request", func() {
			var toilRequestID int64

			BeforeEach(func() {
				spend := -8.0
				start := futureMonday()
				balances.balances[1] = &balance.Balance{UserID: 1, Allowance: 25, Remaining: 25, ToilHours: 16}
				result, err := service.Submit(1, leave.SubmitDTO{
					StartDate: start,
					EndDate:   start,
					LeaveType: leave.TypeToil,
					Hours:     &spend,
					Reason:    "comp day",
				})
				Expect(err).ToNot(HaveOccurred())
				toilRequestID = result.Request.ID
			})

			It("credits the TOIL sub-ledger on approval", func() {
				_, err := service.Approve(toilRequestID, admin)

				Expect(err).ToNot(HaveOccurred())
				Expect(toils.credited).To(HaveLen(1))
				Expect(toils.credited[0].Hours).To(Equal(-8.0))
			})

			It("keeps the approval when the TOIL credit fails", func() {
				toils.err = errors.New("ledger unavailable")

				req, err := service.Approve(toilRequestID, admin)

				Expect(err).ToNot(HaveOccurred())
				Expect(req.Status).To(Equal(leave.StatusApproved))
				Expect(publisher.byType(events.EventTypeToilCreditFailed)).To(HaveLen(1))
			})
		})
	})

	Describe("Reject", func() {
		var requestID int64

		BeforeEach(func() {
			result, err := service.Submit(1, submitDTO(2))
			Expect(err).ToNot(HaveOccurred())
			requestID = result.Request.ID
		})

		It("requires a reason", func() {
			_, err := service.Reject(requestID, admin, leave.RejectDTO{Reason: ""})
			Expect(err).To(HaveOccurred())
		})

		It("records the reason in the comments", func() {
			req, err := service.Reject(requestID, admin, leave.RejectDTO{Reason: "coverage gap"})

			Expect(err).ToNot(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusRejected))
			Expect(req.Comments).To(ContainSubstring("rejected: coverage gap"))
		})

		It("blocks a later approval of the same request", func() {
			_, err := service.Reject(requestID, admin, leave.RejectDTO{Reason: "coverage gap"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Approve(requestID, admin)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Cancel", func() {
		var requestID int64

		BeforeEach(func() {
			result, err := service.Submit(1, submitDTO(2))
			Expect(err).ToNot(HaveOccurred())
			requestID = result.Request.ID
		})

		It("lets the requester withdraw a pending request", func() {
			req, err := service.Cancel(requestID, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusCancelled))
		})

		It("refuses anyone but the requester", func() {
			_, err := service.Cancel(requestID, 2)
			Expect(err).To(HaveOccurred())
		})

		It("refuses once the request is approved", func() {
			_, err := service.Approve(requestID, admin)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Cancel(requestID, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("BulkApprove", func() {
		It("reports per-item outcomes and never aborts the batch", func() {
			first, err := service.Submit(1, submitDTO(2))
			Expect(err).ToNot(HaveOccurred())
			second, err := service.Submit(1, submitDTO(1))
			Expect(err).ToNot(HaveOccurred())

			// approve the second one up front so the bulk call finds it final
			_, err = service.Approve(second.Request.ID, admin)
			Expect(err).ToNot(HaveOccurred())

			results := service.BulkApprove([]int64{first.Request.ID, second.Request.ID, 999}, admin)

			Expect(results).To(HaveLen(3))
			Expect(results[0].Success).To(BeTrue())
			Expect(results[1].Success).To(BeFalse())
			Expect(results[2].Success).To(BeFalse())
			Expect(results[2].Error).ToNot(BeEmpty())
		})
	})

	Describe("BulkReject", func() {
		It("applies the shared reason to every item", func() {
			first, err := service.Submit(1, submitDTO(2))
			Expect(err).ToNot(HaveOccurred())
			second, err := service.Submit(1, submitDTO(1))
			Expect(err).ToNot(HaveOccurred())

			results := service.BulkReject([]int64{first.Request.ID, second.Request.ID}, admin, "office closure")

			Expect(results).To(HaveLen(2))
			for _, r := range results {
				Expect(r.Success).To(BeTrue())
			}
		})
	})
})
