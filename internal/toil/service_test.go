package toil_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/toil"
)

func TestToil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Toil Suite")
}

// Mock repository for testing
type mockToilRepository struct {
	entries            map[int64]*toil.Entry
	balances           map[int64]float64
	nextID             int64
	createError        error
	updateError        error
	balanceReadError   error
	balanceWriteError  error
	failUpdateAfter    int // fail Update once this many calls have happened
	updateCalls        int
	balanceWriteCalls  int
}

func newMockToilRepository() *mockToilRepository {
	return &mockToilRepository{
		entries:         make(map[int64]*toil.Entry),
		balances:        make(map[int64]float64),
		nextID:          1,
		failUpdateAfter: -1,
	}
}

func (m *mockToilRepository) Create(entry *toil.Entry) error {
	if m.createError != nil {
		return m.createError
	}
	entry.ID = m.nextID
	m.nextID++
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockToilRepository) GetByID(id int64) (*toil.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, errors.New("entry not found")
	}
	copied := *e
	return &copied, nil
}

func (m *mockToilRepository) GetByUserID(userID int64, limit, offset int) ([]*toil.Entry, error) {
	var result []*toil.Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockToilRepository) Update(entry *toil.Entry) error {
	m.updateCalls++
	if m.updateError != nil {
		return m.updateError
	}
	if m.failUpdateAfter >= 0 && m.updateCalls > m.failUpdateAfter {
		return errors.New("update failed")
	}
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockToilRepository) GetUserBalance(userID int64) (float64, error) {
	if m.balanceReadError != nil {
		return 0, m.balanceReadError
	}
	return m.balances[userID], nil
}

func (m *mockToilRepository) UpdateUserBalance(userID int64, hours float64) error {
	m.balanceWriteCalls++
	if m.balanceWriteError != nil {
		return m.balanceWriteError
	}
	m.balances[userID] = hours
	return nil
}

var _ = Describe("ToilService", func() {
	var (
		service  *toil.Service
		mockRepo *mockToilRepository
		logger   *slog.Logger
		admin    *auth.User
		member   *auth.User
	)

	validDTO := func(hours float64) toil.CreditDTO {
		return toil.CreditDTO{
			Hours:     hours,
			Reason:    "weekend deployment",
			EntryType: toil.TypeOvertime,
			Date:      time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC),
		}
	}

	BeforeEach(func() {
		mockRepo = newMockToilRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = toil.NewService(mockRepo, nil, logger)
		admin = &auth.User{ID: 9, Email: "admin@mail.com", Role: auth.RoleAdmin}
		member = &auth.User{ID: 1, Email: "user@mail.com", Role: auth.RoleMember}
	})

	Describe("Credit", func() {
		It("appends a pending entry without touching the balance", func() {
			entry, err := service.Credit(member.ID, validDTO(8))

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Status).To(Equal(toil.StatusPending))
			Expect(entry.PreviousBalance).To(BeNil())
			Expect(mockRepo.balances[member.ID]).To(Equal(0.0))
		})

		It("rejects zero hours", func() {
			_, err := service.Credit(member.ID, validDTO(0))
			Expect(err).To(HaveOccurred())
		})

		It("rejects hours outside the plausible range", func() {
			_, err := service.Credit(member.ID, validDTO(250))
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unknown entry type", func() {
			dto := validDTO(8)
			dto.EntryType = "mystery"
			_, err := service.Credit(member.ID, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Approve", func() {
		var entryID int64

		BeforeEach(func() {
			mockRepo.balances[member.ID] = 4
			entry, err := service.Credit(member.ID, validDTO(8))
			Expect(err).ToNot(HaveOccurred())
			entryID = entry.ID
		})

		It("requires the admin role", func() {
			_, err := service.Approve(entryID, member)
			Expect(err).To(HaveOccurred())
		})

		It("stamps the balance snapshot so that new - previous == hours", func() {
			entry, err := service.Approve(entryID, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Status).To(Equal(toil.StatusApproved))
			Expect(entry.PreviousBalance).ToNot(BeNil())
			Expect(entry.NewBalance).ToNot(BeNil())
			Expect(*entry.NewBalance - *entry.PreviousBalance).To(Equal(entry.Hours))
			Expect(*entry.PreviousBalance).To(Equal(4.0))
			Expect(mockRepo.balances[member.ID]).To(Equal(12.0))
		})

		It("refuses to approve twice", func() {
			_, err := service.Approve(entryID, admin)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Approve(entryID, admin)
			Expect(err).To(HaveOccurred())
		})

		It("handles negative adjustments symmetrically", func() {
			entry, err := service.Credit(member.ID, validDTO(-6))
			Expect(err).ToNot(HaveOccurred())

			approved, err := service.Approve(entry.ID, admin)

			Expect(err).ToNot(HaveOccurred())
			Expect(*approved.NewBalance).To(Equal(-2.0))
			Expect(mockRepo.balances[member.ID]).To(Equal(-2.0))
		})

		Context("when the balance write fails", func() {
			BeforeEach(func() {
				mockRepo.balanceWriteError = errors.New("disk full")
			})

			It("reverts the entry to pending with the snapshot cleared", func() {
				_, err := service.Approve(entryID, admin)
				Expect(err).To(HaveOccurred())

				reverted, getErr := mockRepo.GetByID(entryID)
				Expect(getErr).ToNot(HaveOccurred())
				Expect(reverted.Status).To(Equal(toil.StatusPending))
				Expect(reverted.PreviousBalance).To(BeNil())
				Expect(reverted.NewBalance).To(BeNil())
				Expect(reverted.ApprovedBy).To(BeNil())
			})

			It("leaves the stored balance untouched", func() {
				_, err := service.Approve(entryID, admin)
				Expect(err).To(HaveOccurred())
				Expect(mockRepo.balances[member.ID]).To(Equal(4.0))
			})
		})
	})

	Describe("CreditApproved", func() {
		It("creates and approves in one step", func() {
			entry, err := service.CreditApproved(member.ID, validDTO(8), admin.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Status).To(Equal(toil.StatusApproved))
			Expect(mockRepo.balances[member.ID]).To(Equal(8.0))
		})
	})

	Describe("Reject", func() {
		var entryID int64

		BeforeEach(func() {
			entry, err := service.Credit(member.ID, validDTO(8))
			Expect(err).ToNot(HaveOccurred())
			entryID = entry.ID
		})

		It("requires a reason", func() {
			_, err := service.Reject(entryID, admin, toil.RejectDTO{})
			Expect(err).To(HaveOccurred())
		})

		It("finalizes the entry without touching the balance", func() {
			entry, err := service.Reject(entryID, admin, toil.RejectDTO{Reason: "not actual overtime"})

			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Status).To(Equal(toil.StatusRejected))
			Expect(entry.Reason).To(ContainSubstring("rejected: not actual overtime"))
			Expect(mockRepo.balances[member.ID]).To(Equal(0.0))
		})

		It("refuses to reject an approved entry", func() {
			_, err := service.Approve(entryID, admin)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Reject(entryID, admin, toil.RejectDTO{Reason: "too late"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("balance consistency", func() {
		It("keeps the stored balance equal to the sum of approved hours", func() {
			adjustments := []float64{8, -4, 2.5, -1.5}
			var expected float64

			for _, h := range adjustments {
				_, err := service.CreditApproved(member.ID, validDTO(h), admin.ID)
				Expect(err).ToNot(HaveOccurred())
				expected += h
			}

			Expect(mockRepo.balances[member.ID]).To(Equal(expected))
		})
	})
})
