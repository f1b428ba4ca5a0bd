package conflict_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/leave-management/internal/conflict"
)

func TestConflict(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Conflict Suite")
}

// Mock repository for testing
type mockConflictRepository struct {
	overlaps []*conflict.Overlap
	err      error

	gotStart   time.Time
	gotEnd     time.Time
	gotExclude int64
}

func (m *mockConflictRepository) ProtectedOverlapping(start, end time.Time, excludeUserID int64) ([]*conflict.Overlap, error) {
	m.gotStart = start
	m.gotEnd = end
	m.gotExclude = excludeUserID
	if m.err != nil {
		return nil, m.err
	}
	return m.overlaps, nil
}

var _ = Describe("ConflictService", func() {
	var (
		service  *conflict.Service
		mockRepo *mockConflictRepository
		logger   *slog.Logger
		start    time.Time
		end      time.Time
	)

	BeforeEach(func() {
		mockRepo = &mockConflictRepository{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = conflict.NewService(mockRepo, logger)
		start = time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC)
		end = time.Date(2025, time.July, 11, 0, 0, 0, 0, time.UTC)
	})

	Context("when another protected user overlaps the range", func() {
		BeforeEach(func() {
			mockRepo.overlaps = []*conflict.Overlap{
				{UserID: 2, UserName: "Sari Oncall", StartDate: start, EndDate: end, Status: "approved"},
			}
		})

		It("reports the conflict with the user's name", func() {
			result, err := service.CheckConflict(start, end, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.HasConflict).To(BeTrue())
			Expect(result.ConflictingUsers).To(ConsistOf("Sari Oncall"))
		})

		It("passes the probe range and exclusion through to storage", func() {
			_, err := service.CheckConflict(start, end, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.gotStart).To(Equal(start))
			Expect(mockRepo.gotEnd).To(Equal(end))
			Expect(mockRepo.gotExclude).To(Equal(int64(1)))
		})
	})

	Context("when the same user overlaps with several requests", func() {
		BeforeEach(func() {
			mockRepo.overlaps = []*conflict.Overlap{
				{UserID: 2, UserName: "Sari Oncall", Status: "pending"},
				{UserID: 2, UserName: "Sari Oncall", Status: "approved"},
				{UserID: 3, UserName: "Budi Oncall", Status: "approved"},
			}
		})

		It("lists each user once", func() {
			result, err := service.CheckConflict(start, end, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ConflictingUsers).To(ConsistOf("Sari Oncall", "Budi Oncall"))
		})
	})

	Context("when nothing overlaps", func() {
		It("reports no conflict", func() {
			result, err := service.CheckConflict(start, end, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.HasConflict).To(BeFalse())
			Expect(result.ConflictingUsers).To(BeEmpty())
		})
	})

	Context("when storage fails", func() {
		BeforeEach(func() {
			mockRepo.err = errors.New("connection refused")
		})

		It("returns the error to the caller", func() {
			_, err := service.CheckConflict(start, end, 1)
			Expect(err).To(HaveOccurred())
		})
	})
})
