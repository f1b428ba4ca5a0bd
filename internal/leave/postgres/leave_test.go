package postgres

import (
	"testing"
	"time"

	"github.com/frahmantamala/leave-management/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestLeaveRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LeaveRepository Suite")
}

type SQLiteLeaveRequest struct {
	ID         int64      `gorm:"primaryKey"`
	UserID     int64      `gorm:"column:user_id;not null"`
	StartDate  time.Time  `gorm:"column:start_date"`
	EndDate    time.Time  `gorm:"column:end_date"`
	LeaveType  string     `gorm:"column:leave_type"`
	Status     string     `gorm:"column:status;default:'pending'"`
	Hours      *float64   `gorm:"column:hours"`
	Reason     string     `gorm:"column:reason"`
	Comments   string     `gorm:"column:comments"`
	ApprovedBy *int64     `gorm:"column:approved_by"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (SQLiteLeaveRequest) TableName() string {
	return "leave_requests"
}

var _ = Describe("LeaveRepository", func() {
	var (
		db   *gorm.DB
		repo leave.Repository
	)

	newRequest := func(userID int64) *leave.LeaveRequest {
		return &leave.LeaveRequest{
			UserID:    userID,
			StartDate: time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, time.June, 18, 0, 0, 0, 0, time.UTC),
			LeaveType: leave.TypeAnnual,
			Status:    leave.StatusPending,
			Reason:    "holiday",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteLeaveRequest{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewLeaveRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should create a leave request and assign an ID", func() {
			req := newRequest(1)

			err := repo.Create(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.ID).To(BeNumerically(">", 0))
		})
	})

	Describe("GetByID", func() {
		It("should return the stored request", func() {
			req := newRequest(1)
			Expect(repo.Create(req)).To(Succeed())

			found, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.UserID).To(Equal(int64(1)))
			Expect(found.Status).To(Equal(leave.StatusPending))
		})

		It("should fail for a missing ID", func() {
			_, err := repo.GetByID(9999)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UpdateStatusFrom", func() {
		var req *leave.LeaveRequest

		BeforeEach(func() {
			req = newRequest(1)
			Expect(repo.Create(req)).To(Succeed())
		})

		It("should update when the expected status matches", func() {
			approver := int64(9)
			now := time.Now()

			err := repo.UpdateStatusFrom(req.ID, leave.StatusPending, leave.StatusApproved, &approver, &now, "")
			Expect(err).NotTo(HaveOccurred())

			found, err := repo.GetByID(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusApproved))
			Expect(found.ApprovedBy).NotTo(BeNil())
			Expect(*found.ApprovedBy).To(Equal(approver))
		})

		It("should return ErrStatusConflict when the row already moved on", func() {
			approver := int64(9)
			now := time.Now()
			Expect(repo.UpdateStatusFrom(req.ID, leave.StatusPending, leave.StatusApproved, &approver, &now, "")).To(Succeed())

			err := repo.UpdateStatusFrom(req.ID, leave.StatusPending, leave.StatusRejected, &approver, &now, "too late")
			Expect(err).To(MatchError(leave.ErrStatusConflict))

			found, getErr := repo.GetByID(req.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(leave.StatusApproved))
		})

		It("should persist comments on rejection", func() {
			approver := int64(9)
			now := time.Now()

			err := repo.UpdateStatusFrom(req.ID, leave.StatusPending, leave.StatusRejected, &approver, &now, "rejected: coverage gap")
			Expect(err).NotTo(HaveOccurred())

			found, getErr := repo.GetByID(req.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(found.Comments).To(ContainSubstring("coverage gap"))
		})
	})

	Describe("GetStatus", func() {
		It("should return only the status column", func() {
			req := newRequest(1)
			Expect(repo.Create(req)).To(Succeed())

			status, err := repo.GetStatus(req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(leave.StatusPending))
		})
	})

	Describe("GetByUserID", func() {
		It("should return only the user's requests", func() {
			Expect(repo.Create(newRequest(1))).To(Succeed())
			Expect(repo.Create(newRequest(1))).To(Succeed())
			Expect(repo.Create(newRequest(2))).To(Succeed())

			found, err := repo.GetByUserID(1, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))
		})
	})

	Describe("GetPending", func() {
		It("should exclude finalized requests", func() {
			first := newRequest(1)
			second := newRequest(2)
			Expect(repo.Create(first)).To(Succeed())
			Expect(repo.Create(second)).To(Succeed())

			approver := int64(9)
			now := time.Now()
			Expect(repo.UpdateStatusFrom(first.ID, leave.StatusPending, leave.StatusApproved, &approver, &now, "")).To(Succeed())

			pending, err := repo.GetPending(10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal(second.ID))
		})
	})
})
