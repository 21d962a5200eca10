package selection

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/registration"
	"github.com/ppdb/admissions-backend/internal/scoring"
	"github.com/ppdb/admissions-backend/internal/store"
)

var (
	ErrPeriodNotFound       = errors.New("periode tidak ditemukan")
	ErrPeriodNotActive      = errors.New("periode tidak berstatus aktif")
	ErrSelectionNotRun      = errors.New("seleksi belum pernah dijalankan untuk periode ini")
	ErrSelectionInputsChanged = errors.New("data verifikasi atau skor berubah sejak seleksi terakhir dijalankan")
	ErrRegistrationNotFound = errors.New("pendaftaran tidak ditemukan")
	ErrPathNotFound         = errors.New("jalur pendaftaran tidak ditemukan")
)

// pathTally is the accepted/rejected counts already persisted for a path,
// from this or a previous RunSelection pass.
type pathTally struct {
	accepted int
	rejected int
}

// Repository is the data layer for score calculation, ranking, running
// selection, and the public result check. It deliberately bypasses
// store.DB for registration reads the way registration.Repository does:
// a period's own school_id is always known and passed explicitly, and
// CheckResult has no tenant scope at all (it is a public endpoint).
type Repository interface {
	FindPeriodByID(ctx context.Context, id uint) (*models.Period, error)
	FindPathsByPeriod(ctx context.Context, periodID uint) ([]models.RegistrationPath, error)
	FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error)

	// CalculateScores scores every verified registration of path, one
	// transaction per path so a cancelled call leaves earlier paths
	// committed and the rest untouched.
	CalculateScores(ctx context.Context, periodID uint, path models.RegistrationPath) (int, error)
	// UpdateRankings re-ranks every verified registration of path by
	// (selection_score desc, created_at asc, id asc), one transaction per path.
	UpdateRankings(ctx context.Context, path models.RegistrationPath) (int, error)

	// RunSelection locks the period row for the duration of the call,
	// serializing concurrent RunSelection calls on the same period.
	RunSelection(ctx context.Context, periodID uint, force bool) (*RunSelectionResponse, error)

	// Announce sets the period's announcement_date (if unset) and returns
	// every accepted/rejected registration so the caller can notify each one.
	// Returns (nil, true, nil) if the period had
	// already been announced, so the caller skips re-notifying.
	Announce(ctx context.Context, periodID uint) ([]models.Registration, bool, error)

	FindRankingsByPath(ctx context.Context, pathID uint) ([]models.Registration, error)

	// FindByRegistrationNumberAndNISN is the sole entry point for the public
	// result check — no tenant scope applies.
	FindByRegistrationNumberAndNISN(ctx context.Context, registrationNumber, nisn string) (*models.Registration, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindPeriodByID(ctx context.Context, id uint) (*models.Period, error) {
	var p models.Period
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindPathsByPeriod(ctx context.Context, periodID uint) ([]models.RegistrationPath, error) {
	var paths []models.RegistrationPath
	err := r.db.WithContext(ctx).Where("period_id = ?", periodID).Order("id ASC").Find(&paths).Error
	return paths, err
}

func (r *repository) FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error) {
	var p models.RegistrationPath
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPathNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) CalculateScores(ctx context.Context, periodID uint, path models.RegistrationPath) (int, error) {
	scored := 0
	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var regs []models.Registration
		if err := tx.Preload("Documents").
			Where("period_id = ? AND path_id = ? AND status = ?", periodID, path.ID, models.StatusVerified).
			Find(&regs).Error; err != nil {
			return err
		}
		for i := range regs {
			score, err := scoring.Score(&regs[i], &path)
			if err != nil {
				return err
			}
			regs[i].SelectionScore = &score
			if err := tx.Save(&regs[i]).Error; err != nil {
				return err
			}
			scored++
		}
		return nil
	})
	return scored, err
}

func (r *repository) UpdateRankings(ctx context.Context, path models.RegistrationPath) (int, error) {
	ranked := 0
	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var regs []models.Registration
		if err := tx.
			Where("path_id = ? AND status = ?", path.ID, models.StatusVerified).
			Order("selection_score DESC, created_at ASC, id ASC").
			Find(&regs).Error; err != nil {
			return err
		}
		for i := range regs {
			rank := i + 1
			regs[i].Ranking = &rank
			if err := tx.Save(&regs[i]).Error; err != nil {
				return err
			}
			ranked++
		}
		return nil
	})
	return ranked, err
}

func (r *repository) RunSelection(ctx context.Context, periodID uint, force bool) (*RunSelectionResponse, error) {
	var response RunSelectionResponse
	response.PeriodID = periodID

	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var period models.Period
		if err := store.ForUpdate(tx).Where("id = ?", periodID).First(&period).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPeriodNotFound
			}
			return err
		}
		if period.Status != models.PeriodStatusActive {
			return ErrPeriodNotActive
		}

		var paths []models.RegistrationPath
		if err := tx.Where("period_id = ?", periodID).Order("id ASC").Find(&paths).Error; err != nil {
			return err
		}

		for _, path := range paths {
			tally, err := priorTally(tx, path.ID)
			if err != nil {
				return err
			}

			var pending []models.Registration
			if err := tx.
				Where("path_id = ? AND status = ? AND ranking IS NOT NULL", path.ID, models.StatusVerified).
				Order("ranking ASC").
				Find(&pending).Error; err != nil {
				return err
			}

			if len(pending) > 0 && period.SelectionRanAt != nil && !force {
				return ErrSelectionInputsChanged
			}

			remaining := path.Quota - tally.accepted
			if remaining < 0 {
				remaining = 0
			}

			for i := range pending {
				event := registration.EventReject
				reason := "quota_exceeded"
				if i < remaining {
					event = registration.EventAccept
					reason = ""
				}
				next, err := registration.Transition(pending[i].Status, event)
				if err != nil {
					return err
				}
				pending[i].Status = next
				pending[i].RejectionReason = reason
				if err := tx.Save(&pending[i]).Error; err != nil {
					return err
				}
				if event == registration.EventAccept {
					tally.accepted++
				} else {
					tally.rejected++
				}
			}

			quotaRemaining := path.Quota - tally.accepted
			if quotaRemaining < 0 {
				quotaRemaining = 0
			}
			response.Paths = append(response.Paths, PathOutcome{
				PathID:         path.ID,
				Quota:          path.Quota,
				Accepted:       tally.accepted,
				Rejected:       tally.rejected,
				RemainingQuota: quotaRemaining,
			})
			response.TotalAccepted += tally.accepted
			response.TotalRejected += tally.rejected
		}

		if period.SelectionRanAt == nil {
			now := time.Now()
			period.SelectionRanAt = &now
			if err := tx.Save(&period).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func priorTally(tx *gorm.DB, pathID uint) (pathTally, error) {
	var tally pathTally
	var accepted, rejected int64
	if err := tx.Model(&models.Registration{}).
		Where("path_id = ? AND status = ?", pathID, models.StatusAccepted).
		Count(&accepted).Error; err != nil {
		return tally, err
	}
	if err := tx.Model(&models.Registration{}).
		Where("path_id = ? AND status = ? AND rejection_reason = ?", pathID, models.StatusRejected, "quota_exceeded").
		Count(&rejected).Error; err != nil {
		return tally, err
	}
	tally.accepted = int(accepted)
	tally.rejected = int(rejected)
	return tally, nil
}

func (r *repository) Announce(ctx context.Context, periodID uint) ([]models.Registration, bool, error) {
	var regs []models.Registration
	already := false

	err := store.WithTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var period models.Period
		if err := store.ForUpdate(tx).Where("id = ?", periodID).First(&period).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPeriodNotFound
			}
			return err
		}
		if period.SelectionRanAt == nil {
			return ErrSelectionNotRun
		}
		if period.AnnouncementDate != nil {
			already = true
			return nil
		}

		now := time.Now()
		period.AnnouncementDate = &now
		period.Announced = true
		if err := tx.Save(&period).Error; err != nil {
			return err
		}

		return tx.
			Where("period_id = ? AND status IN ?", periodID, []models.RegistrationStatus{models.StatusAccepted, models.StatusRejected}).
			Find(&regs).Error
	})
	if err != nil {
		return nil, false, err
	}
	return regs, already, nil
}

func (r *repository) FindRankingsByPath(ctx context.Context, pathID uint) ([]models.Registration, error) {
	var regs []models.Registration
	err := r.db.WithContext(ctx).
		Where("path_id = ? AND ranking IS NOT NULL", pathID).
		Order("ranking ASC").
		Find(&regs).Error
	return regs, err
}

func (r *repository) FindByRegistrationNumberAndNISN(ctx context.Context, registrationNumber, nisn string) (*models.Registration, error) {
	var reg models.Registration
	err := store.DBCrossTenant(ctx, r.db).
		Preload("Path").Preload("Period").
		Where("registration_number = ?", registrationNumber).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}
