package selection

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/notification"
)

// Service implements the selection pipeline of spec §4.8: score, rank, run,
// announce, and the public result check. Every mutating operation requires
// CanRunSelection at the handler layer; CheckResult is the one public,
// anonymous operation in the whole system.
type Service interface {
	CalculateScores(ctx context.Context, periodID uint) (*CalculateScoresResponse, error)
	UpdateRankings(ctx context.Context, periodID uint) (*UpdateRankingsResponse, error)
	RunSelection(ctx context.Context, periodID uint, force bool) (*RunSelectionResponse, error)
	Announce(ctx context.Context, periodID uint) (*AnnounceResponse, error)
	Rankings(ctx context.Context, pathID uint) ([]RankingEntry, error)
	// RankingsByPeriod returns every path's ranking table for a period, one
	// entry per path, for the GET /selection/periods/{id}/rankings route.
	RankingsByPeriod(ctx context.Context, periodID uint) ([]PathRankings, error)
	Stats(ctx context.Context, periodID uint) (*StatsResponse, error)
	// Summary re-derives the outcome of the last RunSelection pass from
	// persisted state, without mutating anything. Fails with Conflict if
	// selection has never been run for this period.
	Summary(ctx context.Context, periodID uint) (*RunSelectionResponse, error)
	CheckResult(ctx context.Context, registrationNumber, nisn string) (*CheckResultResponse, error)

	// PeriodSchoolID resolves the owning school of a period, so handlers can
	// run CanRunSelection before dispatching a mutating call.
	PeriodSchoolID(ctx context.Context, periodID uint) (uint, error)
}

type service struct {
	repo     Repository
	notifier notification.Service
}

func NewService(repo Repository, notifier notification.Service) Service {
	return &service{repo: repo, notifier: notifier}
}

func (s *service) PeriodSchoolID(ctx context.Context, periodID uint) (uint, error) {
	period, err := s.repo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return 0, mapErr(err)
	}
	return period.SchoolID, nil
}

func (s *service) CalculateScores(ctx context.Context, periodID uint) (*CalculateScoresResponse, error) {
	if _, err := s.repo.FindPeriodByID(ctx, periodID); err != nil {
		return nil, mapErr(err)
	}
	paths, err := s.repo.FindPathsByPeriod(ctx, periodID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	scored := 0
	for _, path := range paths {
		n, err := s.repo.CalculateScores(ctx, periodID, path)
		if err != nil {
			return nil, apperr.Internal("gagal menghitung skor seleksi").Wrap(err)
		}
		scored += n
	}
	return &CalculateScoresResponse{PeriodID: periodID, Scored: scored}, nil
}

func (s *service) UpdateRankings(ctx context.Context, periodID uint) (*UpdateRankingsResponse, error) {
	if _, err := s.repo.FindPeriodByID(ctx, periodID); err != nil {
		return nil, mapErr(err)
	}
	paths, err := s.repo.FindPathsByPeriod(ctx, periodID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	for _, path := range paths {
		if _, err := s.repo.UpdateRankings(ctx, path); err != nil {
			return nil, apperr.Internal("gagal memperbarui peringkat").Wrap(err)
		}
	}
	return &UpdateRankingsResponse{PeriodID: periodID, Paths: len(paths)}, nil
}

func (s *service) RunSelection(ctx context.Context, periodID uint, force bool) (*RunSelectionResponse, error) {
	response, err := s.repo.RunSelection(ctx, periodID, force)
	if err != nil {
		return nil, mapErr(err)
	}
	return response, nil
}

func (s *service) Announce(ctx context.Context, periodID uint) (*AnnounceResponse, error) {
	regs, already, err := s.repo.Announce(ctx, periodID)
	if err != nil {
		return nil, mapErr(err)
	}
	if already {
		period, err := s.repo.FindPeriodByID(ctx, periodID)
		if err != nil {
			return nil, mapErr(err)
		}
		return &AnnounceResponse{PeriodID: periodID, AnnouncementDate: period.AnnouncementDate, Notified: 0}, nil
	}

	notified := 0
	for i := range regs {
		reg := &regs[i]
		notifType := models.NotificationRegistrationAccept
		title := "Pendaftaran diterima"
		message := fmt.Sprintf("Selamat, pendaftaran %s dinyatakan diterima.", studentOrNumber(reg))
		if reg.Status == models.StatusRejected {
			notifType = models.NotificationRegistrationReject
			title = "Hasil seleksi pendaftaran"
			message = fmt.Sprintf("Pendaftaran %s tidak diterima pada jalur ini.", studentOrNumber(reg))
		}
		if s.notifier != nil {
			_ = s.notifier.SendNotification(ctx, reg.UserID, notifType, title, message, map[string]interface{}{
				"registration_id": reg.ID,
				"period_id":       periodID,
			})
		}
		notified++
	}

	period, err := s.repo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &AnnounceResponse{PeriodID: periodID, AnnouncementDate: period.AnnouncementDate, Notified: notified}, nil
}

func studentOrNumber(reg *models.Registration) string {
	if reg.RegistrationNumber != nil {
		return *reg.RegistrationNumber
	}
	return reg.StudentName
}

func (s *service) Rankings(ctx context.Context, pathID uint) ([]RankingEntry, error) {
	regs, err := s.repo.FindRankingsByPath(ctx, pathID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}
	entries := make([]RankingEntry, len(regs))
	for i := range regs {
		entries[i] = RankingEntry{
			RegistrationID:     regs[i].ID,
			RegistrationNumber: regs[i].RegistrationNumber,
			StudentName:        regs[i].StudentName,
			SelectionScore:     regs[i].SelectionScore,
			Ranking:            regs[i].Ranking,
			Status:             string(regs[i].Status),
		}
	}
	return entries, nil
}

func (s *service) RankingsByPeriod(ctx context.Context, periodID uint) ([]PathRankings, error) {
	if _, err := s.repo.FindPeriodByID(ctx, periodID); err != nil {
		return nil, mapErr(err)
	}
	paths, err := s.repo.FindPathsByPeriod(ctx, periodID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	result := make([]PathRankings, 0, len(paths))
	for _, path := range paths {
		entries, err := s.Rankings(ctx, path.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, PathRankings{PathID: path.ID, PathName: path.Name, Entries: entries})
	}
	return result, nil
}

func (s *service) Summary(ctx context.Context, periodID uint) (*RunSelectionResponse, error) {
	period, err := s.repo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, mapErr(err)
	}
	if period.SelectionRanAt == nil {
		return nil, mapErr(ErrSelectionNotRun)
	}

	stats, err := s.Stats(ctx, periodID)
	if err != nil {
		return nil, err
	}

	response := &RunSelectionResponse{PeriodID: periodID, Paths: stats.Paths}
	for _, outcome := range stats.Paths {
		response.TotalAccepted += outcome.Accepted
		response.TotalRejected += outcome.Rejected
	}
	return response, nil
}

func (s *service) Stats(ctx context.Context, periodID uint) (*StatsResponse, error) {
	paths, err := s.repo.FindPathsByPeriod(ctx, periodID)
	if err != nil {
		return nil, apperr.Internal("kesalahan basis data").Wrap(err)
	}

	stats := &StatsResponse{PeriodID: periodID}
	for _, path := range paths {
		regs, err := s.repo.FindRankingsByPath(ctx, path.ID)
		if err != nil {
			return nil, apperr.Internal("kesalahan basis data").Wrap(err)
		}
		outcome := PathOutcome{PathID: path.ID, Quota: path.Quota}
		for _, reg := range regs {
			switch reg.Status {
			case models.StatusAccepted:
				outcome.Accepted++
			case models.StatusRejected:
				if reg.RejectionReason == "quota_exceeded" {
					outcome.Rejected++
				}
			}
		}
		outcome.RemainingQuota = path.Quota - outcome.Accepted
		if outcome.RemainingQuota < 0 {
			outcome.RemainingQuota = 0
		}
		stats.Paths = append(stats.Paths, outcome)
	}
	return stats, nil
}

func (s *service) CheckResult(ctx context.Context, registrationNumber, nisn string) (*CheckResultResponse, error) {
	if registrationNumber == "" || nisn == "" {
		return nil, apperr.NotFound("hasil tidak ditemukan")
	}

	reg, err := s.repo.FindByRegistrationNumberAndNISN(ctx, registrationNumber, nisn)
	if err != nil {
		return nil, apperr.NotFound("hasil tidak ditemukan")
	}

	if subtle.ConstantTimeCompare([]byte(reg.StudentNISN), []byte(nisn)) != 1 {
		return nil, apperr.NotFound("hasil tidak ditemukan")
	}

	if reg.Period == nil || reg.Period.AnnouncementDate == nil {
		return nil, apperr.NotFound("hasil tidak ditemukan")
	}

	pathName := ""
	if reg.Path != nil {
		pathName = reg.Path.Name
	}

	number := ""
	if reg.RegistrationNumber != nil {
		number = *reg.RegistrationNumber
	}

	return &CheckResultResponse{
		RegistrationNumber:   number,
		StudentName:          reg.StudentName,
		NISN:                 reg.StudentNISN,
		PathName:             pathName,
		SelectionScore:       reg.SelectionScore,
		Ranking:              reg.Ranking,
		Status:               string(reg.Status),
		RejectionReason:      reg.RejectionReason,
		AnnouncementDate:     reg.Period.AnnouncementDate,
		ReenrollmentDeadline: reg.Period.ReenrollmentDeadline,
	}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrPeriodNotFound):
		return apperr.NotFound("periode tidak ditemukan")
	case errors.Is(err, ErrPeriodNotActive):
		return apperr.Conflict("periode tidak berstatus aktif").WithReason("period_not_active")
	case errors.Is(err, ErrSelectionNotRun):
		return apperr.Conflict("seleksi belum pernah dijalankan untuk periode ini").WithReason("selection_not_run")
	case errors.Is(err, ErrSelectionInputsChanged):
		return apperr.Conflict("data berubah sejak seleksi terakhir dijalankan, gunakan force untuk menjalankan ulang").WithReason("selection_inputs_changed")
	case errors.Is(err, ErrRegistrationNotFound):
		return apperr.NotFound("pendaftaran tidak ditemukan")
	case errors.Is(err, ErrPathNotFound):
		return apperr.NotFound("jalur pendaftaran tidak ditemukan")
	default:
		return apperr.Internal("kesalahan basis data").Wrap(err)
	}
}
