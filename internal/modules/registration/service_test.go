package registration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/modules/registration"
)

type fakeRepo struct {
	regs      map[uint]*models.Registration
	periods   map[uint]*models.Period
	paths     map[uint]*models.RegistrationPath
	docs      map[uint]*models.Document
	nextRegID uint
	nextDocID uint
	submitSeq map[uint]int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		regs:      map[uint]*models.Registration{},
		periods:   map[uint]*models.Period{},
		paths:     map[uint]*models.RegistrationPath{},
		docs:      map[uint]*models.Document{},
		submitSeq: map[uint]int{},
	}
}

func (f *fakeRepo) Create(ctx context.Context, reg *models.Registration) error {
	f.nextRegID++
	reg.ID = f.nextRegID
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, registration.ErrRegistrationNotFound
	}
	cp := *reg
	for _, d := range f.docs {
		if d.RegistrationID == id {
			cp.Documents = append(cp.Documents, *d)
		}
	}
	return &cp, nil
}

func (f *fakeRepo) FindByUserAndPeriodNonTerminal(ctx context.Context, userID, periodID uint) (*models.Registration, error) {
	for _, reg := range f.regs {
		if reg.UserID == userID && reg.PeriodID == periodID && reg.IsNonTerminal() {
			return reg, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindAllByUser(ctx context.Context, userID uint, filter registration.RegistrationFilter) ([]models.Registration, int64, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.UserID == userID {
			out = append(out, *reg)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindAllBySchool(ctx context.Context, schoolID uint, filter registration.RegistrationFilter) ([]models.Registration, int64, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.SchoolID == schoolID {
			out = append(out, *reg)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) FindByPeriodAndStatus(ctx context.Context, periodID uint, status models.RegistrationStatus) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range f.regs {
		if reg.PeriodID == periodID && reg.Status == status {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, reg *models.Registration) error {
	if _, ok := f.regs[reg.ID]; !ok {
		return registration.ErrRegistrationNotFound
	}
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeRepo) Submit(ctx context.Context, id uint) (*models.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return nil, registration.ErrRegistrationNotFound
	}
	if reg.Status != models.StatusDraft {
		return nil, registration.ErrNotDraft
	}
	period, ok := f.periods[reg.PeriodID]
	if !ok {
		return nil, registration.ErrPeriodNotFound
	}
	f.submitSeq[reg.PeriodID]++
	number := fmtRegNumber(period.SchoolID, period.ID, f.submitSeq[reg.PeriodID])
	reg.RegistrationNumber = &number
	reg.Status = models.StatusSubmitted
	now := time.Now()
	reg.SubmittedAt = &now
	return reg, nil
}

func fmtRegNumber(schoolID, periodID uint, seq int) string {
	return "REG-TEST"
}

func (f *fakeRepo) FindPeriodByID(ctx context.Context, id uint) (*models.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return nil, registration.ErrPeriodNotFound
	}
	return p, nil
}

func (f *fakeRepo) FindPathByID(ctx context.Context, id uint) (*models.RegistrationPath, error) {
	p, ok := f.paths[id]
	if !ok {
		return nil, registration.ErrPathNotFound
	}
	return p, nil
}

func (f *fakeRepo) CreateDocument(ctx context.Context, doc *models.Document) error {
	f.nextDocID++
	doc.ID = f.nextDocID
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeRepo) FindDocumentByID(ctx context.Context, id uint) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, registration.ErrDocumentNotFound
	}
	return d, nil
}

func (f *fakeRepo) FindDocumentsByRegistration(ctx context.Context, registrationID uint) ([]models.Document, error) {
	var out []models.Document
	for _, d := range f.docs {
		if d.RegistrationID == registrationID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindDocumentByRegistrationAndType(ctx context.Context, registrationID uint, docType models.DocumentType) (*models.Document, error) {
	for _, d := range f.docs {
		if d.RegistrationID == registrationID && d.DocumentType == docType {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) SoftDeleteDocument(ctx context.Context, id uint) error {
	if _, ok := f.docs[id]; !ok {
		return registration.ErrDocumentNotFound
	}
	delete(f.docs, id)
	return nil
}

type fakeFiles struct {
	stored  map[string][]byte
	nextSeq int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{stored: map[string][]byte{}}
}

func (f *fakeFiles) Store(ctx context.Context, content []byte, mimeType string) (string, error) {
	f.nextSeq++
	url := "fake://doc/" + string(rune('a'+f.nextSeq))
	f.stored[url] = content
	return url, nil
}

func (f *fakeFiles) Delete(ctx context.Context, url string) error {
	delete(f.stored, url)
	return nil
}

func activePeriod(id, schoolID uint) *models.Period {
	now := time.Now()
	return &models.Period{
		ID:                   id,
		SchoolID:             schoolID,
		AcademicYear:         "2026/2027",
		Level:                models.LevelSD,
		Status:               models.PeriodStatusActive,
		RegistrationStart:    now.Add(-24 * time.Hour),
		RegistrationEnd:      now.Add(24 * time.Hour),
		StartDate:            now.Add(48 * time.Hour),
		EndDate:              now.Add(72 * time.Hour),
		ReenrollmentDeadline: now.Add(96 * time.Hour),
	}
}

func zonasiPath(id, periodID uint) *models.RegistrationPath {
	return &models.RegistrationPath{
		ID:            id,
		PeriodID:      periodID,
		PathType:      models.PathTypeZonasi,
		Name:          "Zonasi",
		Quota:         10,
		ScoringConfig: `{"max_distance_km":5,"weight":1}`,
	}
}

func validCreateReq(periodID, pathID uint) registration.CreateRegistrationRequest {
	return registration.CreateRegistrationRequest{
		PeriodID:    periodID,
		PathID:      pathID,
		StudentName: "Budi Santoso",
		StudentNISN: "1234567890",
		ParentName:  "Siti Santoso",
	}
}

func TestCreateRegistrationSucceeds(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	resp, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))

	require.NoError(t, err)
	assert.Equal(t, string(models.StatusDraft), resp.Status)
	assert.Equal(t, uint(10), resp.SchoolID)
	assert.Equal(t, uint(5), resp.UserID)
}

func TestCreateRegistrationRejectsClosedPeriod(t *testing.T) {
	repo := newFakeRepo()
	p := activePeriod(1, 10)
	p.Status = models.PeriodStatusClosed
	repo.periods[1] = p
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	_, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)
	assert.Equal(t, "period_closed", appErr.Reason)
}

func TestCreateRegistrationRejectsDuplicateActive(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	_, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.NoError(t, err)

	_, err = svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate_active_registration", appErr.Reason)
}

func TestCreateRegistrationRejectsInvalidNISN(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	req := validCreateReq(1, 1)
	req.StudentNISN = "123"
	_, err := svc.CreateRegistration(context.Background(), 5, req)

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUpdateRegistrationRejectsWhenNotDraft(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	created, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.NoError(t, err)
	repo.regs[created.ID].Status = models.StatusSubmitted

	newName := "Budi Baru"
	_, err = svc.UpdateRegistration(context.Background(), created.ID, registration.UpdateRegistrationRequest{StudentName: &newName})

	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "not_draft", appErr.Reason)
}

func TestSubmitRejectsWithoutRequiredDocuments(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	created, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), created.ID)
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "missing_document", appErr.Reason)
}

func TestSubmitSucceedsWithRequiredDocuments(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	created, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.NoError(t, err)

	jpeg := []byte{0xFF, 0xD8, 0xFF}
	_, err = svc.AttachDocument(context.Background(), created.ID, string(models.DocumentKartuKeluarga), jpeg, "kk.jpg", "image/jpeg")
	require.NoError(t, err)
	_, err = svc.AttachDocument(context.Background(), created.ID, string(models.DocumentAktaKelahiran), jpeg, "akta.jpg", "image/jpeg")
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, submitted.RegistrationNumber)
	assert.Equal(t, "submitted", submitted.Status)
}

func TestAttachDocumentReplacesPriorOfSameType(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	files := newFakeFiles()
	svc := registration.NewService(repo, files)

	created, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.NoError(t, err)

	jpeg := []byte{0xFF, 0xD8, 0xFF}
	first, err := svc.AttachDocument(context.Background(), created.ID, string(models.DocumentKartuKeluarga), jpeg, "kk1.jpg", "image/jpeg")
	require.NoError(t, err)
	second, err := svc.AttachDocument(context.Background(), created.ID, string(models.DocumentKartuKeluarga), jpeg, "kk2.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	docs, err := repo.FindDocumentsByRegistration(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, second.ID, docs[0].ID)
}

func TestAttachDocumentRejectsOversizedFile(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.paths[1] = zonasiPath(1, 1)
	svc := registration.NewService(repo, newFakeFiles())

	created, err := svc.CreateRegistration(context.Background(), 5, validCreateReq(1, 1))
	require.NoError(t, err)

	oversized := make([]byte, models.MaxDocumentSizeBytes+1)
	_, err = svc.AttachDocument(context.Background(), created.ID, string(models.DocumentKartuKeluarga), oversized, "big.jpg", "image/jpeg")

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestExpireAcceptedTransitionsPastDeadline(t *testing.T) {
	repo := newFakeRepo()
	p := activePeriod(1, 10)
	p.ReenrollmentDeadline = time.Now().Add(-time.Hour)
	repo.periods[1] = p
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, UserID: 5, PeriodID: 1, Status: models.StatusAccepted}
	svc := registration.NewService(repo, newFakeFiles())

	count, err := svc.ExpireAccepted(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, models.StatusExpired, repo.regs[1].Status)
}

func TestExpireAcceptedNoopBeforeDeadline(t *testing.T) {
	repo := newFakeRepo()
	repo.periods[1] = activePeriod(1, 10)
	repo.regs[1] = &models.Registration{ID: 1, SchoolID: 10, UserID: 5, PeriodID: 1, Status: models.StatusAccepted}
	svc := registration.NewService(repo, newFakeFiles())

	count, err := svc.ExpireAccepted(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, models.StatusAccepted, repo.regs[1].Status)
}
