package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/scoring"
)

func zonasiPath(t *testing.T) *models.RegistrationPath {
	t.Helper()
	return &models.RegistrationPath{
		PathType:      models.PathTypeZonasi,
		ScoringConfig: `{"max_distance_km": 10, "weight": 1}`,
	}
}

func TestScoreZonasi(t *testing.T) {
	path := zonasiPath(t)
	reg := &models.Registration{PathData: `{"distance_km": 2}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, score, scoring.Tolerance)
}

func TestScoreZonasiMissingDistance(t *testing.T) {
	path := zonasiPath(t)
	reg := &models.Registration{PathData: `{}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestScoreZonasiBeyondMax(t *testing.T) {
	path := zonasiPath(t)
	reg := &models.Registration{PathData: `{"distance_km": 50}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestScorePrestasi(t *testing.T) {
	path := &models.RegistrationPath{
		PathType:      models.PathTypePrestasi,
		ScoringConfig: `{"rapor_weight": 0.7, "achievement_weight": 0.3}`,
	}
	reg := &models.Registration{PathData: `{"rapor_average": 90, "achievement_points": 50}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.InDelta(t, 78.0, score, scoring.Tolerance)
}

func TestScorePrestasiClampsAchievementPoints(t *testing.T) {
	path := &models.RegistrationPath{
		PathType:      models.PathTypePrestasi,
		ScoringConfig: `{"rapor_weight": 0.5, "achievement_weight": 0.5}`,
	}
	reg := &models.Registration{PathData: `{"rapor_average": 80, "achievement_points": 500}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, score, scoring.Tolerance)
}

func TestScoreAfirmasiBaseOnly(t *testing.T) {
	path := &models.RegistrationPath{PathType: models.PathTypeAfirmasi, ScoringConfig: `{}`}
	reg := &models.Registration{PathData: `{}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, score)
}

func TestScoreAfirmasiBonuses(t *testing.T) {
	path := &models.RegistrationPath{PathType: models.PathTypeAfirmasi, ScoringConfig: `{}`}
	reg := &models.Registration{PathData: `{"kip": true, "disabled": true}`}

	score, err := scoring.Score(reg, path)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestScorePerpindahanTugas(t *testing.T) {
	path := &models.RegistrationPath{PathType: models.PathTypePerpindahanTugas, ScoringConfig: `{}`}

	approved := &models.Registration{Documents: []models.Document{
		{DocumentType: models.DocumentSuratKeteranganPindah, VerificationStatus: models.DocVerificationApproved},
	}}
	score, err := scoring.Score(approved, path)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)

	pending := &models.Registration{Documents: []models.Document{
		{DocumentType: models.DocumentSuratKeteranganPindah, VerificationStatus: models.DocVerificationPending},
	}}
	score, err = scoring.Score(pending, path)
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)

	missing := &models.Registration{}
	score, err = scoring.Score(missing, path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestValidateConfigRejectsUnbalancedPrestasiWeights(t *testing.T) {
	err := scoring.ValidateConfig(models.PathTypePrestasi, `{"rapor_weight": 0.9, "achievement_weight": 0.3}`)
	assert.Error(t, err)
}

func TestValidateConfigAcceptsValidZonasi(t *testing.T) {
	err := scoring.ValidateConfig(models.PathTypeZonasi, `{"max_distance_km": 5, "weight": 1}`)
	assert.NoError(t, err)
}
