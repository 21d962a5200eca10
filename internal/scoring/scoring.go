// Package scoring computes a registration's selection score from its
// path_data and the owning path's scoring_config. It performs no I/O: every
// input is a value already resolved by the caller, and every output is
// deterministic given those inputs.
package scoring

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Tolerance is the absolute tolerance used when comparing two scores for
// equality (tie detection), per spec §4.7.
const Tolerance = 1e-6

// ZonasiConfig is the scoring_config shape for a zonasi path.
type ZonasiConfig struct {
	MaxDistanceKM float64 `json:"max_distance_km"`
	Weight        float64 `json:"weight"`
}

// PrestasiConfig is the scoring_config shape for a prestasi path.
// RaporWeight + AchievementWeight must sum to 1.
type PrestasiConfig struct {
	RaporWeight       float64 `json:"rapor_weight"`
	AchievementWeight float64 `json:"achievement_weight"`
}

// AfirmasiConfig is the scoring_config shape for an afirmasi path. Criteria
// names which bonuses are active; an empty Criteria enables both, matching
// the spec's unconditional kip/disabled bonuses.
type AfirmasiConfig struct {
	Criteria []string `json:"criteria"`
}

// PerpindahanTugasConfig carries no tunable parameters — the formula is
// entirely document-completeness driven.
type PerpindahanTugasConfig struct{}

// ZonasiData is the path_data shape a zonasi registration must carry.
type ZonasiData struct {
	DistanceKM *float64 `json:"distance_km"`
}

// PrestasiData is the path_data shape a prestasi registration must carry.
type PrestasiData struct {
	RaporAverage      float64 `json:"rapor_average"`
	AchievementPoints float64 `json:"achievement_points"`
}

// AfirmasiData is the path_data shape an afirmasi registration must carry.
type AfirmasiData struct {
	KIP      bool `json:"kip"`
	Disabled bool `json:"disabled"`
}

// ValidateConfig checks that raw scoring_config unmarshals into the shape
// path_type requires, per the Period/RegistrationPath invariant that
// "scoring_config shape matches path_type".
func ValidateConfig(pathType models.PathType, raw string) error {
	switch pathType {
	case models.PathTypeZonasi:
		var cfg ZonasiConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return errors.New("scoring_config tidak valid untuk jalur zonasi")
		}
		if cfg.MaxDistanceKM <= 0 {
			return errors.New("max_distance_km harus lebih besar dari 0")
		}
		if cfg.Weight <= 0 {
			return errors.New("weight harus lebih besar dari 0")
		}
		return nil
	case models.PathTypePrestasi:
		var cfg PrestasiConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return errors.New("scoring_config tidak valid untuk jalur prestasi")
		}
		if math.Abs(cfg.RaporWeight+cfg.AchievementWeight-1) > Tolerance {
			return errors.New("rapor_weight dan achievement_weight harus berjumlah 1")
		}
		return nil
	case models.PathTypeAfirmasi:
		var cfg AfirmasiConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return errors.New("scoring_config tidak valid untuk jalur afirmasi")
		}
		return nil
	case models.PathTypePerpindahanTugas:
		var cfg PerpindahanTugasConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return errors.New("scoring_config tidak valid untuk jalur perpindahan tugas")
		}
		return nil
	default:
		return errors.New("jenis jalur tidak valid")
	}
}

// ValidatePathData checks that raw path_data unmarshals into the shape
// path_type's scoring formula expects, per spec §4.5 Update ("path_data must
// remain structurally valid for the target path type"). An empty raw is
// always accepted — path_data is optional at draft time and only required
// once a value is actually supplied.
func ValidatePathData(pathType models.PathType, raw string) error {
	if raw == "" {
		return nil
	}
	switch pathType {
	case models.PathTypeZonasi:
		var data ZonasiData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return errors.New("path_data tidak valid untuk jalur zonasi")
		}
		if data.DistanceKM != nil && *data.DistanceKM < 0 {
			return errors.New("distance_km tidak boleh negatif")
		}
		return nil
	case models.PathTypePrestasi:
		var data PrestasiData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return errors.New("path_data tidak valid untuk jalur prestasi")
		}
		if data.RaporAverage < 0 || data.RaporAverage > 100 {
			return errors.New("rapor_average harus di antara 0 dan 100")
		}
		if data.AchievementPoints < 0 {
			return errors.New("achievement_points tidak boleh negatif")
		}
		return nil
	case models.PathTypeAfirmasi:
		var data AfirmasiData
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return errors.New("path_data tidak valid untuk jalur afirmasi")
		}
		return nil
	case models.PathTypePerpindahanTugas:
		return nil
	default:
		return errors.New("jenis jalur tidak valid")
	}
}

// Score computes the selection score for a registration against its path.
// The registration's Documents relation must already be preloaded for
// perpindahan_tugas paths. Returns an error only if scoring_config or
// path_data cannot be parsed, or the path type is unknown — callers treat
// that as an Internal error,
// since it would mean invalid data reached a verified registration.
func Score(reg *models.Registration, path *models.RegistrationPath) (float64, error) {
	switch path.PathType {
	case models.PathTypeZonasi:
		return scoreZonasi(reg, path)
	case models.PathTypePrestasi:
		return scorePrestasi(reg, path)
	case models.PathTypeAfirmasi:
		return scoreAfirmasi(reg, path)
	case models.PathTypePerpindahanTugas:
		return scorePerpindahanTugas(reg), nil
	default:
		return 0, errors.New("jenis jalur tidak valid")
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return round4(v)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func scoreZonasi(reg *models.Registration, path *models.RegistrationPath) (float64, error) {
	var cfg ZonasiConfig
	if err := json.Unmarshal([]byte(path.ScoringConfig), &cfg); err != nil {
		return 0, err
	}
	var data ZonasiData
	if reg.PathData != "" {
		if err := json.Unmarshal([]byte(reg.PathData), &data); err != nil {
			return 0, err
		}
	}
	if data.DistanceKM == nil || cfg.MaxDistanceKM <= 0 {
		return 0, nil
	}
	raw := math.Max(0, 1-*data.DistanceKM/cfg.MaxDistanceKM) * 100 * cfg.Weight
	return clamp(raw), nil
}

func scorePrestasi(reg *models.Registration, path *models.RegistrationPath) (float64, error) {
	var cfg PrestasiConfig
	if err := json.Unmarshal([]byte(path.ScoringConfig), &cfg); err != nil {
		return 0, err
	}
	var data PrestasiData
	if reg.PathData != "" {
		if err := json.Unmarshal([]byte(reg.PathData), &data); err != nil {
			return 0, err
		}
	}
	raw := cfg.RaporWeight*data.RaporAverage + cfg.AchievementWeight*math.Min(100, data.AchievementPoints)
	return clamp(raw), nil
}

func scoreAfirmasi(reg *models.Registration, path *models.RegistrationPath) (float64, error) {
	var cfg AfirmasiConfig
	if err := json.Unmarshal([]byte(path.ScoringConfig), &cfg); err != nil {
		return 0, err
	}
	var data AfirmasiData
	if reg.PathData != "" {
		if err := json.Unmarshal([]byte(reg.PathData), &data); err != nil {
			return 0, err
		}
	}

	enabled := func(name string) bool {
		if len(cfg.Criteria) == 0 {
			return true
		}
		for _, c := range cfg.Criteria {
			if c == name {
				return true
			}
		}
		return false
	}

	raw := 60.0
	if data.KIP && enabled("kip") {
		raw += 30
	}
	if data.Disabled && enabled("disabled") {
		raw += 10
	}
	return clamp(raw), nil
}

func scorePerpindahanTugas(reg *models.Registration) float64 {
	for _, doc := range reg.Documents {
		if doc.DocumentType != models.DocumentSuratKeteranganPindah {
			continue
		}
		switch doc.VerificationStatus {
		case models.DocVerificationApproved:
			return 100
		case models.DocVerificationPending:
			return 50
		}
	}
	return 0
}

// Equal reports whether two scores are equal within Tolerance.
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}
