package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/ppdb/admissions-backend/internal/config"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/shared/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connected successfully")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hashPassword := func(password string) string {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return string(hash)
	}

	log.Println("Starting seed data...")

	// ============================================
	// 1. Super Admin
	// ============================================
	superAdmin := models.User{
		Email:         "superadmin@ppdb.go.id",
		PasswordHash:  hashPassword("admin123"),
		FullName:      "Super Admin PPDB",
		Role:          models.RoleSuperAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.FirstOrCreate(&superAdmin, models.User{Email: superAdmin.Email}).Error; err != nil {
		log.Fatalf("Failed to create super admin: %v", err)
	}
	log.Printf("✓ Super Admin created: %s (password: admin123)", superAdmin.Email)

	// ============================================
	// 2. Schools (tenants)
	// ============================================
	schools := []models.School{
		{Name: "SMA Negeri 1 Jakarta", NPSN: "20100001", Code: "smkn1-jkt", Address: "Jl. Merdeka No. 1, Jakarta Pusat", Phone: "021-1234567", Email: "smpn1jakarta@edu.id", Status: models.SchoolStatusActive},
		{Name: "SMA Negeri 2 Bandung", NPSN: "20100002", Code: "smkn2-bdg", Address: "Jl. Asia Afrika No. 10, Bandung", Phone: "022-7654321", Email: "smpn2bandung@edu.id", Status: models.SchoolStatusActive},
	}
	for i := range schools {
		if err := db.FirstOrCreate(&schools[i], models.School{NPSN: schools[i].NPSN}).Error; err != nil {
			log.Fatalf("Failed to create school: %v", err)
		}
		log.Printf("✓ School created: %s (ID: %d)", schools[i].Name, schools[i].ID)
	}
	school1 := schools[0]

	// ============================================
	// 3. School Admin
	// ============================================
	schoolAdmin := models.User{
		SchoolID:      &school1.ID,
		Email:         "admin@smpn1jakarta.edu.id",
		PasswordHash:  hashPassword("admin123"),
		FullName:      "Admin SMA Negeri 1 Jakarta",
		Role:          models.RoleSchoolAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.FirstOrCreate(&schoolAdmin, models.User{Email: schoolAdmin.Email}).Error; err != nil {
		log.Fatalf("Failed to create school admin: %v", err)
	}
	log.Printf("✓ School Admin created: %s (password: admin123)", schoolAdmin.Email)

	// ============================================
	// 4. Admission period
	// ============================================
	now := time.Now()
	period := models.Period{
		SchoolID:             school1.ID,
		AcademicYear:         "2026/2027",
		Level:                models.LevelSMA,
		RegistrationStart:    now.AddDate(0, 0, -14),
		RegistrationEnd:      now.AddDate(0, 0, 14),
		StartDate:            now.AddDate(0, 1, 0),
		EndDate:              now.AddDate(0, 7, 0),
		ReenrollmentDeadline: now.AddDate(0, 1, 14),
		Status:               models.PeriodStatusActive,
	}
	if err := db.FirstOrCreate(&period, models.Period{SchoolID: school1.ID, AcademicYear: period.AcademicYear, Level: period.Level}).Error; err != nil {
		log.Fatalf("Failed to create period: %v", err)
	}
	log.Printf("✓ Admission period created: %s %s (ID: %d)", period.AcademicYear, period.Level, period.ID)

	// ============================================
	// 5. Registration paths
	// ============================================
	paths := []models.RegistrationPath{
		{
			PeriodID:      period.ID,
			PathType:      models.PathTypeZonasi,
			Name:          "Jalur Zonasi",
			Quota:         120,
			Description:   "Penerimaan berdasarkan jarak domisili ke sekolah",
			ScoringConfig: `{"max_distance_km":6,"weight":1}`,
		},
		{
			PeriodID:      period.ID,
			PathType:      models.PathTypePrestasi,
			Name:          "Jalur Prestasi",
			Quota:         40,
			Description:   "Penerimaan berdasarkan nilai rapor dan prestasi akademik/non-akademik",
			ScoringConfig: `{"rapor_weight":0.7,"achievement_weight":0.3}`,
		},
		{
			PeriodID:      period.ID,
			PathType:      models.PathTypeAfirmasi,
			Name:          "Jalur Afirmasi",
			Quota:         20,
			Description:   "Penerimaan untuk keluarga penerima KIP/kondisi disabilitas",
			ScoringConfig: `{"criteria":["kip","disabled"]}`,
		},
		{
			PeriodID:      period.ID,
			PathType:      models.PathTypePerpindahanTugas,
			Name:          "Jalur Perpindahan Tugas Orang Tua",
			Quota:         10,
			Description:   "Penerimaan untuk anak dari orang tua yang pindah tugas",
			ScoringConfig: `{}`,
		},
	}
	for i := range paths {
		if err := db.FirstOrCreate(&paths[i], models.RegistrationPath{PeriodID: period.ID, Name: paths[i].Name}).Error; err != nil {
			log.Fatalf("Failed to create registration path: %v", err)
		}
	}
	log.Printf("✓ Created %d registration paths", len(paths))
	zonasiPath := paths[0]

	// ============================================
	// 6. Parent accounts with draft registrations
	// ============================================
	parents := []struct {
		email       string
		studentName string
		nisn        string
	}{
		{"parent.ahmad@gmail.com", "Ahmad Rizki", "0012345001"},
		{"parent.budi@gmail.com", "Budi Santoso", "0012345002"},
	}

	for _, p := range parents {
		parentUser := models.User{
			Email:         p.email,
			PasswordHash:  hashPassword("parent123"),
			FullName:      fmt.Sprintf("Orang Tua %s", p.studentName),
			Role:          models.RoleParent,
			IsActive:      true,
			EmailVerified: true,
		}
		if err := db.FirstOrCreate(&parentUser, models.User{Email: p.email}).Error; err != nil {
			log.Fatalf("Failed to create parent: %v", err)
		}
		log.Printf("✓ Parent created: %s (password: parent123)", parentUser.Email)

		reg := models.Registration{
			SchoolID:          school1.ID,
			UserID:            parentUser.ID,
			PeriodID:          period.ID,
			PathID:            zonasiPath.ID,
			StudentName:       p.studentName,
			StudentNISN:       p.nisn,
			StudentBirthDate:  now.AddDate(-16, 0, 0),
			StudentGender:     "L",
			ParentName:        parentUser.FullName,
			PathData:          `{"distance_km":2.5}`,
			Status:            models.StatusDraft,
		}
		if err := db.FirstOrCreate(&reg, models.Registration{UserID: parentUser.ID, PeriodID: period.ID}).Error; err != nil {
			log.Fatalf("Failed to create registration: %v", err)
		}
		log.Printf("✓ Draft registration created for %s", p.studentName)
	}

	fmt.Println("\n" + repeatStr("=", 60))
	fmt.Println("SEED DATA COMPLETED SUCCESSFULLY!")
	fmt.Println(repeatStr("=", 60))
	fmt.Println("\nLogin Credentials:")
	fmt.Println(repeatStr("-", 60))
	fmt.Printf("%-20s %-30s %s\n", "Role", "Email", "Password")
	fmt.Println(repeatStr("-", 60))
	fmt.Printf("%-20s %-30s %s\n", "Super Admin", superAdmin.Email, "admin123")
	fmt.Printf("%-20s %-30s %s\n", "School Admin", schoolAdmin.Email, "admin123")
	fmt.Printf("%-20s %-30s %s\n", "Parent", "parent.ahmad@gmail.com", "parent123")
	fmt.Printf("%-20s %-30s %s\n", "Parent", "parent.budi@gmail.com", "parent123")
	fmt.Println(repeatStr("-", 60))
	fmt.Println(repeatStr("=", 60))
}

// repeatStr repeats s n times (avoids importing strings just for Repeat).
func repeatStr(s string, n int) string {
	result := ""
	for i := 0; i < n; i++ {
		result += s
	}
	return result
}
