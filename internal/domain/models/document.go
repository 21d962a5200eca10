package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// DocumentType is the closed enumeration of uploadable document kinds.
// Requirements: §4.5 — required document sets per path type are expressed
// over exactly this union; no additional types are recognized.
type DocumentType string

const (
	DocumentKartuKeluarga           DocumentType = "kartu_keluarga"
	DocumentAktaKelahiran           DocumentType = "akta_kelahiran"
	DocumentRapor                   DocumentType = "rapor"
	DocumentSertifikatPrestasi      DocumentType = "sertifikat_prestasi"
	DocumentSuratKeteranganAfirmasi DocumentType = "surat_keterangan_afirmasi"
	DocumentSuratKeteranganPindah   DocumentType = "surat_keterangan_pindah"
)

// IsValid checks if the document type is a known value.
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentKartuKeluarga, DocumentAktaKelahiran, DocumentRapor,
		DocumentSertifikatPrestasi, DocumentSuratKeteranganAfirmasi, DocumentSuratKeteranganPindah:
		return true
	}
	return false
}

// AllowedMimeTypes is the closed set of mime types accepted for upload.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// MaxDocumentSizeBytes is the upload size ceiling (2 MiB).
const MaxDocumentSizeBytes = 2 * 1024 * 1024

// DocumentVerificationStatus is the closed set of per-document review outcomes.
type DocumentVerificationStatus string

const (
	DocVerificationPending  DocumentVerificationStatus = "pending"
	DocVerificationApproved DocumentVerificationStatus = "approved"
	DocVerificationRejected DocumentVerificationStatus = "rejected"
)

// IsValid checks if the document verification status is a known value.
func (s DocumentVerificationStatus) IsValid() bool {
	switch s {
	case DocVerificationPending, DocVerificationApproved, DocVerificationRejected:
		return true
	}
	return false
}

// Document represents one uploaded file attached to a registration. The core
// stores only the URL and metadata; byte storage is an external collaborator.
type Document struct {
	ID                 uint                       `gorm:"primaryKey" json:"id"`
	RegistrationID     uint                       `gorm:"index;not null" json:"registration_id"`
	DocumentType       DocumentType               `gorm:"type:varchar(50);not null" json:"document_type"`
	FileURL            string                     `gorm:"type:text;not null" json:"file_url"`
	FileName           string                     `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize           int64                      `gorm:"not null" json:"file_size"`
	MimeType           string                     `gorm:"type:varchar(100);not null" json:"mime_type"`
	VerificationStatus DocumentVerificationStatus `gorm:"type:varchar(20);not null;default:pending" json:"verification_status"`
	RejectionReason    string                     `gorm:"type:text" json:"rejection_reason"`
	VerifiedBy         *uint                      `json:"verified_by"`
	VerifiedAt         *time.Time                 `json:"verified_at"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
	DeletedAt          gorm.DeletedAt             `gorm:"index" json:"-"`

	// Relations
	Registration *Registration `gorm:"foreignKey:RegistrationID" json:"-"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}

// Validate validates the document's own field shape.
// Requirements: §4.5 AttachDocument — size <= 2 MiB, mime in the allowed set.
func (d *Document) Validate() error {
	if !d.DocumentType.IsValid() {
		return errors.New("jenis dokumen tidak valid")
	}
	if d.FileURL == "" {
		return errors.New("url berkas wajib diisi")
	}
	if d.FileSize <= 0 || d.FileSize > MaxDocumentSizeBytes {
		return errors.New("ukuran berkas melebihi batas 2 MiB")
	}
	if !AllowedMimeTypes[d.MimeType] {
		return errors.New("tipe berkas tidak didukung")
	}
	return nil
}

// RequiredDocumentTypes returns the required document set for a path type.
// Requirements: §4.5 — required document sets per path type.
func RequiredDocumentTypes(pathType PathType) []DocumentType {
	switch pathType {
	case PathTypeZonasi:
		return []DocumentType{DocumentKartuKeluarga, DocumentAktaKelahiran}
	case PathTypePrestasi:
		return []DocumentType{DocumentKartuKeluarga, DocumentAktaKelahiran, DocumentRapor, DocumentSertifikatPrestasi}
	case PathTypeAfirmasi:
		return []DocumentType{DocumentKartuKeluarga, DocumentAktaKelahiran, DocumentSuratKeteranganAfirmasi}
	case PathTypePerpindahanTugas:
		return []DocumentType{DocumentKartuKeluarga, DocumentAktaKelahiran, DocumentSuratKeteranganPindah}
	}
	return nil
}
