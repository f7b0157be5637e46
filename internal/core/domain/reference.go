package domain

import (
	"strings"
	"time"
)

// Principal identifies the actor that indexed a reference image.
// It is recorded for provenance only and carries no ownership semantics.
type Principal struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// ReferenceImage is an indexed brand asset with its perceptual fingerprint.
// Records are immutable after creation apart from UpdatedAt bookkeeping.
type ReferenceImage struct {
	// ID is the unique identifier, assigned at creation.
	ID string `json:"id"`

	Title       string   `json:"title"`
	Description string   `json:"description"`
	SourceURL   string   `json:"sourceUrl"`
	Tags        []string `json:"tags"`

	// Fingerprint is the lower-case hex fingerprint.
	Fingerprint string `json:"fingerprint"`

	// FingerprintAlgorithm tags the scheme that produced Fingerprint.
	// Fingerprints are only comparable within the same algorithm.
	FingerprintAlgorithm string `json:"fingerprintAlgorithm"`

	// FingerprintLength is the declared hex digit count. It may differ from
	// len(Fingerprint); comparisons clamp to the shorter of the two sides.
	FingerprintLength int `json:"fingerprintLength"`

	// Asset attributes, owned by the asset store.
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`

	UploadedBy *Principal `json:"uploadedBy,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EffectiveLength returns the declared fingerprint length, or the actual
// string length when none was declared.
func (r *ReferenceImage) EffectiveLength() int {
	if r.FingerprintLength > 0 {
		return r.FingerprintLength
	}
	return len(r.Fingerprint)
}

// HasTag reports whether the reference carries tag, ignoring case.
func (r *ReferenceImage) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ReferenceFields are the caller supplied fields of a new reference image.
type ReferenceFields struct {
	Title                string
	Description          string
	SourceURL            string
	Tags                 []string
	Fingerprint          string
	FingerprintAlgorithm string
	FingerprintLength    int
	FileName             string
	MimeType             string
	FileSize             int64
	UploadedBy           *Principal
}

// Build validates the fields and produces a ReferenceImage with the given
// identifier and creation time. Every store implementation goes through
// Build so that validation is identical regardless of backing medium.
func (f ReferenceFields) Build(id string, now time.Time) (ReferenceImage, error) {
	fp, err := NormalizeFingerprint(f.Fingerprint)
	if err != nil {
		return ReferenceImage{}, err
	}

	length := f.FingerprintLength
	if length <= 0 {
		length = len(fp)
	}

	tags := make([]string, 0, len(f.Tags))
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	now = now.UTC()
	return ReferenceImage{
		ID:                   id,
		Title:                strings.TrimSpace(f.Title),
		Description:          strings.TrimSpace(f.Description),
		SourceURL:            strings.TrimSpace(f.SourceURL),
		Tags:                 tags,
		Fingerprint:          fp,
		FingerprintAlgorithm: NormalizeAlgorithm(f.FingerprintAlgorithm),
		FingerprintLength:    length,
		FileName:             f.FileName,
		MimeType:             f.MimeType,
		FileSize:             f.FileSize,
		UploadedBy:           f.UploadedBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// ReferenceEntry is a reference image together with the public URL of its
// binary asset. The URL is derived at read time and never persisted.
type ReferenceEntry struct {
	ReferenceImage
	AssetURL string `json:"assetUrl,omitempty"`
}

// StoredAsset describes a binary asset written by the asset store.
type StoredAsset struct {
	// FileName is the generated name within the asset directory.
	FileName string

	// Size is the number of bytes written.
	Size int64
}
