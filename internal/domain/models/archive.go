package models

import (
	"strconv"
	"time"
)

// Car is the central archive record everything else hangs off
type Car struct {
	ID              string    `json:"id"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	Trim            *string   `json:"trim,omitempty"`
	VIN             *string   `json:"vin,omitempty"`
	Color           *string   `json:"color,omitempty"`
	InteriorColor   *string   `json:"interior_color,omitempty"`
	Mileage         *int      `json:"mileage,omitempty"`
	MileageUnit     string    `json:"mileage_unit"`
	PriceAsking     *float64  `json:"price_asking,omitempty"`
	PriceSold       *float64  `json:"price_sold,omitempty"`
	Engine          *string   `json:"engine,omitempty"`
	Transmission    *string   `json:"transmission,omitempty"`
	Horsepower      *int      `json:"horsepower,omitempty"`
	Status          string    `json:"status"`
	Condition       *string   `json:"condition,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Description     *string   `json:"description,omitempty"`
	ClientContactID *string   `json:"client_contact_id,omitempty"`
	PrimaryImageID  *string   `json:"primary_image_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DisplayName renders "1973 Porsche 911 Carrera RS" style labels for search hits
func (c *Car) DisplayName() string {
	name := ""
	if c.Year > 0 {
		name = strconv.Itoa(c.Year) + " "
	}
	name += c.Make + " " + c.Model
	if c.Trim != nil && *c.Trim != "" {
		name += " " + *c.Trim
	}
	return name
}

// Image is an uploaded photo. Storage and analysis progress independently,
// which is why the record carries two status columns.
type Image struct {
	ID             string    `json:"id"`
	CarID          *string   `json:"car_id,omitempty"`
	Filename       string    `json:"filename"`
	Path           string    `json:"path"`
	URL            string    `json:"url"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	SizeBytes      int64     `json:"size_bytes"`
	MimeType       string    `json:"mime_type"`
	StorageStatus  string    `json:"storage_status"`
	AnalysisStatus string    `json:"analysis_status"`
	Angle          *string   `json:"angle,omitempty"`
	View           *string   `json:"view,omitempty"`
	Movement       *string   `json:"movement,omitempty"`
	TimeOfDay      *string   `json:"tod,omitempty"`
	Caption        *string   `json:"caption,omitempty"`
	AnalysisError  *string   `json:"analysis_error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ImageMetadata mirrors the storage provider's record for an image.
// Populated by the metadata migration, not by uploads.
type ImageMetadata struct {
	ID         string     `json:"id"`
	ImageID    string     `json:"image_id"`
	ProviderID string     `json:"provider_id"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
	Variants   []string   `json:"variants,omitempty"`
	Raw        string     `json:"raw,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Gallery is a curated, ordered set of images
type Gallery struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description,omitempty"`
	ThumbnailImageID *string   `json:"thumbnail_image_id,omitempty"`
	ImageCount       int       `json:"image_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GalleryImage is one slot in a gallery's ordering
type GalleryImage struct {
	GalleryID string `json:"gallery_id"`
	ImageID   string `json:"image_id"`
	Position  int    `json:"position"`
}
