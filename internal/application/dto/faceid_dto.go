package dto

import "time"

// FaceVerifyRequest cuadro capturado por la cámara (base64 o data URL, JPEG o PNG).
type FaceVerifyRequest struct {
	Image string `json:"image" validate:"required"`
}

// FaceStatusResponse estado de la verificación facial de la sesión.
type FaceStatusResponse struct {
	Verified         bool       `json:"verified"`
	EmployeeID       int64      `json:"employee_id,omitempty"`
	EmployeeName     string     `json:"employee_name,omitempty"`
	Confidence       float64    `json:"confidence,omitempty"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds"`
}
