package dto

import "time"

// CreateEmployeeRequest entrada para registrar un empleado.
type CreateEmployeeRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	EmployeeID string `json:"employee_id" validate:"required,min=1,max=50"`
	// FaceLabel etiqueta del modelo biométrico; si se omite se asigna la siguiente libre.
	FaceLabel *int `json:"face_label" validate:"omitempty,gte=0"`
}

// UpdateEmployeeRequest campos editables de un empleado.
type UpdateEmployeeRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	IsActive *bool   `json:"is_active"`
}

// EnrollFaceRequest imágenes en base64 para registrar el rostro del empleado.
type EnrollFaceRequest struct {
	Images []string `json:"images" validate:"required,min=1,dive,required"`
}

// EnrollFaceResponse resultado del registro facial.
type EnrollFaceResponse struct {
	EmployeeID  int64 `json:"employee_id"`
	FaceLabel   int   `json:"face_label"`
	ImagesCount int   `json:"images_count"`
}

// EmployeeResponse salida de un empleado.
type EmployeeResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	EmployeeID string    `json:"employee_id"`
	FaceLabel  int       `json:"face_label"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
