package service

import "fmt"

const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
)

// User facing messages. They are part of the API contract.
const (
	MsgListNotFound      = "Lista no encontrada"
	MsgTaskNotFound      = "Tarea no encontrada"
	MsgNameRequired      = "El nombre es requerido"
	MsgNameEmpty         = "El nombre no puede estar vacío"
	MsgNameTooLong       = "El nombre no puede exceder 150 caracteres"
	MsgColorTooLong      = "El color no puede exceder 20 caracteres"
	MsgTitleRequired     = "El título es requerido"
	MsgTitleEmpty        = "El título no puede estar vacío"
	MsgTitleTooLong      = "El título no puede exceder 300 caracteres"
	MsgInvalidPriority   = "La prioridad debe ser 1 (alta), 2 (media) o 3 (baja)"
	MsgInvalidListID     = "listId inválido"
	MsgInvalidDueDate    = "dueDate inválido"
	MsgInvalidCompletion = "isCompleted debe ser true o false"
	MsgListMissing       = "La lista no existe"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewBusinessError(code, message string) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

func NewNotFound(message string, err error) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: message,
		Err:     err,
	}
}

func NewValidationError(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: message,
	}
}
