package shared

import "errors"

var (
	// ErrNotFound indicates a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCompanyNotFound indicates the funding company lookup failed.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrJenisMotorNotFound indicates the vehicle type lookup failed.
	ErrJenisMotorNotFound = errors.New("jenis motor not found")
)

// UserSafeMessage returns a message safe to surface to end users.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
