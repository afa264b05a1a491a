package auth

import "errors"

var (
	StoreRequiredErr = errors.New("session store is required")
	APIRequiredErr   = errors.New("backend API client is required")
)

// User-facing messages. The backend localizes its own messages and the
// client surfaces them verbatim; these are the local fallbacks, kept in
// the product's language.
const (
	msgLoginFailed        = "No se pudo iniciar sesión"
	msgInvalidCredentials = "Credenciales inválidas."
	msgAccountLocked      = "Cuenta bloqueada o inactiva."
	msgServerUnreachable  = "No se pudo conectar con el servidor."
	msgUnlockRequested    = "Si la cuenta existe y está bloqueada, enviaremos un enlace a tu correo."
	msgEmailRequired      = "Ingresa tu correo para solicitar el desbloqueo."
	msgTokenMissing       = "Token de desbloqueo faltante o inválido."
	msgPasswordRequired   = "La contraseña es obligatoria."
	msgPasswordPolicy     = "La contraseña debe tener 8–12 caracteres alfanuméricos, con al menos una minúscula y una mayúscula."
)
