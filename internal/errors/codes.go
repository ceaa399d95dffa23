package errors

// Token error codes returned in the "error" field of token failures.
const (
	AuthorizationRequired = "authorization_required"
	TokenInvalid          = "invalid_token"
	TokenExpired          = "token_expired"
	TokenRevoked          = "token_revoked"
)

// Messages shared by more than one handler.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidRequest     = "Invalid request data"
	MsgInternal           = "Internal server error"
	MsgFileTooLarge       = "File exceeds the maximum upload size"
	MsgUnsupportedType    = "File type not allowed"
)
