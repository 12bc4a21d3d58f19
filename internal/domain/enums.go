package domain

// UserRole defines the role of a user.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// AuthProcess is what a successful provider authentication is used for.
type AuthProcess string

const (
	ProcessLogin   AuthProcess = "login"
	ProcessConnect AuthProcess = "connect"
)

// AuthProcesses lists the accepted AuthProcess values.
var AuthProcesses = []string{string(ProcessLogin), string(ProcessConnect)}

// Flow identifiers advertised by the configuration endpoint.
const (
	FlowProviderRedirect = "provider_redirect"
	FlowProviderToken    = "provider_token"
	FlowProviderSignup   = "provider_signup"
)
