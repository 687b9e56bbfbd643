package enums

// ActorRole is the coarse role carried by an authenticated principal.
type ActorRole string

const (
	ActorRoleUser  ActorRole = "user"
	ActorRoleAdmin ActorRole = "admin"
)
