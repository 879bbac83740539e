package domain

// KeyPrefix namespaces every store key written by this service.
const KeyPrefix = "frontdesk:"

// Identity is the authenticated caller as forwarded by the gateway
// in the X-User header. The gateway owns authentication; this service
// only consumes the result.
type Identity struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// Zero reports whether the identity carries no user.
func (i Identity) Zero() bool {
	return i.ID == ""
}
