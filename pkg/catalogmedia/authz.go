package catalogmedia

// Authorizer resolves a catalog's owner across the legacy identity
// fields and decides whether an identity may act on it.
type Authorizer struct {
	// displayNameAlias widens ownership matching to the identity's
	// display name. The legacy system was inconsistent about this;
	// default is off and the switch exists so deployments can keep
	// whichever behavior their data relies on.
	displayNameAlias bool
}

// NewAuthorizer creates an authorizer with display-name matching off.
func NewAuthorizer(displayNameAlias bool) *Authorizer {
	return &Authorizer{displayNameAlias: displayNameAlias}
}

// ResolveOwner returns the catalog's owner: the first non-empty value
// among the legacy owner fields, in fixed order.
func ResolveOwner(c *Catalog) string {
	for _, candidate := range []string{c.CreatorID, c.Owner, c.CreatorName, c.CreatorEmail} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// Authorize returns nil when identity may act on catalog, or an
// *AuthzError with reason DenyNotOwner otherwise. Admins are always
// allowed. A catalog with no resolvable owner is denied to non-admins;
// orphaned documents stay visible to admins only until repaired.
func (a *Authorizer) Authorize(identity Identity, catalog *Catalog) error {
	if identity.IsAdmin() {
		return nil
	}

	owner := ResolveOwner(catalog)
	if owner != "" {
		for _, alias := range identity.Aliases(a.displayNameAlias) {
			if alias == owner {
				return nil
			}
		}
	}

	return &AuthzError{Reason: DenyNotOwner, Err: ErrUnauthorized}
}
