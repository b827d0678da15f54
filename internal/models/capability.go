package models

// Capability is an action exposed on the home screen of a role.
type Capability string

const (
	CapAddArticle     Capability = "add-article"
	CapListArticles   Capability = "list-articles"
	CapViewArticle    Capability = "view-article"
	CapDeleteArticle  Capability = "delete-article"
	CapBackupRestore  Capability = "backup-restore"
	CapSearchArticles Capability = "search-articles"
	CapInviteUser     Capability = "invite-user"
	CapResetAccount   Capability = "reset-account"
	CapDeleteUser     Capability = "delete-user"
	CapListUsers      Capability = "list-users"
	CapManageRoles    Capability = "manage-roles"
	CapManageGroups   Capability = "manage-groups"
	CapGroupMembers   Capability = "group-members"
	CapGroupArticles  Capability = "group-articles"
	CapHelp           Capability = "help"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdministrator: {
		CapAddArticle, CapListArticles, CapViewArticle, CapDeleteArticle, CapBackupRestore,
		CapInviteUser, CapResetAccount, CapDeleteUser, CapListUsers, CapManageRoles,
		CapManageGroups, CapGroupMembers, CapGroupArticles,
	},
	RoleInstructor: {
		CapAddArticle, CapListArticles, CapViewArticle, CapDeleteArticle, CapBackupRestore,
		CapSearchArticles, CapManageGroups, CapGroupMembers, CapGroupArticles,
	},
	RoleStudent: {
		CapHelp, CapSearchArticles, CapViewArticle, CapGroupArticles,
	},
}

// Capabilities returns what r may do once it is the session role.
func (r Role) Capabilities() []Capability {
	return roleCapabilities[r]
}

func (r Role) Can(c Capability) bool {
	for _, x := range roleCapabilities[r] {
		if x == c {
			return true
		}
	}
	return false
}
