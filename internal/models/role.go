package models

// Role represents the account roles known to the portal.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleBigAdmin   Role = "bigadmin"
	RoleAdmin      Role = "admin"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleParent     Role = "parent"
)

// RoleDescriptor carries every per-role presentation and capability attribute.
type RoleDescriptor struct {
	Role            Role   `json:"role"`
	DisplayName     string `json:"display_name"`
	Color           uint32 `json:"color"`
	Icon            string `json:"icon"`
	IsStaff         bool   `json:"is_staff"`
	CanIssueInvites bool   `json:"can_issue_invites"`
}

var roleTable = map[Role]RoleDescriptor{
	RoleSuperAdmin: {Role: RoleSuperAdmin, DisplayName: "Super Administrator", Color: 0xFF6A1B9A, Icon: "shield", IsStaff: true, CanIssueInvites: true},
	RoleBigAdmin:   {Role: RoleBigAdmin, DisplayName: "Principal", Color: 0xFF283593, Icon: "account_balance", IsStaff: true, CanIssueInvites: true},
	RoleAdmin:      {Role: RoleAdmin, DisplayName: "Administrator", Color: 0xFF1565C0, Icon: "admin_panel_settings", IsStaff: true, CanIssueInvites: true},
	RoleTeacher:    {Role: RoleTeacher, DisplayName: "Teacher", Color: 0xFF2E7D32, Icon: "school", IsStaff: true},
	RoleStudent:    {Role: RoleStudent, DisplayName: "Student", Color: 0xFFEF6C00, Icon: "backpack"},
	RoleParent:     {Role: RoleParent, DisplayName: "Parent", Color: 0xFFC62828, Icon: "family_restroom"},
}

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	_, ok := roleTable[r]
	return ok
}

// Info returns the descriptor for the role; unknown roles get a neutral descriptor.
func (r Role) Info() RoleDescriptor {
	if d, ok := roleTable[r]; ok {
		return d
	}
	return RoleDescriptor{Role: r, DisplayName: string(r), Color: 0xFF757575, Icon: "person"}
}

// Roles lists every supported role in privilege order.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleBigAdmin, RoleAdmin, RoleTeacher, RoleStudent, RoleParent}
}

// Rank is the role's position in privilege order, 0 being the most privileged.
// Unknown roles rank below every known role.
func (r Role) Rank() int {
	for i, known := range Roles() {
		if known == r {
			return i
		}
	}
	return len(roleTable)
}
