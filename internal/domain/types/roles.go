package types

// Nombres de los roles de sistema. Se siembran con `taskhubctl seed roles`.
const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// Permisos de workspace.
const (
	PermCreateWorkspace         = "CREATE_WORKSPACE"
	PermDeleteWorkspace         = "DELETE_WORKSPACE"
	PermEditWorkspace           = "EDIT_WORKSPACE"
	PermManageWorkspaceSettings = "MANAGE_WORKSPACE_SETTINGS"
	PermAddMember               = "ADD_MEMBER"
	PermChangeMemberRole        = "CHANGE_MEMBER_ROLE"
	PermRemoveMember            = "REMOVE_MEMBER"
	PermCreateProject           = "CREATE_PROJECT"
	PermEditProject             = "EDIT_PROJECT"
	PermDeleteProject           = "DELETE_PROJECT"
	PermCreateTask              = "CREATE_TASK"
	PermEditTask                = "EDIT_TASK"
	PermDeleteTask              = "DELETE_TASK"
	PermViewOnly                = "VIEW_ONLY"
)

// SystemRoles mapea cada rol de sistema a sus permisos.
var SystemRoles = map[string][]string{
	RoleOwner: {
		PermCreateWorkspace, PermDeleteWorkspace, PermEditWorkspace,
		PermManageWorkspaceSettings, PermAddMember, PermChangeMemberRole,
		PermRemoveMember, PermCreateProject, PermEditProject, PermDeleteProject,
		PermCreateTask, PermEditTask, PermDeleteTask, PermViewOnly,
	},
	RoleAdmin: {
		PermAddMember, PermCreateProject, PermEditProject, PermDeleteProject,
		PermCreateTask, PermEditTask, PermDeleteTask,
		PermManageWorkspaceSettings, PermViewOnly,
	},
	RoleMember: {
		PermViewOnly, PermCreateTask, PermEditTask,
	},
}

// SystemRoleNames en orden de siembra.
var SystemRoleNames = []string{RoleOwner, RoleAdmin, RoleMember}
