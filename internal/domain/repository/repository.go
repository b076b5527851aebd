package repository

// Set agrupa los repositorios de una conexión o de una transacción.
type Set interface {
	Users() UserRepository
	Accounts() AccountRepository
	Workspaces() WorkspaceRepository
	Roles() RoleRepository
	Members() MemberRepository
}
