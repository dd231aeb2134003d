package constants

// 内置角色
const (
	RoleNameSuperAdmin = "Super Admin"
	RoleNameNormalUser = "Normal User"
	RoleNameVisitor    = "普通用户" // 注册时默认分配的角色
)

const (
	DefaultResetPassword = "123456" // 管理员重置密码后使用的默认密码
	NoRoleName           = "无"      // 用户没有任何角色时展示的名称
)
