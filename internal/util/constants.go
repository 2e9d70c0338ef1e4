package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ContextUserKey gin 上下文中 JWT claims 的键
const (
	ContextUserKey      = "user"
	ContextRoleKey      = "role"
	HeaderRequestID     = "X-Request-ID"
	ContextRequestIDKey = "request_id"
)
