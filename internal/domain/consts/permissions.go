package consts

// Permissions for files and directories the program creates.
const (
	PermsHomeProgDir = 0o750
	PermsLogFile     = 0o644
	PermsDBFile      = 0o600
)
