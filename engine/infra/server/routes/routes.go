// Package routes names the top-level paths the server mounts. The API is
// served from the root.
package routes

// Auth returns the authentication base path.
func Auth() string { return "/auth" }

// Token is where clients exchange credentials for a session token.
func Token() string { return Auth() + "/token" }

func Users() string         { return "/users" }
func Customers() string     { return "/customers" }
func Reasons() string       { return "/reasons" }
func Applications() string  { return "/applications" }
func Notifications() string { return "/notifications" }
func Stats() string         { return "/stats" }
func AuditLogs() string     { return "/audit-logs" }

// Health is served without authentication.
func Health() string { return "/health" }

// Files serves locally stored attachment blobs. It must match the storage
// public base URL for local links to resolve.
func Files() string { return "/files" }
