package cfg

type Cfg struct {
	// Application configuration
	Port   string
	DBPath string

	// Admin credentials
	AdminUsername string
	AdminPassword string

	// Rate limiting
	RateLimitMaxAttempts int
	RateLimitWindow      int // seconds

	// Content screening
	DenylistFile string

	// Notification configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	NotifyEmail  string
	NotifyFrom   string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
