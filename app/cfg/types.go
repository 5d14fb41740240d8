package cfg

type Cfg struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabasePath string

	// Polling configuration
	DefaultPollingSec int
	HTTPTimeoutMs     int

	// Application configuration
	Port      string
	UserAgent string
	Debug     bool
	Version   string
}
