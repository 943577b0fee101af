package config

const (
	defaultDownloadsFolder  = "~/Downloads"
	defaultQuarantineFolder = "~/Downloads/Quarantine"
	defaultLogDir           = "~/.local/share/dlassist/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultCompareMethod    = "hash"
	defaultPollIntervalMS   = 1000
	defaultSettleDelayMS    = 500
	defaultReadyTimeoutMS   = 30000
	defaultDashboardListen  = "127.0.0.1:8765"
	defaultNotifyTimeout    = 10
	defaultVisionBaseURL    = "https://api.openai.com/v1"
	defaultVisionModel      = "gpt-4o"
	defaultVisionTimeout    = 60
	defaultNamingPattern    = "{filename}.{ext}"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		DownloadsFolder:  defaultDownloadsFolder,
		QuarantineFolder: defaultQuarantineFolder,
		FileTypes: map[string][]string{
			"images":    {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"},
			"documents": {"pdf", "doc", "docx", "txt", "rtf", "odt", "xls", "xlsx", "ppt", "pptx", "html", "htm"},
			"music":     {"mp3", "wav", "flac", "aac", "ogg", "m4a", "wma"},
			"videos":    {"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v"},
			"archives":  {"zip", "rar", "7z", "tar", "gz", "bz2"},
		},
		NamingPatterns: map[string]string{
			"default": defaultNamingPattern,
		},
		Destinations: map[string][]string{
			"images":    {"~/Pictures/Incoming"},
			"documents": {"~/Documents/Incoming"},
			"music":     {"~/Music/Incoming"},
			"videos":    {"~/Videos/Incoming"},
			"archives":  {"~/Downloads/Archives"},
		},
		DuplicateDetection: DuplicateDetection{
			Enabled:       true,
			CompareMethod: defaultCompareMethod,
			KeepNewest:    true,
		},
		Monitoring: Monitoring{
			IgnoreHidden: true,
			IgnoreTemp:   true,
		},
		Quarantine: Quarantine{
			Enabled: true,
		},
		Watcher: Watcher{
			PollIntervalMS: defaultPollIntervalMS,
			SettleDelayMS:  defaultSettleDelayMS,
			ReadyTimeoutMS: defaultReadyTimeoutMS,
		},
		Daemon: Daemon{
			ProcessExistingOnStart: true,
		},
		Dashboard: Dashboard{
			Listen: defaultDashboardListen,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Processed:      true,
			Quarantined:    true,
			Duplicates:     true,
			Errors:         true,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			TimeoutSeconds: defaultVisionTimeout,
		},
		Logging: Logging{
			Directory: defaultLogDir,
			Format:    defaultLogFormat,
			Level:     defaultLogLevel,
		},
	}
}
