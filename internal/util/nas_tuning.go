package util

// TuneRetries picks the retry policy for placements into destPath.
//
// An explicit attempt count wins. Otherwise nasMode (when set) or network
// filesystem detection decides between a single attempt and NASRetryConfig.
func TuneRetries(destPath string, nasMode *bool, attempts int) *RetryConfig {
	if attempts > 0 {
		return WithAttempts(attempts)
	}

	if nasMode != nil {
		if *nasMode {
			InfoLog("NAS mode: explicitly enabled via config/flag")
			return NASRetryConfig()
		}
		return SingleAttempt()
	}

	info, err := DetectNetworkFilesystem(destPath)
	if err != nil {
		DebugLog("Failed to detect filesystem for destination (%s): %v", destPath, err)
		return SingleAttempt()
	}
	if !info.IsNetwork {
		return SingleAttempt()
	}

	cfg := NASRetryConfig()
	InfoLog("Network filesystem detected: destination is on %s (%s), retrying transient errors up to %d times",
		info.Protocol, info.MountPath, cfg.MaxAttempts)
	return cfg
}
