package chromecapture

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// EnvChromePath overrides the browser lookup.
const EnvChromePath = "CHROME_PATH"

// ResolveChromePath returns explicit when set, then $CHROME_PATH, then the
// first installed browser from the platform defaults. Chromium is preferred
// over Chrome. It returns "" when nothing is found.
func ResolveChromePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvChromePath); env != "" {
		return env
	}
	for _, candidate := range candidates(runtime.GOOS) {
		if path := lookup(candidate); path != "" {
			return path
		}
	}
	return ""
}

func candidates(goos string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		var out []string
		for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			base := os.Getenv(env)
			if base == "" {
				continue
			}
			out = append(out,
				filepath.Join(base, "Chromium", "Application", "chrome.exe"),
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"))
		}
		return out
	default:
		return []string{"chromium", "chromium-browser", "google-chrome-stable", "google-chrome"}
	}
}

// lookup stats absolute paths and searches $PATH for bare names.
func lookup(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) {
		if _, err := os.Stat(nameOrPath); err == nil {
			return nameOrPath
		}
		return ""
	}
	if path, err := exec.LookPath(nameOrPath); err == nil {
		return path
	}
	return ""
}
